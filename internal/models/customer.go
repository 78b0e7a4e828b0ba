package models

import (
	"time"
)

type CustomerStatus string

const (
	StatusActive   CustomerStatus = "active"
	StatusInactive CustomerStatus = "inactive"
	StatusBlocked  CustomerStatus = "blocked"
)

// Valid reports whether s is one of the three customer states.
func (s CustomerStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

// OrderSummary is the reduced order shape embedded in a Customer.
type OrderSummary struct {
	ID        string            `json:"id"`
	Date      time.Time         `json:"date"`
	Total     float64           `json:"total"`
	Status    FulfillmentStatus `json:"status"`
	ItemCount int               `json:"itemCount"`
}

// Customer is derived from a user profile and the orders placed with the same
// email. It is rebuilt on every read and never written back.
type Customer struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Email             string         `json:"email"`
	Phone             string         `json:"phone,omitempty"`
	Address           *Address       `json:"address,omitempty"`
	JoinDate          time.Time      `json:"joinDate"`
	LastPurchase      *time.Time     `json:"lastPurchase,omitempty"`
	LastLoginAt       *time.Time     `json:"lastLoginAt,omitempty"`
	TotalOrders       int            `json:"totalOrders"`
	TotalSpent        float64        `json:"totalSpent"`
	AverageOrderValue float64        `json:"averageOrderValue"`
	Status            CustomerStatus `json:"status"`
	StatusOverridden  bool           `json:"statusOverridden"`
	IsAdmin           bool           `json:"isAdmin"`
	Orders            []OrderSummary `json:"orders"`
}

// CustomerStats summarises a full customer build for dashboards.
type CustomerStats struct {
	Total             int     `json:"total"`
	Active            int     `json:"active"`
	Inactive          int     `json:"inactive"`
	Blocked           int     `json:"blocked"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	NewToday          int     `json:"newToday"`
	NewThisWeek       int     `json:"newThisWeek"`
}
