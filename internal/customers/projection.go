package customers

import (
	"bytes"
	"sort"
	"time"

	"github.com/code-sharad/e-com-sub000/internal/models"
)

// ActivityWindow is how recent the last completed order must be for a
// customer to count as active.
const ActivityWindow = 365 * 24 * time.Hour

// View selects how many recent orders a projection embeds.
type View int

const (
	ListView View = iota
	DetailView
)

func (v View) recentOrders() int {
	if v == DetailView {
		return 10
	}
	return 5
}

// Build projects one resolved entry into a Customer. It performs no I/O and
// depends on nothing but its arguments.
func Build(entry *Entry, now time.Time, view View) models.Customer {
	orders := make([]models.Order, len(entry.Orders))
	copy(orders, entry.Orders)
	SortNewestFirst(orders)

	customer := models.Customer{
		ID:          entry.Email,
		Email:       entry.Email,
		TotalOrders: len(orders),
		Orders:      make([]models.OrderSummary, 0, min(len(orders), view.recentOrders())),
	}

	var lastCompleted time.Time
	for _, order := range orders {
		if order.PaymentStatus != models.PaymentCompleted {
			continue
		}
		customer.TotalSpent += float64(order.TotalPrice)
		if lastCompleted.IsZero() {
			lastCompleted = order.CreatedAt.Time
		}
	}
	if !lastCompleted.IsZero() {
		at := lastCompleted
		customer.LastPurchase = &at
	}
	if customer.TotalOrders > 0 {
		customer.AverageOrderValue = customer.TotalSpent / float64(customer.TotalOrders)
	}

	if profile := entry.Profile; profile != nil {
		if !profile.ID.IsZero() {
			customer.ID = profile.ID.Hex()
		}
		customer.Name = profile.Name
		customer.Phone = profile.Phone
		customer.Address = profile.PrimaryAddress()
		customer.IsAdmin = profile.IsAdmin
		customer.JoinDate = profile.CreatedAt.Time
		if !profile.LastLoginAt.IsZero() {
			at := profile.LastLoginAt.Time
			customer.LastLoginAt = &at
		}
	}
	if customer.JoinDate.IsZero() && len(orders) > 0 {
		customer.JoinDate = orders[len(orders)-1].CreatedAt.Time
	}

	if shipping := latestShipping(orders); shipping != nil {
		if customer.Name == "" {
			customer.Name = shipping.Name
		}
		if customer.Phone == "" {
			customer.Phone = shipping.Phone
		}
		if customer.Address == nil {
			customer.Address = shipping.Address()
		}
	}

	customer.Status = DeriveStatus(lastCompleted, now)
	if entry.Profile != nil && entry.Profile.StatusOverride.Valid() {
		customer.Status = entry.Profile.StatusOverride
		customer.StatusOverridden = true
	}

	for i := 0; i < len(orders) && i < view.recentOrders(); i++ {
		customer.Orders = append(customer.Orders, summarize(orders[i]))
	}

	return customer
}

// DeriveStatus is the automatic status for a customer whose most recent
// completed order was placed at lastCompleted (zero when there is none).
// Blocked is never derived.
func DeriveStatus(lastCompleted, now time.Time) models.CustomerStatus {
	if lastCompleted.IsZero() {
		return models.StatusInactive
	}
	if now.Sub(lastCompleted) > ActivityWindow {
		return models.StatusInactive
	}
	return models.StatusActive
}

// SortNewestFirst orders by createdAt descending, then id descending, the
// same order the indexed order query returns.
func SortNewestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.CreatedAt.Equal(b.CreatedAt.Time) {
			return a.CreatedAt.After(b.CreatedAt.Time)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) > 0
	})
}

// SortByJoinDate orders customers newest first, ties broken by email.
func SortByJoinDate(list []models.Customer) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].JoinDate.Equal(list[j].JoinDate) {
			return list[i].JoinDate.After(list[j].JoinDate)
		}
		return list[i].Email < list[j].Email
	})
}

// latestShipping returns the shipping details of the newest order that has
// any, skipping newer orders placed without them.
func latestShipping(newestFirst []models.Order) *models.ShippingAddress {
	for i := range newestFirst {
		if newestFirst[i].ShippingAddress != nil {
			return newestFirst[i].ShippingAddress
		}
	}
	return nil
}

func summarize(order models.Order) models.OrderSummary {
	return models.OrderSummary{
		ID:        order.ID.Hex(),
		Date:      order.CreatedAt.Time,
		Total:     float64(order.TotalPrice),
		Status:    order.Status,
		ItemCount: len(order.Items),
	}
}
