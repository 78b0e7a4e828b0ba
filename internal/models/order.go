package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
)

// OrderItem represents a single product entry within an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Price     FlexAmount         `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// ShippingAddress captures the contact and delivery details typed at checkout.
type ShippingAddress struct {
	Name   string `bson:"name,omitempty" json:"name,omitempty"`
	Phone  string `bson:"phone,omitempty" json:"phone,omitempty"`
	Title  string `bson:"title" json:"title"`
	Detail string `bson:"detail" json:"detail"`
	Note   string `bson:"note,omitempty" json:"note,omitempty"`
}

// Address converts the shipping details into a profile style address.
func (s ShippingAddress) Address() *Address {
	if s.Title == "" && s.Detail == "" {
		return nil
	}
	return &Address{Title: s.Title, Detail: s.Detail, Note: s.Note}
}

// Order defines the persisted order document. The order-placement subsystem
// owns it; the customer engine only reads it.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerEmail   string             `bson:"customerEmail" json:"customerEmail" validate:"required,email"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalPrice      FlexAmount         `bson:"totalPrice" json:"totalPrice"`
	PaymentStatus   PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	Status          FulfillmentStatus  `bson:"status" json:"status"`
	ShippingAddress *ShippingAddress   `bson:"shippingAddress,omitempty" json:"shippingAddress,omitempty"`
	CreatedAt       FlexTime           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       FlexTime           `bson:"updatedAt" json:"updatedAt"`
}
