package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a single address entry for a user.
type Address struct {
	ID        string `bson:"id" json:"id,omitempty"`
	Title     string `bson:"title" json:"title"`
	Detail    string `bson:"detail" json:"detail"`
	Note      string `bson:"note,omitempty" json:"note,omitempty"`
	IsDefault bool   `bson:"isDefault" json:"isDefault"`
}

// UserProfile is the storefront account document as the customer engine reads
// it. Credentials are owned by the auth subsystem and are never decoded here.
type UserProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email" validate:"required,email"`
	Name           string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Addresses      []Address          `bson:"addresses,omitempty" json:"addresses,omitempty"`
	IsAdmin        bool               `bson:"isAdmin" json:"isAdmin"`
	StatusOverride CustomerStatus     `bson:"statusOverride,omitempty" json:"statusOverride,omitempty"`
	CreatedAt      FlexTime           `bson:"createdAt" json:"createdAt"`
	LastLoginAt    FlexTime           `bson:"lastLoginAt" json:"lastLoginAt"`
}

// PrimaryAddress returns the default address, else the first one.
func (u UserProfile) PrimaryAddress() *Address {
	if len(u.Addresses) == 0 {
		return nil
	}
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			addr := u.Addresses[i]
			return &addr
		}
	}
	addr := u.Addresses[0]
	return &addr
}
