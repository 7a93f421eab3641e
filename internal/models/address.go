package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AddressShipping = "shipping"
	AddressBilling  = "billing"
)

type Address struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID     string             `json:"user_id" bson:"owner_id"`
	Name       string             `json:"name" bson:"name" binding:"required"`
	Line1      string             `json:"line1" bson:"line1" binding:"required"`
	Line2      string             `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string             `json:"city" bson:"city" binding:"required"`
	Region     string             `json:"region" bson:"region"`
	PostalCode string             `json:"postal_code" bson:"postal_code" binding:"required"`
	Country    string             `json:"country" bson:"country" binding:"required"`
	Type       string             `json:"type" bson:"type" binding:"omitempty,oneof=shipping billing"`
	IsDefault  bool               `json:"is_default" bson:"is_default"`
	SortOrder  int                `json:"sort_order" bson:"sort_order"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

func (a *Address) EntryID() primitive.ObjectID { return a.ID }

func (a *Address) Prepare(owner string, sortOrder int, now time.Time) {
	a.ID = primitive.NewObjectID()
	a.UserID = owner
	a.SortOrder = sortOrder
	if a.Type == "" {
		a.Type = AddressShipping
	}
	a.CreatedAt = now
	a.UpdatedAt = now
}

func (a *Address) Touch(now time.Time) { a.UpdatedAt = now }

func (a *Address) Default() bool { return a.IsDefault }

// NaturalKey identifica direcciones duplicadas por contenido:
// mismas líneas, ciudad, región, código postal, país y tipo.
func (a Address) NaturalKey() string {
	parts := []string{a.Type, a.Line1, a.Line2, a.City, a.Region, a.PostalCode, a.Country}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	return strings.Join(parts, "|")
}
