package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/money"
)

// Product representa un producto en el catálogo
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SKU         string             `json:"sku" bson:"sku" binding:"required"`
	Name        string             `json:"name" bson:"name" binding:"required"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Category    string             `json:"category" bson:"category" binding:"required"`
	BasePrice   money.Amount       `json:"base_price" bson:"base_price"`
	Currency    string             `json:"currency" bson:"currency" binding:"required,len=3"`
	Stock       int                `json:"stock" bson:"stock"`
	Images      []string           `json:"images,omitempty" bson:"images,omitempty"`
	Attributes  map[string]string  `json:"attributes,omitempty" bson:"attributes,omitempty"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	IsDeleted   bool               `json:"-" bson:"is_deleted"`
	PriceCents  *int64             `json:"-" bson:"price_cents,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// UpgradeLegacyPrice completa base_price en documentos viejos que solo
// tienen price_cents
func (p *Product) UpgradeLegacyPrice() {
	if p.PriceCents != nil && p.BasePrice.IsZero() {
		p.BasePrice = money.FromCents(*p.PriceCents)
	}
	p.PriceCents = nil
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Category    *string           `json:"category,omitempty"`
	BasePrice   *money.Amount     `json:"base_price,omitempty"`
	Currency    *string           `json:"currency,omitempty" binding:"omitempty,len=3"`
	Stock       *int              `json:"stock,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	IsActive    *bool             `json:"is_active,omitempty"`
}

// Fields arma el $set para Mongo con solo los campos presentes
func (u ProductUpdate) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.Category != nil {
		fields["category"] = *u.Category
	}
	if u.BasePrice != nil {
		fields["base_price"] = *u.BasePrice
	}
	if u.Currency != nil {
		fields["currency"] = *u.Currency
	}
	if u.Stock != nil {
		fields["stock"] = *u.Stock
	}
	if u.Images != nil {
		fields["images"] = u.Images
	}
	if u.Attributes != nil {
		fields["attributes"] = u.Attributes
	}
	if u.IsActive != nil {
		fields["is_active"] = *u.IsActive
	}
	return fields
}
