package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/money"
)

// Option es un eje configurable del producto (ej. "Size")
type Option struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID    string             `json:"product_id" bson:"owner_id"`
	Name         string             `json:"name" bson:"name" binding:"required"`
	DisplayLabel string             `json:"display_label" bson:"display_label"`
	SortOrder    int                `json:"sort_order" bson:"sort_order"`
	Values       []OptionValue      `json:"values" bson:"values" binding:"dive"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// OptionValue es una elección concreta dentro de una Option
type OptionValue struct {
	ID              string       `json:"id" bson:"id"`
	Name            string       `json:"name" bson:"name" binding:"required"`
	PriceAdjustment money.Amount `json:"price_adjustment" bson:"price_adjustment"`
	IsDefault       bool         `json:"is_default" bson:"is_default"`
	IsSoldOut       bool         `json:"is_sold_out" bson:"is_sold_out"`
	SortOrder       int          `json:"sort_order" bson:"sort_order"`
}

func (o *Option) EntryID() primitive.ObjectID { return o.ID }

func (o *Option) Prepare(owner string, sortOrder int, now time.Time) {
	o.ID = primitive.NewObjectID()
	o.ProductID = owner
	o.SortOrder = sortOrder
	o.CreatedAt = now
	o.UpdatedAt = now
	o.NormalizeValues()
}

func (o *Option) Touch(now time.Time) {
	o.UpdatedAt = now
	o.NormalizeValues()
}

// NormalizeValues ordena los valores por sort_order (estable), los renumera
// 0..n-1 y asigna id a los valores nuevos.
func (o *Option) NormalizeValues() {
	sort.SliceStable(o.Values, func(i, j int) bool {
		return o.Values[i].SortOrder < o.Values[j].SortOrder
	})
	for i := range o.Values {
		o.Values[i].SortOrder = i
		if o.Values[i].ID == "" {
			o.Values[i].ID = primitive.NewObjectID().Hex()
		}
	}
}

// SetDefaultValue deja como default solo al valor con ese id.
// Devuelve false si el id no existe y en ese caso no toca nada.
func (o *Option) SetDefaultValue(valueID string) bool {
	found := false
	for _, v := range o.Values {
		if v.ID == valueID {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := range o.Values {
		o.Values[i].IsDefault = o.Values[i].ID == valueID
	}
	return true
}

// DefaultValue devuelve el primer valor marcado como default
func (o Option) DefaultValue() (OptionValue, bool) {
	for _, v := range o.Values {
		if v.IsDefault {
			return v, true
		}
	}
	return OptionValue{}, false
}

// SortOptions ordena por sort_order, que también define el orden de combinación
func SortOptions(options []Option) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
