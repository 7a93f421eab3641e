package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media es una imagen de producto ya subida al storage
type Media struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID    string             `json:"product_id" bson:"owner_id"`
	URL          string             `json:"url" bson:"url" binding:"required"`
	ThumbnailURL string             `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	Key          string             `json:"key,omitempty" bson:"key,omitempty"`
	Alt          string             `json:"alt" bson:"alt"`
	Sort         int                `json:"sort" bson:"sort_order"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

func (m *Media) EntryID() primitive.ObjectID { return m.ID }

func (m *Media) Prepare(owner string, sortOrder int, now time.Time) {
	m.ID = primitive.NewObjectID()
	m.ProductID = owner
	m.Sort = sortOrder
	m.CreatedAt = now
	m.UpdatedAt = now
}

func (m *Media) Touch(now time.Time) { m.UpdatedAt = now }
