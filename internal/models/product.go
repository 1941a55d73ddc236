package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const ProductCollection = "product"

// DefaultSizesML is used when a product is created without explicit sizes.
var DefaultSizesML = []int{50, 100}

// Product is a perfume catalog entry. Price is the base price in INR.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Brand       string             `bson:"brand" json:"brand"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Images      []string           `bson:"images" json:"images"`
	NotesTop    StringList         `bson:"notes_top,omitempty" json:"notes_top,omitempty"`
	NotesHeart  StringList         `bson:"notes_heart,omitempty" json:"notes_heart,omitempty"`
	NotesBase   StringList         `bson:"notes_base,omitempty" json:"notes_base,omitempty"`
	SizesML     []int              `bson:"sizes_ml" json:"sizes_ml"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`
	InStock     bool               `bson:"in_stock" json:"in_stock"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
