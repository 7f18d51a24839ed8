package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Color struct {
	Name string `bson:"name" json:"name" validate:"required"`
	Code string `bson:"code" json:"code"`
}

// Size is a size variant with its own stock count.
type Size struct {
	Name  string `bson:"name" json:"name" validate:"required"`
	Stock int    `bson:"stock" json:"stock" validate:"gte=0"`
}

type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Price       Money               `bson:"price" json:"price"` // base currency
	Stock       int                 `bson:"stock" json:"stock"`
	Images      []string            `bson:"images" json:"images"`
	CategoryID  *primitive.ObjectID `bson:"category,omitempty" json:"-"`
	Category    *Category           `bson:"-" json:"category"`
	Colors      []Color             `bson:"colors" json:"colors"`
	Sizes       []Size              `bson:"sizes" json:"sizes"`
	IsNew       bool                `bson:"isNew" json:"isNew"`
	IsFeatured  bool                `bson:"isFeatured" json:"isFeatured"`
	Order       int                 `bson:"order" json:"order"`

	RelatedProductIDs []primitive.ObjectID `bson:"relatedProducts" json:"-"`
	RelatedProducts   []Product            `bson:"-" json:"relatedProducts"`

	Reviews     []Review `bson:"-" json:"reviews,omitempty"`
	Rating      float64  `bson:"rating" json:"rating"`
	ReviewCount int      `bson:"reviewCount" json:"reviewCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PrimaryImage returns the first image, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// SizeStock returns the stock of the named size variant.
func (p *Product) SizeStock(name string) (int, bool) {
	for _, s := range p.Sizes {
		if s.Name == name {
			return s.Stock, true
		}
	}
	return 0, false
}

// Summary is the trimmed product shape attached to admin review listings.
func (p *Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Images: p.Images}
}

type ProductSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Images []string           `json:"images"`
}

// FeaturedOrder is one entry of a featured-products reorder request.
type FeaturedOrder struct {
	ID    primitive.ObjectID `json:"id" validate:"required"`
	Order int                `json:"order" validate:"gte=0"`
}
