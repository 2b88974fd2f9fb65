package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product categories accepted by the catalog.
const (
	CategoryFood        = "food"
	CategoryToys        = "toys"
	CategoryAccessories = "accessories"
	CategoryHealth      = "health"
)

// ProductCategories lists every valid product category in display order.
var ProductCategories = []string{CategoryFood, CategoryToys, CategoryAccessories, CategoryHealth}

const (
	MinRating = 1
	MaxRating = 5
)

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string          `gorm:"size:50;index;not null" json:"category"` // food, toys, accessories, health
	Image       string          `gorm:"not null" json:"image"`
	Rating      int             `gorm:"not null" json:"rating"`
	Description string          `gorm:"type:text;not null" json:"description"`
	InStock     bool            `gorm:"not null" json:"in_stock"`
	Stock       int             `gorm:"not null" json:"stock"`

	// Folded name + description used by the catalog search
	SearchKey string `gorm:"type:text" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValidCategory reports whether c is one of ProductCategories.
func IsValidCategory(c string) bool {
	for _, known := range ProductCategories {
		if known == c {
			return true
		}
	}
	return false
}

// Validate checks the catalog constraints every stored product must satisfy.
func (p *Product) Validate() error {
	var errs ValidationErrors
	if p.Name == "" {
		errs.Add("name", "required", "name is required")
	}
	if p.Price.IsNegative() {
		errs.Add("price", "min", "price must be greater than or equal to 0")
	}
	if !IsValidCategory(p.Category) {
		errs.Add("category", "oneof", "category must be one of food, toys, accessories, health")
	}
	if p.Image == "" {
		errs.Add("image", "required", "image is required")
	}
	if p.Rating < MinRating || p.Rating > MaxRating {
		errs.Add("rating", "range", "rating must be between 1 and 5")
	}
	if p.Description == "" {
		errs.Add("description", "required", "description is required")
	}
	if p.Stock < 0 {
		errs.Add("stock", "min", "stock must be greater than or equal to 0")
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// BeforeSave runs on Create and Save. Column-only updates (stock
// decrements) bypass it.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.SearchKey = SearchKey(p.Name + " " + p.Description)
	return nil
}
