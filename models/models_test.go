package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduct() Product {
	return Product{
		Name:        "Tuna Wet Food Can",
		Price:       decimal.RequireFromString("2.50"),
		Category:    CategoryFood,
		Image:       "cat-food-2.png",
		Rating:      4,
		Description: "Tuna chunks in sauce.",
		InStock:     true,
		Stock:       200,
	}
}

func TestProductValidate_Valid(t *testing.T) {
	p := validProduct()
	require.NoError(t, p.Validate())
}

func TestProductValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(p *Product)
		field string
	}{
		{"negative price", func(p *Product) { p.Price = decimal.NewFromInt(-1) }, "price"},
		{"rating too low", func(p *Product) { p.Rating = 0 }, "rating"},
		{"rating too high", func(p *Product) { p.Rating = 6 }, "rating"},
		{"unknown category", func(p *Product) { p.Category = "furniture" }, "category"},
		{"negative stock", func(p *Product) { p.Stock = -3 }, "stock"},
		{"missing name", func(p *Product) { p.Name = "" }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.edit(&p)

			err := p.Validate()
			require.Error(t, err)

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve.Errors, 1)
			assert.Equal(t, tt.field, ve.Errors[0].Field)
		})
	}
}

func TestProductValidate_ZeroPriceAllowed(t *testing.T) {
	p := validProduct()
	p.Price = decimal.Zero
	p.Stock = 0
	assert.NoError(t, p.Validate())
}

func TestSearchKey(t *testing.T) {
	assert.Equal(t, "lata humeda sabor atun", SearchKey("Lata  Húmeda Sabor ATÚN"))
	assert.Equal(t, "", SearchKey("   "))
}

func TestOrderStatus(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusShipped.Terminal())
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: decimal.RequireFromString("8.50")}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("25.50")))
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(2, 20, 45)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@example.com", NormalizeEmail("  Ana@Example.COM "))
}
