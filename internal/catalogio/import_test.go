package catalogio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseProducts(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Name", "Category", "Price", "Stock", "Rating", "Description", "Image"},
		{"Salmon Pate", "Food", "3.5", 40, 5, "Soft pate", "/img/pate.png"},
		{"Laser Pointer", "toys", "9.99", 0, "", "Red dot", ""},
		{},
		{"Mystery", "snacks", "1.00", 3, 4, "Unknown category", ""},
		{"Broken", "food", "free", 3, 4, "Bad price", ""},
	})

	res, err := ParseProducts(buf)
	require.NoError(t, err)

	require.Len(t, res.Products, 2)
	pate := res.Products[0]
	assert.Equal(t, "Salmon Pate", pate.Name)
	assert.Equal(t, "food", pate.Category)
	assert.Equal(t, "3.50", pate.Price.StringFixed(2))
	assert.Equal(t, 40, pate.Stock)
	assert.True(t, pate.InStock)
	assert.Equal(t, "/img/pate.png", pate.Image)

	laser := res.Products[1]
	assert.False(t, laser.InStock)
	assert.Equal(t, 5, laser.Rating)
	assert.Equal(t, DefaultImage, laser.Image)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "category")
	assert.Equal(t, 6, res.Errors[1].Row)
	assert.Contains(t, res.Errors[1].Message, "price")
}

func TestParseProducts_MissingColumn(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"Name", "Price"},
		{"Salmon Pate", "3.5"},
	})

	_, err := ParseProducts(buf)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestParseProducts_NotAWorkbook(t *testing.T) {
	_, err := ParseProducts(strings.NewReader("name,price\nx,1"))
	assert.Error(t, err)
}
