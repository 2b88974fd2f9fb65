// Package catalogio reads product spreadsheets uploaded by administrators.
package catalogio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Jahir7946/Cat-store/models"
)

var ErrMissingColumn = errors.New("missing required column")

// Columns are matched case-insensitively against the first row.
var requiredColumns = []string{"name", "category", "price", "stock", "description"}

// RowError describes a spreadsheet row that could not become a product.
// Row is the 1-based row number as shown by spreadsheet software.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type Result struct {
	Products []models.Product
	Errors   []RowError
}

// DefaultImage is used for rows without an image column value.
const DefaultImage = "/uploads/products/placeholder.png"

// ParseProducts reads the first sheet of an xlsx workbook. Rows that fail
// validation are reported in Result.Errors and skipped; blank rows are
// ignored.
func ParseProducts(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", ErrMissingColumn, sheets[0])
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	res := &Result{Products: []models.Product{}}
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlank(row) {
			continue
		}

		p, err := productFromRow(cell)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		res.Products = append(res.Products, p)
	}
	return res, nil
}

func productFromRow(cell func(string) string) (models.Product, error) {
	price, err := decimal.NewFromString(cell("price"))
	if err != nil {
		return models.Product{}, fmt.Errorf("price %q is not a number", cell("price"))
	}
	stock, err := strconv.Atoi(cell("stock"))
	if err != nil {
		return models.Product{}, fmt.Errorf("stock %q is not an integer", cell("stock"))
	}

	rating := models.MaxRating
	if v := cell("rating"); v != "" {
		if rating, err = strconv.Atoi(v); err != nil {
			return models.Product{}, fmt.Errorf("rating %q is not an integer", v)
		}
	}
	image := cell("image")
	if image == "" {
		image = DefaultImage
	}

	p := models.Product{
		Name:        cell("name"),
		Price:       price.Round(2),
		Category:    strings.ToLower(cell("category")),
		Image:       image,
		Rating:      rating,
		Description: cell("description"),
		Stock:       stock,
		InStock:     stock > 0,
	}
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
