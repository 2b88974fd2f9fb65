package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/internal/catalogio"
	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{DB: db}
}

// CreateProductRequest
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Category    string           `json:"category" validate:"required"`
	Image       string           `json:"image" validate:"required"`
	Rating      int              `json:"rating" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Stock       *int             `json:"stock" validate:"required"`
}

// UpdateProductRequest changes only the fields present in the body.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Rating      *int             `json:"rating"`
	Description *string          `json:"description"`
	Stock       *int             `json:"stock"`
	InStock     *bool            `json:"in_stock"`
}

// filterProducts applies the category and q query parameters.
func filterProducts(c *fiber.Ctx, query *gorm.DB) *gorm.DB {
	if category := c.Query("category"); category != "" && category != "all" {
		query = query.Where("category = ?", category)
	}
	if q := models.SearchKey(c.Query("q")); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}
	return query
}

func productID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid product ID")
	}
	return uint(id), nil
}

func (h *ProductHandler) findProduct(c *fiber.Ctx) (*models.Product, error) {
	id, err := productID(c)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return nil, err
	}
	return &product, nil
}

// GetAllProducts - GET /api/products
func (h *ProductHandler) GetAllProducts(c *fiber.Ctx) error {
	products := []models.Product{}
	query := filterProducts(c, h.DB.Where("in_stock = ?", true)).Order("name asc, id asc")

	if err := query.Find(&products).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": products})
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// GetAdminProducts - GET /api/products/admin/all
func (h *ProductHandler) GetAdminProducts(c *fiber.Ctx) error {
	page, limit := pagination(c)

	var total int64
	if err := filterProducts(c, h.DB.Model(&models.Product{})).Count(&total).Error; err != nil {
		return err
	}

	products := []models.Product{}
	err := filterProducts(c, h.DB).
		Order("created_at desc, id desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&products).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": products,
		"meta": models.NewPaginationMeta(page, limit, total),
	})
}

// CreateProduct - POST /api/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	product := models.Product{
		Name:        req.Name,
		Price:       req.Price.Round(2),
		Category:    req.Category,
		Image:       req.Image,
		Rating:      req.Rating,
		Description: req.Description,
		Stock:       *req.Stock,
		InStock:     *req.Stock > 0,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return err
	}

	slog.Info("product created", "id", product.ID, "by", utils.CurrentUser(c).Email)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": product})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = req.Price.Round(2)
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
		product.InStock = product.Stock > 0
	}
	if req.InStock != nil {
		product.InStock = *req.InStock && product.Stock > 0
	}

	if err := h.DB.Save(product).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": product})
}

// DeleteProduct - DELETE /api/products/:id
// Products are soft-deleted so past orders keep their line details.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	product, err := h.findProduct(c)
	if err != nil {
		return err
	}
	if err := h.DB.Delete(product).Error; err != nil {
		return err
	}

	slog.Info("product deleted", "id", product.ID, "by", utils.CurrentUser(c).Email)
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ImportProducts - POST /api/products/admin/import
// Accepts an xlsx file in the "file" form field.
func (h *ProductHandler) ImportProducts(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Spreadsheet file is required")
	}

	f, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	res, err := catalogio.ParseProducts(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid spreadsheet: "+err.Error())
	}

	if len(res.Products) > 0 {
		if err := h.DB.Create(&res.Products).Error; err != nil {
			return fmt.Errorf("import products: %w", err)
		}
	}

	slog.Info("products imported", "created", len(res.Products), "rejected", len(res.Errors))
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"created":  len(res.Products),
			"products": res.Products,
			"errors":   rowErrors(res.Errors),
		},
	})
}

func rowErrors(errs []catalogio.RowError) []catalogio.RowError {
	if errs == nil {
		return []catalogio.RowError{}
	}
	return errs
}

func pagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", checkout.DefaultPageSize)
	if limit < 1 {
		limit = checkout.DefaultPageSize
	}
	if limit > checkout.MaxPageSize {
		limit = checkout.MaxPageSize
	}
	return page, limit
}
