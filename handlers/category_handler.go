package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type CreateCategoryRequest struct {
	ID          string `json:"id" validate:"required,max=100,lowercase"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (h *CategoryHandler) findCategory(c *fiber.Ctx, activeOnly bool) (*models.Category, error) {
	query := h.DB.Where("slug = ?", c.Params("id"))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var category models.Category
	if err := query.First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Category not found")
		}
		return nil, err
	}
	return &category, nil
}

// GetCategories - GET /api/categories
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories := []models.Category{}
	if err := h.DB.Where("is_active = ?", true).Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

// GetCategory - GET /api/categories/:id
func (h *CategoryHandler) GetCategory(c *fiber.Ctx) error {
	category, err := h.findCategory(c, true)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": category})
}

// GetAdminCategories - GET /api/categories/admin/all
func (h *CategoryHandler) GetAdminCategories(c *fiber.Ctx) error {
	categories := []models.Category{}
	if err := h.DB.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": categories})
}

// CreateCategory - POST /api/categories
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req CreateCategoryRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	var count int64
	if err := h.DB.Model(&models.Category{}).Where("slug = ?", req.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Category already exists")
	}

	category := models.Category{
		Slug:        req.ID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": category})
}

// UpdateCategory - PUT /api/categories/:id
func (h *CategoryHandler) UpdateCategory(c *fiber.Ctx) error {
	category, err := h.findCategory(c, false)
	if err != nil {
		return err
	}

	var req UpdateCategoryRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.DB.Save(category).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": category})
}

// DeleteCategory - DELETE /api/categories/:id
// Categories are deactivated, never removed.
func (h *CategoryHandler) DeleteCategory(c *fiber.Ctx) error {
	category, err := h.findCategory(c, false)
	if err != nil {
		return err
	}

	category.IsActive = false
	if err := h.DB.Save(category).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Category deactivated", "data": category})
}
