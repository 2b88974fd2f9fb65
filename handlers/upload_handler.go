package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UploadHandler handles file uploads
type UploadHandler struct {
	// Dir is served publicly under /uploads
	Dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{Dir: dir}
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadImage - POST /api/uploads/images
// Stores the "image" form file and returns its public URL.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return fiber.NewError(fiber.StatusBadRequest, "Only .jpg, .jpeg, .png and .webp files are allowed")
	}

	dir := filepath.Join(h.Dir, "products")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"url": "/uploads/products/" + filename},
	})
}
