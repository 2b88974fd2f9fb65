package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

//go:embed seed/catalog.yaml
var seedCatalogYAML []byte

type SeedCategory struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Image       string `yaml:"image"`
	Rating      int    `yaml:"rating"`
	Stock       int    `yaml:"stock"`
	Description string `yaml:"description"`
}

type SeedData struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

// LoadSeedCatalog parses the catalog embedded in the binary.
func LoadSeedCatalog() (*SeedData, error) {
	return ParseSeedCatalog(seedCatalogYAML)
}

func ParseSeedCatalog(data []byte) (*SeedData, error) {
	var catalog SeedData
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	return &catalog, nil
}

// SeedCatalog inserts categories and products that do not exist yet.
// Categories match by id, products by name, so it is safe to run repeatedly.
func SeedCatalog(db *gorm.DB, catalog *SeedData) error {
	slog.Info("seeding catalog")

	for _, sc := range catalog.Categories {
		var existing models.Category
		err := db.Where("slug = ?", sc.ID).First(&existing).Error
		if err == nil {
			slog.Debug("category already exists", "id", sc.ID)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		category := models.Category{Slug: sc.ID, Name: sc.Name, Description: sc.Description, IsActive: true}
		if err := db.Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", sc.ID, err)
		}
	}

	for _, sp := range catalog.Products {
		var existing models.Product
		err := db.Where("name = ?", sp.Name).First(&existing).Error
		if err == nil {
			slog.Debug("product already exists", "name", sp.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return fmt.Errorf("seed product %s: price: %w", sp.Name, err)
		}
		product := models.Product{
			Name:        sp.Name,
			Price:       price,
			Category:    sp.Category,
			Image:       sp.Image,
			Rating:      sp.Rating,
			Description: sp.Description,
			Stock:       sp.Stock,
			InStock:     sp.Stock > 0,
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("seed product %s: %w", sp.Name, err)
		}
	}

	slog.Info("seeding complete", "categories", len(catalog.Categories), "products", len(catalog.Products))
	return nil
}

// PromoteAdmin grants the admin role to email. When no such account exists
// one is created with the given name and password.
func PromoteAdmin(db *gorm.DB, email, name, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Role = models.RoleAdmin
		if err := db.Save(&user).Error; err != nil {
			return nil, err
		}
		slog.Info("user promoted to admin", "email", email)
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if password == "" {
		return nil, fmt.Errorf("user %s not found and no password given to create it", email)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user = models.User{Name: name, Email: email, Password: hashed, Role: models.RoleAdmin}
	if user.Name == "" {
		user.Name = "Administrator"
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	slog.Info("admin user created", "email", email)
	return &user, nil
}

// CleanDatabase removes every order and every non-admin account. The
// catalog and administrators are kept.
func CleanDatabase(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		items := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.OrderItem{})
		if items.Error != nil {
			return fmt.Errorf("delete order items: %w", items.Error)
		}
		orders := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Order{})
		if orders.Error != nil {
			return fmt.Errorf("delete orders: %w", orders.Error)
		}
		users := tx.Where("role <> ?", models.RoleAdmin).Delete(&models.User{})
		if users.Error != nil {
			return fmt.Errorf("delete users: %w", users.Error)
		}

		slog.Info("database cleaned",
			"orders", orders.RowsAffected,
			"order_items", items.RowsAffected,
			"users", users.RowsAffected,
		)
		return nil
	})
}
