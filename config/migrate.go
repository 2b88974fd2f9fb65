package config

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
)

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		slog.Error("failed to migrate database schema", "error", err)
		return err
	}

	slog.Info("database migrations completed")
	return nil
}

// ResetAndMigrate drops every table, recreates the schema and seeds the
// catalog.
func ResetAndMigrate(db *gorm.DB) error {
	if err := db.Migrator().DropTable(allModels()...); err != nil {
		slog.Error("failed to drop tables", "error", err)
		return err
	}

	slog.Info("all tables dropped")

	if err := db.AutoMigrate(allModels()...); err != nil {
		slog.Error("failed to auto migrate", "error", err)
		return err
	}

	catalog, err := LoadSeedCatalog()
	if err != nil {
		return err
	}
	if err := SeedCatalog(db, catalog); err != nil {
		return err
	}

	slog.Info("database reset and migration completed")
	return nil
}
