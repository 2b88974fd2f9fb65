// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Jahir7946/Cat-store/config"
	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := config.OpenDatabase("sqlite", dsn, logger.Silent)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, config.Migrate(db))
	return db
}

// CreateProduct inserts a valid food product with the given price and stock.
func CreateProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()

	p := &models.Product{
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    models.CategoryFood,
		Image:       "test.png",
		Rating:      4,
		Description: name + " description",
		Stock:       stock,
		InStock:     stock > 0,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreateUser inserts a user with a bcrypt-hashed password.
func CreateUser(t *testing.T, db *gorm.DB, email, password, role string) *models.User {
	t.Helper()

	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)

	u := &models.User{Name: "Test " + role, Email: email, Password: hashed, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

// ProductStock reloads the stock column of product id.
func ProductStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()

	var p models.Product
	require.NoError(t, db.Unscoped().First(&p, id).Error)
	return p.Stock
}
