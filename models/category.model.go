package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is never hard-deleted; deactivation hides it from public listings.
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Slug        string `gorm:"size:100;not null;uniqueIndex" json:"id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;index" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	var errs ValidationErrors
	if c.Slug == "" {
		errs.Add("id", "required", "id is required")
	}
	if c.Name == "" {
		errs.Add("name", "required", "name is required")
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
