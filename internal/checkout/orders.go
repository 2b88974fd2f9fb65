package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery selects a page of orders across all users.
type ListQuery struct {
	Page   int
	Limit  int
	Status string // empty or "all" means any status
}

func (q *ListQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
}

// ListForUser returns the orders of userID, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := Preload(s.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, err
}

// List returns one page of orders, newest first, and the number of orders
// matching the filter.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.Order, models.PaginationMeta, error) {
	q.normalize()

	filter := func(db *gorm.DB) *gorm.DB {
		if q.Status != "" && q.Status != "all" {
			return db.Where("status = ?", q.Status)
		}
		return db
	}

	var total int64
	if err := filter(s.db.WithContext(ctx).Model(&models.Order{})).Count(&total).Error; err != nil {
		return nil, models.PaginationMeta{}, err
	}

	orders := []models.Order{}
	err := filter(Preload(s.db.WithContext(ctx))).
		Order("created_at desc, id desc").
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}

	return orders, models.NewPaginationMeta(q.Page, q.Limit, total), nil
}
