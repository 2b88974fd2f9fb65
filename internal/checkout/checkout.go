// Package checkout turns a submitted list of order lines into a persisted
// order. Prices are captured from the catalog at placement time, stock is
// checked and decremented in the same transaction, and only a redacted copy
// of the payment details is stored.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrStatusLocked      = errors.New("order status can no longer change")
)

// MaskedCVC replaces the card verification code in every stored order.
const MaskedCVC = "***"

type LineRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type PaymentDetails struct {
	CardNumber string `json:"card_number" validate:"required,min=4"`
	ExpiryDate string `json:"expiry_date" validate:"required"`
	CVC        string `json:"cvc" validate:"required"`
}

type Request struct {
	Items        []LineRequest       `json:"items" validate:"required,min=1,dive"`
	ShippingInfo models.ShippingInfo `json:"shipping_info"`
	PaymentInfo  PaymentDetails      `json:"payment_info"`
}

type Service struct {
	db           *gorm.DB
	shippingCost decimal.Decimal
	newNumber    func() string
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:           db,
		shippingCost: decimal.Zero,
		newNumber:    NewOrderNumber,
	}
}

// NewOrderNumber returns a short human-facing order reference.
func NewOrderNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:8])
}

// cardDigits drops everything but ASCII digits from a card number.
func cardDigits(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

func validatePayment(p PaymentDetails) error {
	if len(cardDigits(p.CardNumber)) < 4 {
		return models.ValidationErrors{Errors: []models.ErrorDetail{{
			Code: "digits", Field: "payment_info.card_number", Message: "card_number must contain at least 4 digits",
		}}}
	}
	return nil
}

// RedactPayment keeps the last four card digits and masks the CVC.
func RedactPayment(p PaymentDetails) models.PaymentInfo {
	digits := cardDigits(p.CardNumber)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return models.PaymentInfo{
		CardLast4:  digits,
		ExpiryDate: p.ExpiryDate,
		CVC:        MaskedCVC,
	}
}

// PriceLines builds order items from lines using the prices in products and
// returns them with their subtotal. products must contain every line's
// product and enough stock for the aggregated quantity of each product.
func PriceLines(lines []LineRequest, products map[uint]models.Product) ([]models.OrderItem, decimal.Decimal, error) {
	if len(lines) == 0 {
		return nil, decimal.Zero, ErrEmptyOrder
	}

	requested := make(map[uint]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, models.ValidationErrors{Errors: []models.ErrorDetail{{
				Code: "gt", Field: "quantity", Message: fmt.Sprintf("quantity for product %d must be greater than 0", line.ProductID),
			}}}
		}
		if _, ok := products[line.ProductID]; !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
	}

	for _, line := range lines {
		p := products[line.ProductID]
		if requested[p.ID] > p.Stock {
			return nil, decimal.Zero, fmt.Errorf("%w for %s", ErrInsufficientStock, p.Name)
		}
	}

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		p := products[line.ProductID]
		item := models.OrderItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			Price:     p.Price,
		}
		subtotal = subtotal.Add(item.LineTotal())
		items = append(items, item)
	}
	return items, subtotal, nil
}

// PlaceOrder validates req against the catalog, stores the order for
// userID and decrements stock. Either everything is written or nothing is.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req Request) (*models.Order, error) {
	if err := validatePayment(req.PaymentInfo); err != nil {
		return nil, err
	}

	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(req.Items))
		for _, line := range req.Items {
			ids = append(ids, line.ProductID)
		}

		var found []models.Product
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
				return err
			}
		}
		products := make(map[uint]models.Product, len(found))
		for _, p := range found {
			products[p.ID] = p
		}

		items, subtotal, err := PriceLines(req.Items, products)
		if err != nil {
			return err
		}

		order = models.Order{
			OrderNumber:  s.newNumber(),
			UserID:       userID,
			Items:        items,
			ShippingInfo: req.ShippingInfo,
			PaymentInfo:  RedactPayment(req.PaymentInfo),
			Subtotal:     subtotal,
			ShippingCost: s.shippingCost,
			Total:        subtotal.Add(s.shippingCost),
			Status:       models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, line := range req.Items {
			if err := decrementStock(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Load(ctx, order.ID)
}

// decrementStock only succeeds while enough stock remains, so a concurrent
// order that drained the product fails instead of overselling.
func decrementStock(tx *gorm.DB, productID uint, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("decrement stock of product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w for product %d", ErrInsufficientStock, productID)
	}

	return tx.Model(&models.Product{}).
		Where("id = ? AND stock <= 0", productID).
		UpdateColumn("in_stock", false).Error
}

// Preload expands order items to full product detail, including products
// deleted from the catalog since the order was placed.
func Preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id asc") }).
		Preload("Items.Product", func(tx *gorm.DB) *gorm.DB { return tx.Unscoped() }).
		Preload("User")
}

// Load fetches one order with its items and owner.
func (s *Service) Load(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := Preload(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order to status. Orders in a terminal status cannot
// change any more.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, models.ValidationErrors{Errors: []models.ErrorDetail{{
			Code: "oneof", Field: "status", Message: "status must be one of pending, processing, shipped, delivered, cancelled",
		}}}
	}

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	if order.Status.Terminal() && order.Status != status {
		return nil, fmt.Errorf("%w: order %s is already %s", ErrStatusLocked, order.OrderNumber, order.Status)
	}

	if err := s.db.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}
