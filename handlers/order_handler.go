package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/internal/ws"
	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

type OrderHandler struct {
	Orders *checkout.Service
	Hub    *ws.Hub
}

func NewOrderHandler(orders *checkout.Service, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{Orders: orders, Hub: hub}
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// CreateOrder - POST /api/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req checkout.Request
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	user := utils.CurrentUser(c)
	order, err := h.Orders.PlaceOrder(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}

	slog.Info("order placed",
		"order", order.OrderNumber,
		"user_id", user.ID,
		"items", len(order.Items),
		"total", order.Total.StringFixed(2),
	)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": order})
}

// GetMyOrders - GET /api/orders
func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	orders, err := h.Orders.ListForUser(c.UserContext(), utils.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders})
}

// GetOrder - GET /api/orders/:id
// Other users' orders are reported as missing rather than forbidden.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order ID")
	}

	order, err := h.Orders.Load(c.UserContext(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	user := utils.CurrentUser(c)
	if order.UserID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(fiber.Map{"data": order})
}

// GetAllOrders - GET /api/orders/admin/all
func (h *OrderHandler) GetAllOrders(c *fiber.Ctx) error {
	page, limit := pagination(c)

	orders, meta, err := h.Orders.List(c.UserContext(), checkout.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": orders, "meta": meta})
}

// UpdateOrderStatus - PUT /api/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order ID")
	}

	var req UpdateStatusRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	order, err := h.Orders.UpdateStatus(c.UserContext(), uint(id), req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return err
	}

	slog.Info("order status updated", "order", order.OrderNumber, "status", order.Status)
	if h.Hub != nil {
		h.Hub.NotifyOrderStatus(order)
	}
	return c.JSON(fiber.Map{"data": order})
}
