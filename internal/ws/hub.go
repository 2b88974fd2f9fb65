package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Jahir7946/Cat-store/models"
)

// EventOrderStatus is sent to an order's owner whenever an administrator
// moves the order to a new status.
const EventOrderStatus = "order_status"

// OrderEvent is the payload pushed to connected clients.
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
}

// Hub maintains the set of active clients and delivers order events to the
// connections of the user they concern.
type Hub struct {
	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Map to quickly find clients by UserID
	userClients map[uint][]*Client

	// Mutex to protect the userClients map
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		userClients: make(map[uint][]*Client),
	}
}

// Run processes registrations until ctx is cancelled, then closes every
// remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// Register adds client to the hub. It returns false once the hub has
// stopped, in which case the caller owns the connection.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client and closes its Send channel. It returns
// immediately when the hub has already stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) add(client *Client) {
	h.mutex.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])
	h.mutex.Unlock()

	slog.Debug("order feed connected", "user_id", client.UserID, "connections", count)
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns := h.userClients[client.UserID]
	for i, conn := range conns {
		if conn == client {
			h.userClients[client.UserID] = append(conns[:i], conns[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}

	slog.Debug("order feed disconnected", "user_id", client.UserID)
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, conns := range h.userClients {
		for _, c := range conns {
			close(c.Send)
		}
		delete(h.userClients, userID)
	}
}

// SendToUser sends a message to every active connection of userID. A client
// whose buffer is full misses the message rather than blocking the caller.
func (h *Hub) SendToUser(userID uint, message []byte) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- message:
			delivered++
		default:
			slog.Warn("order feed buffer full, dropping event", "user_id", userID)
		}
	}
	return delivered
}

// reply queues message for client alone. Clients already removed from the
// hub have a closed Send channel and are skipped.
func (h *Hub) reply(client *Client, message []byte) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.userClients[client.UserID] {
		if c != client {
			continue
		}
		select {
		case client.Send <- message:
			return true
		default:
			slog.Warn("order feed buffer full, dropping reply", "user_id", client.UserID)
			return false
		}
	}
	return false
}

// NotifyOrderStatus tells the owner of order that its status changed.
func (h *Hub) NotifyOrderStatus(order *models.Order) {
	payload, err := json.Marshal(OrderEvent{
		Type:        EventOrderStatus,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
	})
	if err != nil {
		slog.Error("marshal order event", "order_id", order.ID, "error", err)
		return
	}
	h.SendToUser(order.UserID, payload)
}

// IsUserOnline checks if a user has any active WebSocket connection
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.userClients[userID]
	return ok && len(clients) > 0
}
