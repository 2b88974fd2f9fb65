package storefront

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Jahir7946/Cat-store/internal/cart"
	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
)

// Snapshot is a read-only copy of the state handed to subscribers.
type Snapshot struct {
	User       *models.User
	Token      string
	Products   []models.Product
	Categories []models.Category
	Filter     ProductFilter
	CartItems  []cart.Item
	CartTotal  decimal.Decimal
	ItemCount  int
	LastOrder  *models.Order
}

func (s Snapshot) LoggedIn() bool { return s.User != nil }

// State owns the session, catalog and cart. Its methods are the only way
// to change them; each change is followed by a synchronous notification of
// every subscriber.
type State struct {
	mu         sync.Mutex
	user       *models.User
	token      string
	products   []models.Product
	categories []models.Category
	filter     ProductFilter
	cart       *cart.Cart
	lastOrder  *models.Order

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Snapshot)
}

func NewState() *State {
	return &State{
		cart: cart.New(),
		subs: make(map[int]func(Snapshot)),
	}
}

// Subscribe registers fn and returns a function that removes it.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{
		Token:      s.token,
		Products:   append([]models.Product(nil), s.products...),
		Categories: append([]models.Category(nil), s.categories...),
		Filter:     s.filter,
		CartItems:  s.cart.Items(),
		CartTotal:  s.cart.Total(),
		ItemCount:  s.cart.ItemCount(),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.lastOrder != nil {
		o := *s.lastOrder
		snap.LastOrder = &o
	}
	return snap
}

// update applies fn under the lock and then notifies subscribers outside
// it, so subscribers may read the state again.
func (s *State) update(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func (s *State) SetSession(token string, user models.User) {
	s.update(func() {
		s.token = token
		s.user = &user
	})
}

func (s *State) SetUser(user models.User) {
	s.update(func() { s.user = &user })
}

// ClearSession logs out and forgets the last order.
func (s *State) ClearSession() {
	s.update(func() {
		s.token = ""
		s.user = nil
		s.lastOrder = nil
	})
}

func (s *State) SetCatalog(products []models.Product, categories []models.Category) {
	s.update(func() {
		s.products = products
		s.categories = categories
	})
}

func (s *State) SetProducts(products []models.Product) {
	s.update(func() { s.products = products })
}

func (s *State) SetFilter(f ProductFilter) {
	s.update(func() { s.filter = f })
}

func (s *State) AddToCart(p models.Product) {
	s.update(func() { s.cart.Add(p) })
}

func (s *State) ChangeQuantity(productID uint, delta int) {
	s.update(func() { s.cart.SetQuantity(productID, delta) })
}

func (s *State) RemoveFromCart(productID uint) {
	s.update(func() { s.cart.Remove(productID) })
}

func (s *State) ClearCart() {
	s.update(func() { s.cart.Clear() })
}

// CompleteOrder records a placed order and empties the cart.
func (s *State) CompleteOrder(order models.Order) {
	s.update(func() {
		s.lastOrder = &order
		s.cart.Clear()
	})
}

// CartLines returns the cart as order placement lines.
func (s *State) CartLines() []checkout.LineRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines()
}

// FindProduct looks a product up in the loaded catalog.
func (s *State) FindProduct(id uint) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
