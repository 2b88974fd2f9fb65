package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
)

var (
	ErrNotLoggedIn    = errors.New("sign in to continue")
	ErrCartEmpty      = errors.New("cart is empty")
	ErrUnknownProduct = errors.New("product is not in the loaded catalog")
)

// App drives every user action through the API and records the result in
// the state store.
type App struct {
	Client *Client
	State  *State
	Postal *PostalLookup
}

func NewApp(client *Client, state *State, postal *PostalLookup) *App {
	return &App{Client: client, State: state, Postal: postal}
}

// LoadCatalog fetches categories and the products matching the current
// filter.
func (a *App) LoadCatalog(ctx context.Context) error {
	filter := a.State.Snapshot().Filter

	categories, err := a.Client.Categories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	products, err := a.Client.Products(ctx, filter)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	a.State.SetCatalog(products, categories)
	return nil
}

// ApplyFilter stores f and reloads the product list.
func (a *App) ApplyFilter(ctx context.Context, f ProductFilter) error {
	a.State.SetFilter(f)
	products, err := a.Client.Products(ctx, f)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	a.State.SetProducts(products)
	return nil
}

func (a *App) Register(ctx context.Context, name, email, password string) error {
	s, err := a.Client.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	a.State.SetSession(s.Token, s.User)
	return nil
}

func (a *App) Login(ctx context.Context, email, password string) error {
	s, err := a.Client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	a.State.SetSession(s.Token, s.User)
	return nil
}

// Logout drops the token and session. The cart survives.
func (a *App) Logout() {
	a.Client.SetToken("")
	a.State.ClearSession()
}

func (a *App) AddToCart(productID uint) error {
	p, ok := a.State.FindProduct(productID)
	if !ok {
		return ErrUnknownProduct
	}
	a.State.AddToCart(p)
	return nil
}

func (a *App) ChangeQuantity(productID uint, delta int) {
	a.State.ChangeQuantity(productID, delta)
}

func (a *App) RemoveFromCart(productID uint) {
	a.State.RemoveFromCart(productID)
}

// PlaceOrder submits the cart. The cart is cleared only when the order is
// accepted.
func (a *App) PlaceOrder(ctx context.Context, shipping models.ShippingInfo, payment checkout.PaymentDetails) (*models.Order, error) {
	if !a.State.Snapshot().LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	lines := a.State.CartLines()
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	order, err := a.Client.PlaceOrder(ctx, checkout.Request{
		Items:        lines,
		ShippingInfo: shipping,
		PaymentInfo:  payment,
	})
	if err != nil {
		return nil, err
	}

	a.State.CompleteOrder(*order)
	slog.Info("order placed", "order", order.OrderNumber, "total", FormatMoney(order.Total))
	return order, nil
}

func (a *App) UpdateProfile(ctx context.Context, name, email string) error {
	user, err := a.Client.UpdateProfile(ctx, name, email)
	if err != nil {
		return err
	}
	a.State.SetUser(*user)
	return nil
}

func (a *App) MyOrders(ctx context.Context) ([]models.Order, error) {
	if !a.State.Snapshot().LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	return a.Client.MyOrders(ctx)
}

// AdminOrders loads a page of orders as table rows.
func (a *App) AdminOrders(ctx context.Context, page int, status string) ([]AdminOrderRow, models.PaginationMeta, error) {
	orders, meta, err := a.Client.AdminOrders(ctx, page, checkout.DefaultPageSize, status)
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}
	return NewAdminOrderRows(orders), meta, nil
}

func (a *App) UpdateOrderStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	return a.Client.UpdateOrderStatus(ctx, orderID, status)
}

// FillShippingFromPostalCode completes city and state from the zip code.
// On lookup failure both fields are cleared and the error returned.
func (a *App) FillShippingFromPostalCode(ctx context.Context, info *models.ShippingInfo) error {
	place, err := a.Postal.Lookup(ctx, info.ZipCode)
	if err != nil {
		info.City = ""
		info.State = ""
		return err
	}
	info.City = place.City
	info.State = place.State
	return nil
}
