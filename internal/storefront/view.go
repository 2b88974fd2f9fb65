package storefront

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Jahir7946/Cat-store/internal/cart"
	"github.com/Jahir7946/Cat-store/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// FormatMoney renders an amount for display, rounded to cents.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Stars draws a 1-5 rating as filled and empty stars.
func Stars(rating int) string {
	if rating < models.MinRating {
		rating = models.MinRating
	}
	if rating > models.MaxRating {
		rating = models.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", models.MaxRating-rating)
}

type ProductCard struct {
	ID       uint
	Name     string
	Price    string
	Category string
	Image    string
	Stars    string
	InStock  bool
}

type GridView struct {
	Cards    []ProductCard
	Filter   string
	Query    string
	Empty    bool
	Category []CategoryOption
}

type CategoryOption struct {
	ID       string
	Name     string
	Selected bool
}

func NewGridView(snap Snapshot) GridView {
	v := GridView{Filter: snap.Filter.Category, Query: snap.Filter.Query}
	if v.Filter == "" {
		v.Filter = "all"
	}
	v.Category = append(v.Category, CategoryOption{ID: "all", Name: "All", Selected: v.Filter == "all"})
	for _, c := range snap.Categories {
		v.Category = append(v.Category, CategoryOption{ID: c.Slug, Name: c.Name, Selected: v.Filter == c.Slug})
	}
	for _, p := range snap.Products {
		v.Cards = append(v.Cards, ProductCard{
			ID:       p.ID,
			Name:     p.Name,
			Price:    FormatMoney(p.Price),
			Category: p.Category,
			Image:    p.Image,
			Stars:    Stars(p.Rating),
			InStock:  p.InStock,
		})
	}
	v.Empty = len(v.Cards) == 0
	return v
}

type CartLineView struct {
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type CartView struct {
	Lines     []CartLineView
	Total     string
	ItemCount int
	Empty     bool
}

func NewCartView(items []cart.Item) CartView {
	total := decimal.Zero
	count := 0
	v := CartView{}
	for _, it := range items {
		v.Lines = append(v.Lines, CartLineView{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Quantity:  it.Quantity,
			UnitPrice: FormatMoney(it.Product.Price),
			LineTotal: FormatMoney(it.LineTotal()),
		})
		total = total.Add(it.LineTotal())
		count += it.Quantity
	}
	v.Total = FormatMoney(total)
	v.ItemCount = count
	v.Empty = len(v.Lines) == 0
	return v
}

// CheckoutSummary is shown before the order is submitted. Shipping is
// flat and currently free.
type CheckoutSummary struct {
	Cart     CartView
	Subtotal string
	Shipping string
	Total    string
	CanPlace bool
}

func NewCheckoutSummary(snap Snapshot) CheckoutSummary {
	return CheckoutSummary{
		Cart:     NewCartView(snap.CartItems),
		Subtotal: FormatMoney(snap.CartTotal),
		Shipping: FormatMoney(decimal.Zero),
		Total:    FormatMoney(snap.CartTotal),
		CanPlace: snap.LoggedIn() && snap.ItemCount > 0,
	}
}

type AuthView struct {
	LoggedIn bool
	Name     string
	Email    string
	IsAdmin  bool
}

func NewAuthView(snap Snapshot) AuthView {
	if snap.User == nil {
		return AuthView{}
	}
	return AuthView{
		LoggedIn: true,
		Name:     snap.User.Name,
		Email:    snap.User.Email,
		IsAdmin:  snap.User.IsAdmin(),
	}
}

type AdminProductRow struct {
	ID       uint
	Name     string
	Category string
	Price    string
	Stock    int
	InStock  bool
}

func NewAdminProductRows(products []models.Product) []AdminProductRow {
	rows := make([]AdminProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, AdminProductRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    FormatMoney(p.Price),
			Stock:    p.Stock,
			InStock:  p.InStock,
		})
	}
	return rows
}

type AdminOrderRow struct {
	ID          uint
	OrderNumber string
	Customer    string
	Items       int
	Total       string
	Status      string
	CreatedAt   string
	Locked      bool
	Statuses    []string
}

func NewAdminOrderRows(orders []models.Order) []AdminOrderRow {
	statuses := make([]string, 0, len(models.OrderStatuses))
	for _, s := range models.OrderStatuses {
		statuses = append(statuses, string(s))
	}

	rows := make([]AdminOrderRow, 0, len(orders))
	for _, o := range orders {
		customer := o.ShippingInfo.Name
		if o.User != nil {
			customer = fmt.Sprintf("%s <%s>", o.User.Name, o.User.Email)
		}
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		rows = append(rows, AdminOrderRow{
			ID:          o.ID,
			OrderNumber: o.OrderNumber,
			Customer:    customer,
			Items:       items,
			Total:       FormatMoney(o.Total),
			Status:      string(o.Status),
			CreatedAt:   o.CreatedAt.Format("2006-01-02 15:04"),
			Locked:      o.Status.Terminal(),
			Statuses:    statuses,
		})
	}
	return rows
}

// Renderer executes the embedded view templates.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("storefront").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the named view ("grid", "cart", "checkout", "auth",
// "admin_products", "admin_orders").
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
