// Package storefront is the shopper-facing layer: an HTTP client for the
// store API, an observable state store holding the session and cart, view
// models rendered with html/template, and the App controller that ties them
// together.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Jahir7946/Cat-store/internal/catalogio"
	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
)

// APIError is a non-2xx response from the store API.
type APIError struct {
	Status  int
	Message string
	Fields  []models.ErrorDetail
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the store REST API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Data json.RawMessage        `json:"data"`
	Meta *models.PaginationMeta `json:"meta"`
}

type errorBody struct {
	Message string               `json:"message"`
	Errors  []models.ErrorDetail `json:"errors"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do sends req and decodes the JSON response into out. out may be nil.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Message != "" {
			apiErr.Message = eb.Message
			apiErr.Fields = eb.Errors
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// call sends a JSON request and unwraps the {"data": ...} envelope into out.
func (c *Client) call(ctx context.Context, method, path string, in, out interface{}) (*models.PaginationMeta, error) {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env.Meta, nil
}

func (c *Client) upload(ctx context.Context, path, field, filename string, content io.Reader, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	var env envelope
	if err := c.do(req, &env); err != nil {
		return err
	}
	return json.Unmarshal(env.Data, out)
}

// ProductFilter narrows the public catalog. Empty fields apply no filter.
type ProductFilter struct {
	Category string
	Query    string
}

func (f ProductFilter) values() url.Values {
	v := url.Values{}
	if f.Category != "" && f.Category != "all" {
		v.Set("category", f.Category)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// Session is returned by register and login.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *Client) Products(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var out []models.Product
	_, err := c.call(ctx, http.MethodGet, withQuery("/api/products", f.values()), nil, &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id uint) (*models.Product, error) {
	var out models.Product
	if _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	_, err := c.call(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

func (c *Client) Category(ctx context.Context, slug string) (*models.Category, error) {
	var out models.Category
	if _, err := c.call(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) authenticate(ctx context.Context, path string, in interface{}) (*Session, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw), "application/json")
	if err != nil {
		return nil, err
	}

	var s Session
	if err := c.do(req, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Register creates an account and keeps its token for later calls.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/users/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

// Login keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "/api/users/login", map[string]string{
		"email": email, "password": password,
	})
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if _, err := c.call(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name, email string) (*models.User, error) {
	var out models.User
	in := map[string]string{"name": name, "email": email}
	if _, err := c.call(ctx, http.MethodPut, "/api/users/profile", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	in := map[string]string{"current_password": current, "new_password": next}
	_, err := c.call(ctx, http.MethodPut, "/api/users/password", in, nil)
	return err
}

func (c *Client) PlaceOrder(ctx context.Context, req checkout.Request) (*models.Order, error) {
	var out models.Order
	if _, err := c.call(ctx, http.MethodPost, "/api/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	_, err := c.call(ctx, http.MethodGet, "/api/orders", nil, &out)
	return out, err
}

func (c *Client) Order(ctx context.Context, id uint) (*models.Order, error) {
	var out models.Order
	if _, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminOrders lists every order. status "" or "all" applies no filter.
func (c *Client) AdminOrders(ctx context.Context, page, limit int, status string) ([]models.Order, models.PaginationMeta, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	if status != "" {
		v.Set("status", status)
	}

	var out []models.Order
	meta, err := c.call(ctx, http.MethodGet, withQuery("/api/orders/admin/all", v), nil, &out)
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}
	if meta == nil {
		meta = &models.PaginationMeta{}
	}
	return out, *meta, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var out models.Order
	in := map[string]models.OrderStatus{"status": status}
	if _, err := c.call(ctx, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminProducts(ctx context.Context, page, limit int) ([]models.Product, models.PaginationMeta, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("limit", strconv.Itoa(limit))

	var out []models.Product
	meta, err := c.call(ctx, http.MethodGet, withQuery("/api/products/admin/all", v), nil, &out)
	if err != nil {
		return nil, models.PaginationMeta{}, err
	}
	if meta == nil {
		meta = &models.PaginationMeta{}
	}
	return out, *meta, nil
}

// CreateProduct sends p's catalog fields. Ids and timestamps are ignored.
func (c *Client) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	in := map[string]interface{}{
		"name": p.Name, "price": p.Price, "category": p.Category, "image": p.Image,
		"rating": p.Rating, "description": p.Description, "stock": p.Stock,
	}
	var out models.Product
	if _, err := c.call(ctx, http.MethodPost, "/api/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct sends only the given fields, keyed by their JSON names.
func (c *Client) UpdateProduct(ctx context.Context, id uint, fields map[string]interface{}) (*models.Product, error) {
	var out models.Product
	if _, err := c.call(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uint) error {
	_, err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
	return err
}

// ImportResult mirrors the response of the spreadsheet import.
type ImportResult struct {
	Created  int                  `json:"created"`
	Products []models.Product     `json:"products"`
	Errors   []catalogio.RowError `json:"errors"`
}

func (c *Client) ImportProducts(ctx context.Context, filename string, xlsx io.Reader) (*ImportResult, error) {
	var out ImportResult
	if err := c.upload(ctx, "/api/products/admin/import", "file", filename, xlsx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage returns the public URL of the stored image.
func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.upload(ctx, "/api/uploads/images", "image", filename, image, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

func (c *Client) AdminCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	_, err := c.call(ctx, http.MethodGet, "/api/categories/admin/all", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, slug, name, description string) (*models.Category, error) {
	var out models.Category
	in := map[string]string{"id": slug, "name": name, "description": description}
	if _, err := c.call(ctx, http.MethodPost, "/api/categories", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, slug string, fields map[string]interface{}) (*models.Category, error) {
	var out models.Category
	if _, err := c.call(ctx, http.MethodPut, "/api/categories/"+url.PathEscape(slug), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateCategory hides the category from public listings.
func (c *Client) DeactivateCategory(ctx context.Context, slug string) error {
	_, err := c.call(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(slug), nil, nil)
	return err
}
