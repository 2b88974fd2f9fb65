package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/config"
	"github.com/Jahir7946/Cat-store/internal/testutil"
	"github.com/Jahir7946/Cat-store/internal/ws"
	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/routes"
)

type env struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
	hub *ws.Hub
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{
		AppEnv:           "test",
		JWTSecret:        "test-secret",
		JWTExpiration:    time.Hour,
		AdminEmails:      []string{"boss@example.com"},
		UploadDir:        t.TempDir(),
		CORSAllowOrigins: []string{"*"},
		CORSAllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}
	db := testutil.NewDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	app := routes.NewApp(routes.Deps{Config: cfg, DB: db, Hub: hub, Quiet: true})
	return &env{app: app, db: db, cfg: cfg, hub: hub}
}

type response struct {
	Status int
	Body   map[string]interface{}
}

func (r response) data() map[string]interface{} {
	d, _ := r.Body["data"].(map[string]interface{})
	return d
}

func (r response) list() []interface{} {
	l, _ := r.Body["data"].([]interface{})
	return l
}

func (e *env) do(t *testing.T, method, path, token string, body interface{}) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.send(t, req)
}

func (e *env) send(t *testing.T, req *http.Request) response {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{Status: resp.StatusCode, Body: map[string]interface{}{}}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out.Body), string(raw))
	}
	return out
}

func (e *env) register(t *testing.T, name, email string) string {
	t.Helper()

	res := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": name, "email": email, "password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	token, _ := res.Body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func orderBody(productID uint, qty int) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": productID, "quantity": qty}},
		"shipping_info": map[string]string{
			"name": "Ana Lopez", "email": "ana@example.com", "address": "Calle Mayor 1",
			"city": "Madrid", "state": "Madrid", "zip_code": "28013",
		},
		"payment_info": map[string]string{
			"card_number": "4242424242421234", "expiry_date": "12/29", "cvc": "987",
		},
	}
}

func TestHealthAndNotFound(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "success", res.Body["status"])

	res = e.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, true, res.Body["error"])
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Mia", "email": "Mia@Example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.Status)
	user := res.Body["user"].(map[string]interface{})
	assert.Equal(t, "mia@example.com", user["email"])
	assert.Equal(t, models.RoleUser, user["role"])
	assert.NotContains(t, user, "password")

	dup := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Mia again", "email": "mia@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, dup.Status)

	ok := e.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "MIA@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusOK, ok.Status)
	assert.NotEmpty(t, ok.Body["token"])

	wrongPassword := e.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "mia@example.com", "password": "nope-nope",
	})
	unknownEmail := e.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "ghost@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Status)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Status)
	assert.Equal(t, wrongPassword.Body, unknownEmail.Body)
}

func TestRegister_ValidationDetails(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, res.Status)

	errs, ok := res.Body["errors"].([]interface{})
	require.True(t, ok, res.Body)
	fields := map[string]bool{}
	for _, raw := range errs {
		fields[raw.(map[string]interface{})["field"].(string)] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestRegister_AdminAllowList(t *testing.T) {
	e := newEnv(t)

	res := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Boss", "email": "boss@example.com", "password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, models.RoleAdmin, res.Body["user"].(map[string]interface{})["role"])
}

func TestProfileAndPassword(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "Mia", "mia@example.com")
	e.register(t, "Leo", "leo@example.com")

	res := e.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Mia", res.data()["name"])

	res = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"email": "leo@example.com"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]string{"name": "Mia R."})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "Mia R.", res.data()["name"])

	res = e.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"current_password": "wrong-one", "new_password": "newpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = e.do(t, http.MethodPut, "/api/users/password", token, map[string]string{
		"current_password": "password1", "new_password": "newpassword",
	})
	require.Equal(t, http.StatusOK, res.Status)

	res = e.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "mia@example.com", "password": "newpassword",
	})
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	e := newEnv(t)
	token := e.register(t, "Mia", "mia@example.com")

	for _, path := range []string{"/api/products/admin/all", "/api/categories/admin/all", "/api/orders/admin/all"} {
		res := e.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, res.Status, path)
	}

	res := e.do(t, http.MethodGet, "/api/orders/admin/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestProductListing(t *testing.T) {
	e := newEnv(t)
	testutil.CreateProduct(t, e.db, "Lata Húmeda Atún", "2.50", 10)
	testutil.CreateProduct(t, e.db, "Sold Out Kibble", "20.00", 0)
	testutil.CreateProduct(t, e.db, "Salmon Bites", "4.00", 3)
	toy := &models.Product{
		Name: "Feather Wand", Price: decimal.RequireFromString("6.99"),
		Category: models.CategoryToys, Image: "wand.png", Rating: 5, Description: "Interactive toy",
		Stock: 2, InStock: true,
	}
	require.NoError(t, e.db.Create(toy).Error)

	res := e.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.list(), 3)

	res = e.do(t, http.MethodGet, "/api/products?category=toys", "", nil)
	require.Len(t, res.list(), 1)
	assert.Equal(t, "Feather Wand", res.list()[0].(map[string]interface{})["name"])

	res = e.do(t, http.MethodGet, "/api/products?category=all", "", nil)
	assert.Len(t, res.list(), 3)

	res = e.do(t, http.MethodGet, "/api/products?q=atun", "", nil)
	require.Len(t, res.list(), 1)
	assert.Equal(t, "Lata Húmeda Atún", res.list()[0].(map[string]interface{})["name"])

	res = e.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", toy.ID), "", nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, 5.0, res.data()["rating"])

	res = e.do(t, http.MethodGet, "/api/products/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestProductAdminCRUD(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")

	res := e.do(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Cat Tree", "price": 89.9, "category": "accessories", "image": "tree.png",
		"rating": 9, "description": "Tall", "stock": 2,
	})
	require.Equal(t, http.StatusBadRequest, res.Status)
	assert.NotEmpty(t, res.Body["errors"])

	res = e.do(t, http.MethodPost, "/api/products", admin, map[string]interface{}{
		"name": "Cat Tree", "price": 89.9, "category": "accessories", "image": "tree.png",
		"rating": 4, "description": "Tall", "stock": 2,
	})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	id := uint(res.data()["id"].(float64))
	assert.Equal(t, true, res.data()["in_stock"])

	res = e.do(t, http.MethodPut, fmt.Sprintf("/api/products/%d", id), admin, map[string]interface{}{"stock": 0})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, false, res.data()["in_stock"])
	assert.Equal(t, "Cat Tree", res.data()["name"])

	res = e.do(t, http.MethodGet, "/api/products/admin/all?limit=1", admin, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.list(), 1)
	assert.Equal(t, 1.0, res.Body["meta"].(map[string]interface{})["total"])

	res = e.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), admin, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = e.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")

	res := e.do(t, http.MethodPost, "/api/categories", admin, map[string]string{"id": "treats", "name": "Treats"})
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	assert.Equal(t, "treats", res.data()["id"])

	res = e.do(t, http.MethodPost, "/api/categories", admin, map[string]string{"id": "treats", "name": "Again"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = e.do(t, http.MethodGet, "/api/categories/treats", "", nil)
	assert.Equal(t, http.StatusOK, res.Status)

	res = e.do(t, http.MethodDelete, "/api/categories/treats", admin, nil)
	require.Equal(t, http.StatusOK, res.Status)

	res = e.do(t, http.MethodGet, "/api/categories/treats", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	res = e.do(t, http.MethodGet, "/api/categories", "", nil)
	assert.Empty(t, res.list())

	res = e.do(t, http.MethodGet, "/api/categories/admin/all", admin, nil)
	require.Len(t, res.list(), 1)
	assert.Equal(t, false, res.list()[0].(map[string]interface{})["is_active"])

	var count int64
	require.NoError(t, e.db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOrderFlow(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")
	mia := e.register(t, "Mia", "mia@example.com")
	leo := e.register(t, "Leo", "leo@example.com")
	p := testutil.CreateProduct(t, e.db, "Dry Food", "10.00", 5)

	res := e.do(t, http.MethodPost, "/api/orders", "", orderBody(p.ID, 1))
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = e.do(t, http.MethodPost, "/api/orders", mia, orderBody(p.ID, 2))
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	order := res.data()
	assert.Equal(t, 20.0, order["subtotal"])
	assert.Equal(t, 20.0, order["total"])
	assert.Equal(t, "pending", order["status"])
	payment := order["payment_info"].(map[string]interface{})
	assert.Equal(t, "1234", payment["card_number"])
	assert.Equal(t, "***", payment["cvc"])
	item := order["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Dry Food", item["product"].(map[string]interface{})["name"])
	assert.Equal(t, 3, testutil.ProductStock(t, e.db, p.ID))

	id := uint(order["id"].(float64))
	path := fmt.Sprintf("/api/orders/%d", id)

	res = e.do(t, http.MethodGet, "/api/orders", mia, nil)
	assert.Len(t, res.list(), 1)
	res = e.do(t, http.MethodGet, path, leo, nil)
	assert.Equal(t, http.StatusNotFound, res.Status)
	res = e.do(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, res.Status)

	res = e.do(t, http.MethodPost, "/api/orders", mia, orderBody(9999, 1))
	assert.Equal(t, http.StatusNotFound, res.Status)
	res = e.do(t, http.MethodPost, "/api/orders", mia, orderBody(p.ID, 4))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	res = e.do(t, http.MethodPost, "/api/orders", mia, orderBody(p.ID, 0))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, 3, testutil.ProductStock(t, e.db, p.ID))

	res = e.do(t, http.MethodPut, path+"/status", mia, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusForbidden, res.Status)
	res = e.do(t, http.MethodPut, path+"/status", admin, map[string]string{"status": "teleported"})
	assert.Equal(t, http.StatusBadRequest, res.Status)
	res = e.do(t, http.MethodPut, path+"/status", admin, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, "cancelled", res.data()["status"])
	res = e.do(t, http.MethodPut, path+"/status", admin, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = e.do(t, http.MethodGet, "/api/orders/admin/all?status=cancelled", admin, nil)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Len(t, res.list(), 1)
	res = e.do(t, http.MethodGet, "/api/orders/admin/all?status=pending", admin, nil)
	assert.Empty(t, res.list())
}

func TestOrderStatusNotifiesOwner(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")
	mia := e.register(t, "Mia", "mia@example.com")
	p := testutil.CreateProduct(t, e.db, "Dry Food", "10.00", 5)

	res := e.do(t, http.MethodPost, "/api/orders", mia, orderBody(p.ID, 1))
	require.Equal(t, http.StatusCreated, res.Status)
	order := res.data()

	var owner models.User
	require.NoError(t, e.db.Where("email = ?", "mia@example.com").First(&owner).Error)
	client := &ws.Client{Hub: e.hub, Send: make(chan []byte, 4), UserID: owner.ID}
	require.True(t, e.hub.Register(client))
	require.Eventually(t, func() bool { return e.hub.IsUserOnline(owner.ID) }, time.Second, 5*time.Millisecond)

	res = e.do(t, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", uint(order["id"].(float64))), admin,
		map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, res.Status)

	select {
	case raw := <-client.Send:
		var ev ws.OrderEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, ws.EventOrderStatus, ev.Type)
		assert.Equal(t, order["order_number"], ev.OrderNumber)
		assert.Equal(t, models.OrderStatusProcessing, ev.Status)
	case <-time.After(time.Second):
		t.Fatal("no order event delivered")
	}
}

func multipartRequest(t *testing.T, path, token, field, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestImportProducts(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "category", "price", "stock", "rating", "description"},
		{"Catnip", "health", "3.00", 12, 4, "Dried catnip"},
		{"Bad", "food", "-1", 1, 4, "Negative price"},
	}
	for i, row := range rows {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res := e.send(t, multipartRequest(t, "/api/products/admin/import", admin, "file", "catalog.xlsx", buf.Bytes()))
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	assert.Equal(t, 1.0, res.data()["created"])
	assert.Len(t, res.data()["errors"], 1)

	var count int64
	require.NoError(t, e.db.Model(&models.Product{}).Where("name = ?", "Catnip").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUploadImage(t *testing.T) {
	e := newEnv(t)
	admin := e.register(t, "Boss", "boss@example.com")

	res := e.send(t, multipartRequest(t, "/api/uploads/images", admin, "image", "cat.exe", []byte("MZ")))
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = e.send(t, multipartRequest(t, "/api/uploads/images", admin, "image", "cat.png", []byte("\x89PNG")))
	require.Equal(t, http.StatusCreated, res.Status, res.Body)
	url, _ := res.data()["url"].(string)
	require.True(t, strings.HasPrefix(url, "/uploads/products/"))

	_, err := os.Stat(filepath.Join(e.cfg.UploadDir, "products", filepath.Base(url)))
	assert.NoError(t, err)
}
