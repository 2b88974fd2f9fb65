// Package routes assembles the fiber application: middleware, handlers and
// the websocket order feed.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/config"
	"github.com/Jahir7946/Cat-store/handlers"
	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/internal/ws"
	"github.com/Jahir7946/Cat-store/middleware"
	"github.com/Jahir7946/Cat-store/utils"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Hub    *ws.Hub

	// Quiet disables access logs.
	Quiet bool
}

// NewApp builds the HTTP application. The caller owns the hub goroutine.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config

	app := fiber.New(fiber.Config{
		AppName:      "Cat Store",
		ServerHeader: "Cat Store Server/1.0",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    10 * 1024 * 1024,
	})

	middleware.SetupMiddleware(app, middleware.Options{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		DisableLogger: d.Quiet,
	})

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	app.Static("/uploads", cfg.UploadDir)

	auth := utils.NewAuthenticator(d.DB, cfg.JWTSecret, cfg.JWTExpiration)
	orders := checkout.NewService(d.DB)

	productHandler := handlers.NewProductHandler(d.DB)
	categoryHandler := handlers.NewCategoryHandler(d.DB)
	userHandler := handlers.NewUserHandler(d.DB, auth, cfg)
	orderHandler := handlers.NewOrderHandler(orders, d.Hub)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir)
	notificationHandler := handlers.NewNotificationHandler(d.Hub)

	requireAuth := auth.AuthMiddleware
	admin := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{auth.AuthMiddleware, utils.AdminOnly, h}
	}

	api := app.Group("/api")

	// Products
	products := api.Group("/products")
	products.Get("/", productHandler.GetAllProducts)
	products.Get("/admin/all", admin(productHandler.GetAdminProducts)...)
	products.Post("/admin/import", admin(productHandler.ImportProducts)...)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", admin(productHandler.CreateProduct)...)
	products.Put("/:id", admin(productHandler.UpdateProduct)...)
	products.Delete("/:id", admin(productHandler.DeleteProduct)...)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.GetCategories)
	categories.Get("/admin/all", admin(categoryHandler.GetAdminCategories)...)
	categories.Get("/:id", categoryHandler.GetCategory)
	categories.Post("/", admin(categoryHandler.CreateCategory)...)
	categories.Put("/:id", admin(categoryHandler.UpdateCategory)...)
	categories.Delete("/:id", admin(categoryHandler.DeleteCategory)...)

	// Users
	users := api.Group("/users")
	users.Post("/register", userHandler.Register)
	users.Post("/login", userHandler.Login)
	users.Get("/profile", requireAuth, userHandler.GetProfile)
	users.Put("/profile", requireAuth, userHandler.UpdateProfile)
	users.Put("/password", requireAuth, userHandler.ChangePassword)

	// Orders
	ordersGroup := api.Group("/orders")
	ordersGroup.Post("/", requireAuth, orderHandler.CreateOrder)
	ordersGroup.Get("/", requireAuth, orderHandler.GetMyOrders)
	ordersGroup.Get("/admin/all", admin(orderHandler.GetAllOrders)...)
	ordersGroup.Get("/:id", requireAuth, orderHandler.GetOrder)
	ordersGroup.Put("/:id/status", admin(orderHandler.UpdateOrderStatus)...)

	// Uploads
	api.Post("/uploads/images", admin(uploadHandler.UploadImage)...)

	// Order status feed; browsers cannot set headers on websocket upgrades
	app.Get("/ws/orders",
		notificationHandler.WebSocketUpgradeMiddleware,
		auth.QueryAuthMiddleware,
		notificationHandler.Handler(),
	)

	app.Use(middleware.NotFound)

	return app
}
