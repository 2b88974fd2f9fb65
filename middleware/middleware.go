package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/internal/checkout"
	"github.com/Jahir7946/Cat-store/models"
)

type Options struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string

	// DisableLogger turns off per-request access logs (tests)
	DisableLogger bool
}

// SetupMiddleware configures all application middleware
func SetupMiddleware(app *fiber.App, opts Options) {
	// Request ID middleware - adds unique ID to each request
	app.Use(requestid.New())

	if !opts.DisableLogger {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${method} ${path} - ${ip} - ${latency}\n",
			TimeFormat: "2006-01-02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(opts.AllowOrigins, ","),
		AllowMethods:     strings.Join(opts.AllowMethods, ","),
		AllowHeaders:     strings.Join(opts.AllowHeaders, ","),
		AllowCredentials: false,
		ExposeHeaders:    "X-Request-ID",
		MaxAge:           86400, // 24 hours
	}))
}

// ErrorHandler renders every error returned by a handler as
// {"error": true, "message": ...}. Unexpected errors are logged and
// reported with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"
	var details []models.ErrorDetail

	var fe *fiber.Error
	var ve models.ValidationErrors
	switch {
	case errors.As(err, &ve):
		code = fiber.StatusBadRequest
		msg = "Validation failed"
		details = ve.Errors
	case errors.As(err, &fe):
		code = fe.Code
		msg = fe.Message
	case errors.Is(err, checkout.ErrProductNotFound):
		code = fiber.StatusNotFound
		msg = err.Error()
	case errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, checkout.ErrEmptyOrder),
		errors.Is(err, checkout.ErrStatusLocked):
		code = fiber.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		code = fiber.StatusNotFound
		msg = "Resource not found"
	default:
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
	}

	body := fiber.Map{
		"error":   true,
		"message": msg,
	}
	if len(details) > 0 {
		body["errors"] = details
	}
	return c.Status(code).JSON(body)
}

// NotFound handles routes that matched nothing.
func NotFound(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "The requested resource was not found")
}
