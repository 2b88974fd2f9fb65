package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/models"
)

// Locals keys set by AuthMiddleware.
const (
	LocalUser   = "user"
	LocalUserID = "user_id"
)

type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator issues bearer tokens and guards protected routes. Every
// request re-reads the user so role changes apply without waiting for the
// token to expire.
type Authenticator struct {
	DB     *gorm.DB
	Secret []byte
	TTL    time.Duration

	now func() time.Time
}

func NewAuthenticator(db *gorm.DB, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{DB: db, Secret: []byte(secret), TTL: ttl, now: time.Now}
}

func (a *Authenticator) GenerateToken(userID uint) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

func (a *Authenticator) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.Secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) string {
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware requires a valid bearer token and stores the resolved user
// in Locals.
func (a *Authenticator) AuthMiddleware(c *fiber.Ctx) error {
	return a.authenticate(c, bearerToken(c))
}

// QueryAuthMiddleware also accepts the token in the "token" query parameter,
// for websocket upgrades where browsers cannot set headers.
func (a *Authenticator) QueryAuthMiddleware(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		token = c.Query("token")
	}
	return a.authenticate(c, token)
}

func (a *Authenticator) authenticate(c *fiber.Ctx, tokenString string) error {
	if tokenString == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "No token provided")
	}

	claims, err := a.ParseToken(tokenString)
	if err != nil {
		return fiber.NewError(fiber.StatusForbidden, "Token is invalid or expired")
	}

	var user models.User
	if err := a.DB.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "User not found")
		}
		return err
	}

	c.Locals(LocalUser, &user)
	c.Locals(LocalUserID, user.ID)
	return c.Next()
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Authentication required")
	}
	if !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Admin permissions required")
	}
	return c.Next()
}

// CurrentUser returns the user resolved by AuthMiddleware, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(LocalUser).(*models.User)
	return user
}
