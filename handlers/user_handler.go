package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Jahir7946/Cat-store/config"
	"github.com/Jahir7946/Cat-store/models"
	"github.com/Jahir7946/Cat-store/utils"
)

// errBadCredentials is shared by every login failure so the response does
// not reveal whether the email is registered.
var errBadCredentials = fiber.NewError(fiber.StatusUnauthorized, "Invalid email or password")

type UserHandler struct {
	DB   *gorm.DB
	Auth *utils.Authenticator
	Cfg  *config.Config
}

func NewUserHandler(db *gorm.DB, auth *utils.Authenticator, cfg *config.Config) *UserHandler {
	return &UserHandler{DB: db, Auth: auth, Cfg: cfg}
}

// RegisterRequest defines the payload for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the payload for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,max=100"`
	Email string `json:"email" validate:"omitempty,email,max=100"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

func (h *UserHandler) emailTaken(email string, exceptID uint) (bool, error) {
	var count int64
	err := h.DB.Model(&models.User{}).
		Where("email = ? AND id <> ?", models.NormalizeEmail(email), exceptID).
		Count(&count).Error
	return count > 0, err
}

func (h *UserHandler) authResponse(c *fiber.Ctx, status int, user *models.User) error {
	token, err := h.Auth.GenerateToken(user.ID)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Register - POST /api/users/register
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	taken, err := h.emailTaken(req.Email, 0)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusBadRequest, "User already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     h.Cfg.RoleFor(req.Email),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return err
	}

	slog.Info("user registered", "id", user.ID, "role", user.Role)
	return h.authResponse(c, fiber.StatusCreated, &user)
}

// Login - POST /api/users/login
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	var user models.User
	if err := h.DB.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errBadCredentials
		}
		return err
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return errBadCredentials
	}

	return h.authResponse(c, fiber.StatusOK, &user)
}

// GetProfile - GET /api/users/profile
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": utils.CurrentUser(c)})
}

// UpdateProfile - PUT /api/users/profile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	user := utils.CurrentUser(c)
	if req.Email != "" && models.NormalizeEmail(req.Email) != user.Email {
		taken, err := h.emailTaken(req.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return fiber.NewError(fiber.StatusBadRequest, "Email is already in use")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}

	if err := h.DB.Save(user).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// ChangePassword - PUT /api/users/password
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := utils.BindJSON(c, &req); err != nil {
		return err
	}

	user := utils.CurrentUser(c)
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Current password is incorrect")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := h.DB.Model(user).Update("password", hashed).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
