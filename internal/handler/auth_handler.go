package handler

import (
	"net/http"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/jwtutil"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest creates a user together with their organization
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	OrganizationName string `json:"organization_name" validate:"required,min=2,max=120"`
}

// LoginRequest authenticates an existing user
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register handles user and organization registration
func Register(c echo.Context) error {
	log := logger.FromContext(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	// Check if email is already registered
	var count int64
	database.GetDB().Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Email already registered", zap.String("email", req.Email))
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	slug := Slugify(req.OrganizationName)
	database.GetDB().Model(&model.Organization{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		log.Warn("Organization slug already in use", zap.String("slug", slug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "organization slug already in use"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Create organization and user together
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	org := model.Organization{
		Name: req.OrganizationName,
		Slug: slug,
	}
	if result := tx.Create(&org); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create organization", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := model.User{
		Email:          req.Email,
		Password:       string(hashed),
		OrganizationID: &org.ID,
	}
	if result := tx.Create(&user); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := jwtutil.GenerateTokenWithOrganization(user.Email, user.ID, &org.ID, org.Slug)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Uint("organization_id", org.ID))

	return c.JSON(http.StatusCreated, echo.Map{
		"token":        token,
		"user":         user,
		"organization": org,
	})
}

// Login handles user authentication
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var user model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&user); result.Error != nil {
		log.Warn("Login attempt for unknown email", zap.String("email", req.Email))
		prometheus.AuthErrorsCounter.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.AuthErrorsCounter.Inc()
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	// Tokens for unlinked users carry no organization; tenant-scoped
	// routes will reject them until a profile is linked.
	var token string
	var err error
	if user.OrganizationID != nil {
		var org model.Organization
		if result := database.GetDB().First(&org, *user.OrganizationID); result.Error != nil {
			log.Error("Organization not found for user", zap.Uint("organization_id", *user.OrganizationID))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		token, err = jwtutil.GenerateTokenWithOrganization(user.Email, user.ID, user.OrganizationID, org.Slug)
	} else {
		token, err = jwtutil.GenerateToken(user.Email, user.ID)
	}
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.AuthSuccessCounter.Inc()
	log.Info("User logged in", zap.String("email", user.Email), zap.Uint("user_id", user.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}
