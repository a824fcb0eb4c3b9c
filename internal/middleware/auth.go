package middleware

import (
	"net/http"
	"strings"

	"github.com/fgiubilesi-cpu/sgic/pkg/jwtutil"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the JWT token and extracts claims
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Track authentication attempts
		prometheus.AuthAttemptsCounter.Inc()

		// Extract the token from the Authorization header
		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}

		prometheus.AuthSuccessCounter.Inc()

		// Store user information in the context
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		// If the token carries an organization, store it in the context
		if claims.OrganizationID != nil {
			c.Set("organization_id", *claims.OrganizationID)
			c.Set("organization_slug", claims.OrganizationSlug)

			log = log.With(
				zap.Uint("organization_id", *claims.OrganizationID),
				zap.String("organization_slug", claims.OrganizationSlug),
			)
		}

		// Update logger with user information
		log = log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("email", claims.Email),
		)
		c.Set("logger", log)

		return next(c)
	}
}

// RequireOrganization ensures the authenticated principal is linked to an
// organization. Every tenant-scoped route sits behind this check.
func RequireOrganization(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		organizationID, ok := c.Get("organization_id").(uint)
		if !ok || organizationID == 0 {
			log.Warn("Missing organization context")
			prometheus.TenantContextMissingCounter.Inc()
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":   "no organization",
				"message": "Your profile is not linked to an organization",
			})
		}

		return next(c)
	}
}
