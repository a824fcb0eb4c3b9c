package handler

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// OrganizationUpdateRequest updates the tenant settings form
type OrganizationUpdateRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	VATNumber string `json:"vat_number" validate:"max=20"`
	Slug      string `json:"slug" validate:"required,min=3,max=50"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from an organization name
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// GetOrganization returns the caller's organization
func GetOrganization(c echo.Context) error {
	log := logger.FromContext(c)

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var org model.Organization
	if result := database.GetDB().First(&org, organizationID); result.Error != nil {
		log.Error("Organization not found", zap.Uint("organization_id", organizationID), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "organization not found"})
	}

	return c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles the settings form. Organizations are never
// deleted; this is the only mutation they receive after creation.
func UpdateOrganization(c echo.Context) error {
	log := logger.FromContext(c)

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req OrganizationUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse organization update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}
	if !slugPattern.MatchString(req.Slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"slug": "use only lowercase letters, numbers, and hyphens"},
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	// Slug is unique across tenants
	var count int64
	database.GetDB().Model(&model.Organization{}).
		Where("slug = ? AND id != ?", req.Slug, organizationID).
		Count(&count)
	if count > 0 {
		log.Warn("Slug already in use", zap.String("slug", req.Slug))
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already in use by another organization"})
	}

	result := database.GetDB().Model(&model.Organization{}).
		Where("id = ?", organizationID).
		Updates(map[string]interface{}{
			"name":       req.Name,
			"vat_number": req.VATNumber,
			"slug":       req.Slug,
		})
	if result.Error != nil {
		log.Error("Failed to update organization", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update organization"})
	}

	log.Info("Organization updated",
		zap.Uint("organization_id", organizationID),
		zap.String("slug", req.Slug))

	var org model.Organization
	database.GetDB().First(&org, organizationID)
	return c.JSON(http.StatusOK, org)
}
