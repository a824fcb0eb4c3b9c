package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateTemplateRequest creates a reusable question set
type CreateTemplateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
}

// AddQuestionRequest appends one question to a template
type AddQuestionRequest struct {
	Question string `json:"question" validate:"required,min=1,max=1000"`
}

// CreateTemplate creates a new checklist template for the current tenant
func CreateTemplate(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("create")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse template creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	template := model.ChecklistTemplate{
		OrganizationID: organizationID,
		Title:          req.Title,
		Description:    req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if result := database.GetDB().Create(&template); result.Error != nil {
		log.Error("Failed to create template", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create template"})
	}

	log.Info("Template created",
		zap.Uint("template_id", template.ID),
		zap.String("title", template.Title))

	return c.JSON(http.StatusCreated, template)
}

// ListTemplates returns all templates for the current tenant
func ListTemplates(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("list")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var templates []model.ChecklistTemplate
	result := database.GetDB().
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&templates)
	if result.Error != nil {
		log.Error("Failed to list templates", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list templates"})
	}

	return c.JSON(http.StatusOK, templates)
}

// GetTemplate returns one template with its active questions in order.
// Soft-deleted questions never appear here.
func GetTemplate(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("get")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid template ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var template model.ChecklistTemplate
	result := database.GetDB().
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&template)
	if result.Error != nil {
		log.Warn("Template not found or does not belong to tenant",
			zap.Uint64("template_id", id),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
	}

	return c.JSON(http.StatusOK, template)
}

// AddQuestion appends a question to a template with the next sort order
func AddQuestion(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("add_question")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid template ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template ID"})
	}

	var req AddQuestionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse question request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Verify the template belongs to the tenant
	var template model.ChecklistTemplate
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", templateID, organizationID).
		First(&template)
	if result.Error != nil {
		log.Warn("Template not found or does not belong to tenant",
			zap.Uint64("template_id", templateID),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
	}

	// Next sort order spans deleted questions too, so re-adding after a
	// soft delete never reuses a position.
	var maxSort int
	database.GetDB().Model(&model.TemplateQuestion{}).
		Unscoped().
		Where("template_id = ?", templateID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxSort)

	question := model.TemplateQuestion{
		TemplateID:     uint(templateID),
		OrganizationID: organizationID,
		Question:       req.Question,
		SortOrder:      maxSort + 1,
	}

	if result := database.GetDB().Create(&question); result.Error != nil {
		log.Error("Failed to add question", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to add question"})
	}

	log.Info("Question added",
		zap.Uint("template_id", uint(templateID)),
		zap.Uint("question_id", question.ID))

	return c.JSON(http.StatusCreated, question)
}

// SoftDeleteQuestion stamps the question's deletion timestamp. The row
// stays in place so audits already snapshotted keep their history.
func SoftDeleteQuestion(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("delete_question")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid template ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template ID"})
	}
	questionID, err := strconv.ParseUint(c.Param("question_id"), 10, 32)
	if err != nil {
		log.Error("Invalid question ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid question ID"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().
		Where("id = ? AND template_id = ? AND organization_id = ?", questionID, templateID, organizationID).
		Delete(&model.TemplateQuestion{})
	if result.Error != nil {
		log.Error("Failed to delete question", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete question"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
	}

	log.Info("Question soft-deleted",
		zap.Uint64("template_id", templateID),
		zap.Uint64("question_id", questionID))

	return c.JSON(http.StatusOK, echo.Map{"message": "question deleted"})
}
