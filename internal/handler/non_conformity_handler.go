package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/aiengine"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateNonConformityRequest records a failure against a checklist item
type CreateNonConformityRequest struct {
	ChecklistItemID uint   `json:"checklist_item_id" validate:"required"`
	Title           string `json:"title" validate:"required,min=3,max=200"`
	Description     string `json:"description"`
	Severity        string `json:"severity" validate:"omitempty,oneof=critical major minor"`
}

// UpdateNonConformityRequest carries a partial non-conformity update
type UpdateNonConformityRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description"`
	Severity    *string `json:"severity" validate:"omitempty,oneof=critical major minor"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress closed on_hold"`
}

// CreateNonConformity records a non-conformity for a non-compliant item.
// The item outcome gate is enforced here, not trusted from the client.
func CreateNonConformity(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNonConformityOperation("create")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CreateNonConformityRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse non-conformity request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var item model.ChecklistItem
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", req.ChecklistItemID, organizationID).
		First(&item)
	if result.Error != nil {
		log.Warn("Checklist item not found or does not belong to tenant",
			zap.Uint("item_id", req.ChecklistItemID),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "checklist item not found"})
	}

	if lifecycle.Outcome(item.Outcome) != lifecycle.OutcomeNonCompliant {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "non-conformities can only be recorded against non-compliant items",
		})
	}

	severity := req.Severity
	if severity == "" {
		severity = string(lifecycle.DefaultSeverity)
	}

	nc := model.NonConformity{
		AuditID:         item.AuditID,
		ChecklistItemID: item.ID,
		OrganizationID:  organizationID,
		Title:           req.Title,
		Description:     req.Description,
		Severity:        severity,
		Status:          string(lifecycle.NCStatusOpen),
	}

	if result := database.GetDB().Create(&nc); result.Error != nil {
		log.Error("Failed to create non-conformity", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create non-conformity"})
	}

	log.Info("Non-conformity recorded",
		zap.Uint("non_conformity_id", nc.ID),
		zap.Uint("audit_id", item.AuditID),
		zap.Uint("item_id", item.ID),
		zap.String("severity", severity))

	return c.JSON(http.StatusCreated, nc)
}

// ListNonConformities returns all non-conformities for one audit
func ListNonConformities(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNonConformityOperation("list")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	auditID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid audit ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var audit model.Audit
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", auditID, organizationID).
		First(&audit)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "audit not found"})
	}

	var ncs []model.NonConformity
	result = database.GetDB().
		Where("audit_id = ? AND organization_id = ?", auditID, organizationID).
		Order("created_at DESC").
		Find(&ncs)
	if result.Error != nil {
		log.Error("Failed to list non-conformities", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list non-conformities"})
	}

	return c.JSON(http.StatusOK, ncs)
}

// UpdateNonConformity applies a partial update to one non-conformity
func UpdateNonConformity(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNonConformityOperation("update")

	nc, errResp := loadNonConformity(c)
	if errResp != nil {
		return errResp(c)
	}

	var req UpdateNonConformityRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse non-conformity update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Severity != nil {
		updates["severity"] = *req.Severity
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if lifecycle.NCStatus(*req.Status) == lifecycle.NCStatusClosed {
			now := time.Now()
			updates["closed_at"] = &now
		} else {
			// Reopening clears the closing timestamp
			updates["closed_at"] = nil
		}
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}
	updates["updated_at"] = time.Now()

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().Model(&model.NonConformity{}).
		Where("id = ?", nc.ID).
		Updates(updates)
	if result.Error != nil {
		log.Error("Failed to update non-conformity", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update non-conformity"})
	}

	database.GetDB().First(nc, nc.ID)

	log.Info("Non-conformity updated", zap.Uint("non_conformity_id", nc.ID))
	return c.JSON(http.StatusOK, nc)
}

// CloseNonConformity marks a non-conformity as closed and stamps the
// closing time. Open corrective actions do not block closure.
func CloseNonConformity(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNonConformityOperation("close")

	nc, errResp := loadNonConformity(c)
	if errResp != nil {
		return errResp(c)
	}

	if lifecycle.NCStatus(nc.Status) == lifecycle.NCStatusClosed {
		return c.JSON(http.StatusOK, echo.Map{
			"message":        "non-conformity already closed",
			"non_conformity": nc,
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	now := time.Now()
	result := database.GetDB().Model(&model.NonConformity{}).
		Where("id = ?", nc.ID).
		Updates(map[string]interface{}{
			"status":     string(lifecycle.NCStatusClosed),
			"closed_at":  &now,
			"updated_at": now,
		})
	if result.Error != nil {
		log.Error("Failed to close non-conformity", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to close non-conformity"})
	}

	nc.Status = string(lifecycle.NCStatusClosed)
	nc.ClosedAt = &now
	nc.UpdatedAt = now

	log.Info("Non-conformity closed", zap.Uint("non_conformity_id", nc.ID))
	return c.JSON(http.StatusOK, nc)
}

// AnalyzeRequest is the payload forwarded to the analysis engine
type AnalyzeRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
	Severity    string `json:"severity" validate:"omitempty,oneof=critical major minor"`
}

// AnalyzeNonConformity asks the analysis engine for a root-cause analysis
// and a suggested action plan. The result is advisory and is not persisted;
// the client decides what to carry into a corrective action. Engine
// failures never block manual entry.
func AnalyzeNonConformity(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNonConformityOperation("analyze")

	if _, ok := c.Get("organization_id").(uint); !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse analysis request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}
	if req.Severity == "" {
		req.Severity = string(lifecycle.DefaultSeverity)
	}

	engine := aiengine.GetClient()
	if engine == nil {
		log.Error("Analysis engine is not configured")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "analysis engine unavailable"})
	}

	analysis, err := engine.AnalyzeNonConformity(c.Request().Context(), aiengine.AnalysisRequest{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
	})
	if err != nil {
		prometheus.RecordAIAnalysis("error")
		log.Error("Analysis request failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "analysis engine request failed"})
	}

	prometheus.RecordAIAnalysis("success")
	log.Info("Non-conformity analyzed", zap.String("title", req.Title))

	return c.JSON(http.StatusOK, analysis)
}

// loadNonConformity resolves the tenant and loads the non-conformity
// scoped to the caller's organization
func loadNonConformity(c echo.Context) (*model.NonConformity, func(echo.Context) error) {
	log := logger.FromContext(c)

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid non-conformity ID"})
		}
	}

	var nc model.NonConformity
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&nc)
	if result.Error != nil {
		log.Warn("Non-conformity not found or does not belong to tenant",
			zap.Uint64("non_conformity_id", id),
			zap.Uint("organization_id", organizationID))
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "non-conformity not found"})
		}
	}

	return &nc, nil
}
