package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateAuditRequest materializes a new audit from a template
type CreateAuditRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	ScheduledDate string `json:"scheduled_date" validate:"required"`
	TemplateID    uint   `json:"template_id" validate:"required"`
}

// CreateAuditFromTemplate creates an audit and snapshots the template's
// active questions into audit-scoped checklist items. The copy is
// point-in-time: later template edits never touch existing audits.
func CreateAuditFromTemplate(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("create")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CreateAuditRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse audit creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	scheduledDate, err := time.Parse("2006-01-02", req.ScheduledDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": map[string]string{"scheduled_date": "must be a date in YYYY-MM-DD format"},
		})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	// Verify the template belongs to the tenant
	var template model.ChecklistTemplate
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", req.TemplateID, organizationID).
		First(&template)
	if result.Error != nil {
		log.Warn("Template not found or does not belong to tenant",
			zap.Uint("template_id", req.TemplateID),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "template not found"})
	}

	// Active questions only, in template order
	var questions []model.TemplateQuestion
	result = database.GetDB().
		Where("template_id = ? AND organization_id = ?", req.TemplateID, organizationID).
		Order("sort_order ASC").
		Find(&questions)
	if result.Error != nil {
		log.Error("Failed to load template questions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create audit"})
	}

	audit := model.Audit{
		OrganizationID: organizationID,
		Title:          req.Title,
		ScheduledDate:  scheduledDate,
		Status:         string(lifecycle.StatusScheduled),
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		// An empty template still yields a valid audit
		if len(questions) == 0 {
			return nil
		}

		items := make([]model.ChecklistItem, 0, len(questions))
		for _, q := range questions {
			items = append(items, model.ChecklistItem{
				AuditID:        audit.ID,
				OrganizationID: organizationID,
				Question:       q.Question,
				Outcome:        string(lifecycle.OutcomePending),
				SortOrder:      q.SortOrder,
			})
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		log.Error("Failed to create audit from template", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create audit"})
	}

	log.Info("Audit created from template",
		zap.Uint("audit_id", audit.ID),
		zap.Uint("template_id", req.TemplateID),
		zap.Int("item_count", len(questions)))

	return c.JSON(http.StatusCreated, audit)
}

// ListAudits returns all audits for the current tenant
func ListAudits(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("list")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var audits []model.Audit
	result := database.GetDB().
		Where("organization_id = ?", organizationID).
		Order("scheduled_date DESC").
		Find(&audits)
	if result.Error != nil {
		log.Error("Failed to list audits", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list audits"})
	}

	return c.JSON(http.StatusOK, audits)
}

// GetAudit returns one audit with its checklist items in order
func GetAudit(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("get")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Error("Invalid audit ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid audit ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var audit model.Audit
	result := database.GetDB().
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&audit)
	if result.Error != nil {
		log.Warn("Audit not found or does not belong to tenant",
			zap.Uint64("audit_id", id),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "audit not found"})
	}

	return c.JSON(http.StatusOK, audit)
}

// StartAudit moves a Scheduled audit to In Progress
func StartAudit(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("start")

	audit, userID, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	if !lifecycle.CanStart(lifecycle.Status(audit.Status)) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "only a scheduled audit can be started",
		})
	}

	if err := transitionAudit(audit, lifecycle.StatusInProgress, userID); err != nil {
		log.Error("Failed to start audit", zap.Uint("audit_id", audit.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start audit"})
	}

	log.Info("Audit started", zap.Uint("audit_id", audit.ID))
	return c.JSON(http.StatusOK, audit)
}

// CompleteAudit runs the completion validator and, when it passes, moves
// the audit to Review. The status update and the trail entry commit in
// one transaction: a failed trail write rolls the transition back.
func CompleteAudit(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("complete")

	audit, userID, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	if !lifecycle.CanComplete(lifecycle.Status(audit.Status)) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "audit is closed"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var items []model.ChecklistItem
	result := database.GetDB().
		Select("id", "outcome").
		Where("audit_id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
		Find(&items)
	if result.Error != nil {
		log.Error("Failed to load checklist items", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate audit"})
	}

	var ncItemIDs []uint
	result = database.GetDB().Model(&model.NonConformity{}).
		Where("audit_id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
		Pluck("checklist_item_id", &ncItemIDs)
	if result.Error != nil {
		log.Error("Failed to load non-conformities", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to validate audit"})
	}

	states := make([]lifecycle.ItemState, 0, len(items))
	for _, item := range items {
		states = append(states, lifecycle.ItemState{ID: item.ID, Outcome: lifecycle.Outcome(item.Outcome)})
	}
	covered := make(map[uint]bool, len(ncItemIDs))
	for _, id := range ncItemIDs {
		covered[id] = true
	}

	validation := lifecycle.ValidateCompletion(states, covered)
	prometheus.RecordCompletionValidation(validation.IsValid)

	if !validation.IsValid {
		log.Warn("Audit completion blocked",
			zap.Uint("audit_id", audit.ID),
			zap.Int("pending_items", validation.PendingItems),
			zap.Int("non_compliant_without_nc", validation.NonCompliantWithoutNC))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":      "audit cannot be moved to Review status",
			"validation": validation,
		})
	}

	if err := transitionAudit(audit, lifecycle.StatusReview, userID); err != nil {
		log.Error("Failed to complete audit", zap.Uint("audit_id", audit.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete audit"})
	}

	log.Info("Audit moved to review", zap.Uint("audit_id", audit.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"audit":      audit,
		"validation": validation,
	})
}

// CloseAudit moves an audit under Review to Closed. Closing an already
// closed audit is a no-op and appends nothing to the trail.
func CloseAudit(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("close")

	audit, userID, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	status := lifecycle.Status(audit.Status)
	if status == lifecycle.StatusClosed {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "audit already closed",
			"audit":   audit,
		})
	}
	if !lifecycle.CanClose(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "only an audit under review can be closed",
		})
	}

	if err := transitionAudit(audit, lifecycle.StatusClosed, userID); err != nil {
		log.Error("Failed to close audit", zap.Uint("audit_id", audit.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to close audit"})
	}

	log.Info("Audit closed", zap.Uint("audit_id", audit.ID))
	return c.JSON(http.StatusOK, audit)
}

// GetAuditSummary returns the aggregate statistics for one audit
func GetAuditSummary(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("summary")

	audit, _, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var outcomes []string
	result := database.GetDB().Model(&model.ChecklistItem{}).
		Where("audit_id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
		Pluck("outcome", &outcomes)
	if result.Error != nil {
		log.Error("Failed to load item outcomes", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build summary"})
	}

	var ncs []model.NonConformity
	result = database.GetDB().
		Select("id", "status").
		Where("audit_id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
		Find(&ncs)
	if result.Error != nil {
		log.Error("Failed to load non-conformities", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build summary"})
	}

	// Corrective actions scoped to this audit's non-conformities
	var actionStatuses []string
	if len(ncs) > 0 {
		ncIDs := make([]uint, 0, len(ncs))
		for _, nc := range ncs {
			ncIDs = append(ncIDs, nc.ID)
		}
		result = database.GetDB().Model(&model.CorrectiveAction{}).
			Where("non_conformity_id IN ? AND organization_id = ?", ncIDs, audit.OrganizationID).
			Pluck("status", &actionStatuses)
		if result.Error != nil {
			log.Error("Failed to load corrective actions", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to build summary"})
		}
	}

	itemOutcomes := make([]lifecycle.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		itemOutcomes = append(itemOutcomes, lifecycle.Outcome(o))
	}
	ncStatuses := make([]lifecycle.NCStatus, 0, len(ncs))
	for _, nc := range ncs {
		ncStatuses = append(ncStatuses, lifecycle.NCStatus(nc.Status))
	}
	caStatuses := make([]lifecycle.ActionStatus, 0, len(actionStatuses))
	for _, s := range actionStatuses {
		caStatuses = append(caStatuses, lifecycle.ActionStatus(s))
	}

	return c.JSON(http.StatusOK, lifecycle.Summarize(itemOutcomes, ncStatuses, caStatuses))
}

// GetAuditTrail returns the audit's status transition history, newest first
func GetAuditTrail(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAuditOperation("trail")

	audit, _, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var entries []model.AuditTrailEntry
	result := database.GetDB().
		Where("audit_id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
		Order("changed_at DESC").
		Find(&entries)
	if result.Error != nil {
		log.Error("Failed to load audit trail", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit trail"})
	}

	return c.JSON(http.StatusOK, entries)
}

// loadAuditForTransition resolves the tenant, parses the :id parameter and
// loads the audit scoped to the caller's organization. Cross-tenant ids
// come back as not-found, indistinguishable from absent rows.
func loadAuditForTransition(c echo.Context) (*model.Audit, uint, func(echo.Context) error) {
	log := logger.FromContext(c)

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return nil, 0, func(c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}
	}

	userID, _ := c.Get("user_id").(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, 0, func(c echo.Context) error {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid audit ID"})
		}
	}

	var audit model.Audit
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&audit)
	if result.Error != nil {
		log.Warn("Audit not found or does not belong to tenant",
			zap.Uint64("audit_id", id),
			zap.Uint("organization_id", organizationID))
		return nil, 0, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "audit not found"})
		}
	}

	return &audit, userID, nil
}

// transitionAudit updates the status and appends the trail entry in one
// transaction, then refreshes the in-memory audit on success.
func transitionAudit(audit *model.Audit, to lifecycle.Status, userID uint) error {
	now := time.Now()
	oldStatus := audit.Status

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Audit{}).
			Where("id = ? AND organization_id = ?", audit.ID, audit.OrganizationID).
			Updates(map[string]interface{}{
				"status":     string(to),
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}

		return tx.Create(&model.AuditTrailEntry{
			AuditID:        audit.ID,
			OrganizationID: audit.OrganizationID,
			OldStatus:      oldStatus,
			NewStatus:      string(to),
			ChangedBy:      userID,
			ChangedAt:      now,
		}).Error
	})
	if err != nil {
		return err
	}

	audit.Status = string(to)
	audit.UpdatedAt = now
	return nil
}
