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
)

// CreateCorrectiveActionRequest opens a remediation plan for a non-conformity
type CreateCorrectiveActionRequest struct {
	NonConformityID        uint   `json:"non_conformity_id" validate:"required"`
	Description            string `json:"description" validate:"required,min=5"`
	RootCause              string `json:"root_cause"`
	ActionPlan             string `json:"action_plan"`
	ResponsiblePersonName  string `json:"responsible_person_name" validate:"max=100"`
	ResponsiblePersonEmail string `json:"responsible_person_email" validate:"omitempty,email"`
	TargetCompletionDate   string `json:"target_completion_date"`
}

// UpdateCorrectiveActionRequest carries a partial corrective-action update
type UpdateCorrectiveActionRequest struct {
	Description            *string `json:"description" validate:"omitempty,min=5"`
	RootCause              *string `json:"root_cause"`
	ActionPlan             *string `json:"action_plan"`
	ResponsiblePersonName  *string `json:"responsible_person_name" validate:"omitempty,max=100"`
	ResponsiblePersonEmail *string `json:"responsible_person_email" validate:"omitempty,email"`
	TargetCompletionDate   *string `json:"target_completion_date"`
	Status                 *string `json:"status" validate:"omitempty,oneof=pending in_progress completed overdue cancelled"`
}

// CreateCorrectiveAction opens a corrective action for an open
// non-conformity. Closed non-conformities reject new actions.
func CreateCorrectiveAction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCorrectiveActionOperation("create")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req CreateCorrectiveActionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse corrective action request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	var targetDate *time.Time
	if req.TargetCompletionDate != "" {
		parsed, err := time.Parse("2006-01-02", req.TargetCompletionDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "validation failed",
				"fields": map[string]string{"target_completion_date": "must be a date in YYYY-MM-DD format"},
			})
		}
		targetDate = &parsed
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var nc model.NonConformity
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", req.NonConformityID, organizationID).
		First(&nc)
	if result.Error != nil {
		log.Warn("Non-conformity not found or does not belong to tenant",
			zap.Uint("non_conformity_id", req.NonConformityID),
			zap.Uint("organization_id", organizationID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "non-conformity not found"})
	}
	if lifecycle.NCStatus(nc.Status) == lifecycle.NCStatusClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot add a corrective action to a closed non-conformity",
		})
	}

	action := model.CorrectiveAction{
		NonConformityID:        nc.ID,
		OrganizationID:         organizationID,
		Description:            req.Description,
		RootCause:              req.RootCause,
		ActionPlan:             req.ActionPlan,
		ResponsiblePersonName:  req.ResponsiblePersonName,
		ResponsiblePersonEmail: req.ResponsiblePersonEmail,
		TargetCompletionDate:   targetDate,
		Status:                 string(lifecycle.ActionStatusPending),
	}

	if result := database.GetDB().Create(&action); result.Error != nil {
		log.Error("Failed to create corrective action", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create corrective action"})
	}

	log.Info("Corrective action created",
		zap.Uint("corrective_action_id", action.ID),
		zap.Uint("non_conformity_id", nc.ID))

	return c.JSON(http.StatusCreated, action)
}

// ListCorrectiveActions returns all corrective actions for one non-conformity
func ListCorrectiveActions(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCorrectiveActionOperation("list")

	organizationID, ok := c.Get("organization_id").(uint)
	if !ok {
		log.Error("Failed to get organization ID from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ncID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid non-conformity ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var nc model.NonConformity
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", ncID, organizationID).
		First(&nc)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "non-conformity not found"})
	}

	var actions []model.CorrectiveAction
	result = database.GetDB().
		Where("non_conformity_id = ? AND organization_id = ?", ncID, organizationID).
		Order("created_at DESC").
		Find(&actions)
	if result.Error != nil {
		log.Error("Failed to list corrective actions", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list corrective actions"})
	}

	return c.JSON(http.StatusOK, actions)
}

// UpdateCorrectiveAction applies a partial update to one corrective action
func UpdateCorrectiveAction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCorrectiveActionOperation("update")

	action, errResp := loadCorrectiveAction(c)
	if errResp != nil {
		return errResp(c)
	}

	var req UpdateCorrectiveActionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse corrective action update", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": validate.FieldErrors(err)})
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.RootCause != nil {
		updates["root_cause"] = *req.RootCause
	}
	if req.ActionPlan != nil {
		updates["action_plan"] = *req.ActionPlan
	}
	if req.ResponsiblePersonName != nil {
		updates["responsible_person_name"] = *req.ResponsiblePersonName
	}
	if req.ResponsiblePersonEmail != nil {
		updates["responsible_person_email"] = *req.ResponsiblePersonEmail
	}
	if req.TargetCompletionDate != nil {
		if *req.TargetCompletionDate == "" {
			updates["target_completion_date"] = nil
		} else {
			parsed, err := time.Parse("2006-01-02", *req.TargetCompletionDate)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":  "validation failed",
					"fields": map[string]string{"target_completion_date": "must be a date in YYYY-MM-DD format"},
				})
			}
			updates["target_completion_date"] = &parsed
		}
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if lifecycle.ActionStatus(*req.Status) == lifecycle.ActionStatusCompleted {
			now := time.Now()
			updates["completed_at"] = &now
		}
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}
	updates["updated_at"] = time.Now()

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().Model(&model.CorrectiveAction{}).
		Where("id = ?", action.ID).
		Updates(updates)
	if result.Error != nil {
		log.Error("Failed to update corrective action", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update corrective action"})
	}

	database.GetDB().First(action, action.ID)

	log.Info("Corrective action updated", zap.Uint("corrective_action_id", action.ID))
	return c.JSON(http.StatusOK, action)
}

// CompleteCorrectiveAction marks an action as completed and stamps the
// completion time. The parent non-conformity stays untouched; closing it
// is a separate, deliberate step.
func CompleteCorrectiveAction(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCorrectiveActionOperation("complete")

	action, errResp := loadCorrectiveAction(c)
	if errResp != nil {
		return errResp(c)
	}

	if lifecycle.ActionStatus(action.Status) == lifecycle.ActionStatusCompleted {
		return c.JSON(http.StatusOK, echo.Map{
			"message":           "corrective action already completed",
			"corrective_action": action,
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	// The parent must still exist and be open for work
	var nc model.NonConformity
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", action.NonConformityID, action.OrganizationID).
		First(&nc)
	if result.Error != nil {
		log.Error("Parent non-conformity not found",
			zap.Uint("non_conformity_id", action.NonConformityID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "non-conformity not found"})
	}
	if lifecycle.NCStatus(nc.Status) == lifecycle.NCStatusClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "cannot complete an action on a closed non-conformity",
		})
	}

	now := time.Now()
	result = database.GetDB().Model(&model.CorrectiveAction{}).
		Where("id = ?", action.ID).
		Updates(map[string]interface{}{
			"status":       string(lifecycle.ActionStatusCompleted),
			"completed_at": &now,
			"updated_at":   now,
		})
	if result.Error != nil {
		log.Error("Failed to complete corrective action", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete corrective action"})
	}

	action.Status = string(lifecycle.ActionStatusCompleted)
	action.CompletedAt = &now
	action.UpdatedAt = now

	log.Info("Corrective action completed", zap.Uint("corrective_action_id", action.ID))
	return c.JSON(http.StatusOK, action)
}

// loadCorrectiveAction resolves the tenant and loads the corrective action
// scoped to the caller's organization
func loadCorrectiveAction(c echo.Context) (*model.CorrectiveAction, func(echo.Context) error) {
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
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid corrective action ID"})
		}
	}

	var action model.CorrectiveAction
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&action)
	if result.Error != nil {
		log.Warn("Corrective action not found or does not belong to tenant",
			zap.Uint64("corrective_action_id", id),
			zap.Uint("organization_id", organizationID))
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "corrective action not found"})
		}
	}

	return &action, nil
}
