package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/blobstore"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UpdateChecklistItemRequest carries a partial item update. Nil fields
// are left untouched.
type UpdateChecklistItemRequest struct {
	Outcome     *string `json:"outcome"`
	Notes       *string `json:"notes"`
	EvidenceURL *string `json:"evidence_url"`
}

// UpdateChecklistItem applies a partial update to one checklist item.
// Items belonging to a closed audit are frozen. The audit row itself is
// never touched; stats are computed on read.
func UpdateChecklistItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChecklistOperation("update")

	item, errResp := loadChecklistItem(c)
	if errResp != nil {
		return errResp(c)
	}

	var req UpdateChecklistItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse item update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.Outcome != nil {
		if !lifecycle.Outcome(*req.Outcome).Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "validation failed",
				"fields": map[string]string{"outcome": "must be one of pending, compliant, non_compliant, not_applicable"},
			})
		}
		updates["outcome"] = *req.Outcome
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.EvidenceURL != nil {
		if *req.EvidenceURL == "" {
			// Clearing evidence stores NULL so the item drops out of the
			// evidence listing
			updates["evidence_url"] = nil
		} else {
			parsed, err := url.ParseRequestURI(*req.EvidenceURL)
			if err != nil || parsed.Host == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":  "validation failed",
					"fields": map[string]string{"evidence_url": "must be an absolute URL"},
				})
			}
			updates["evidence_url"] = *req.EvidenceURL
		}
	}
	if len(updates) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no fields to update"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if errResp := rejectWhenAuditClosed(c, item.AuditID, item.OrganizationID); errResp != nil {
		return errResp(c)
	}

	updates["updated_at"] = time.Now()

	result := database.GetDB().Model(&model.ChecklistItem{}).
		Where("id = ?", item.ID).
		Updates(updates)
	if result.Error != nil {
		log.Error("Failed to update checklist item", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update item"})
	}

	database.GetDB().First(item, item.ID)

	log.Info("Checklist item updated",
		zap.Uint("item_id", item.ID),
		zap.Uint("audit_id", item.AuditID))

	return c.JSON(http.StatusOK, item)
}

// UploadEvidence stores a multipart file in the evidence bucket and saves
// the resulting URL on the item. The upload happens before the DB write,
// so a failed write leaves an orphaned object but never a dangling URL,
// and the whole call can simply be retried.
func UploadEvidence(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChecklistOperation("upload_evidence")

	item, errResp := loadChecklistItem(c)
	if errResp != nil {
		return errResp(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	if errResp := rejectWhenAuditClosed(c, item.AuditID, item.OrganizationID); errResp != nil {
		return errResp(c)
	}

	store := blobstore.GetStore()
	if store == nil {
		log.Error("Evidence store is not configured")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "evidence storage unavailable"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer src.Close()

	key := blobstore.EvidenceObjectKey(item.AuditID, item.ID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	evidenceURL, err := store.Upload(c.Request().Context(), key, contentType, src)
	if err != nil {
		prometheus.RecordEvidenceUpload("error")
		log.Error("Failed to upload evidence",
			zap.String("key", key),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store evidence"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := database.GetDB().Model(&model.ChecklistItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"evidence_url": evidenceURL,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		log.Error("Failed to save evidence URL", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save evidence"})
	}

	prometheus.RecordEvidenceUpload("success")
	log.Info("Evidence uploaded",
		zap.Uint("item_id", item.ID),
		zap.Uint("audit_id", item.AuditID),
		zap.String("key", key))

	item.EvidenceURL = &evidenceURL
	return c.JSON(http.StatusOK, item)
}

// ListAuditEvidence returns the audit's items that carry evidence
func ListAuditEvidence(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordChecklistOperation("list_evidence")

	audit, _, errResp := loadAuditForTransition(c)
	if errResp != nil {
		return errResp(c)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var items []model.ChecklistItem
	result := database.GetDB().
		Where("audit_id = ? AND organization_id = ? AND evidence_url IS NOT NULL", audit.ID, audit.OrganizationID).
		Order("sort_order ASC").
		Find(&items)
	if result.Error != nil {
		log.Error("Failed to list evidence", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list evidence"})
	}

	return c.JSON(http.StatusOK, items)
}

// loadChecklistItem resolves the tenant and loads the item scoped to the
// caller's organization
func loadChecklistItem(c echo.Context) (*model.ChecklistItem, func(echo.Context) error) {
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
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item ID"})
		}
	}

	var item model.ChecklistItem
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&item)
	if result.Error != nil {
		log.Warn("Checklist item not found or does not belong to tenant",
			zap.Uint64("item_id", id),
			zap.Uint("organization_id", organizationID))
		return nil, func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "checklist item not found"})
		}
	}

	return &item, nil
}

// rejectWhenAuditClosed blocks item mutations once the parent audit has
// reached its terminal state
func rejectWhenAuditClosed(c echo.Context, auditID, organizationID uint) func(echo.Context) error {
	log := logger.FromContext(c)

	var audit model.Audit
	result := database.GetDB().
		Where("id = ? AND organization_id = ?", auditID, organizationID).
		First(&audit)
	if result.Error != nil {
		log.Error("Parent audit not found", zap.Uint("audit_id", auditID))
		return func(c echo.Context) error {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "audit not found"})
		}
	}
	if lifecycle.Status(audit.Status).Terminal() {
		return func(c echo.Context) error {
			return c.JSON(http.StatusConflict, echo.Map{"error": "audit is closed, items are read-only"})
		}
	}
	return nil
}
