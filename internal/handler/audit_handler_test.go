package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotExcludesSoftDeletedQuestions(t *testing.T) {
	db := setupTestDB(t)

	template := model.ChecklistTemplate{OrganizationID: 1, Title: "Safety walkthrough"}
	require.NoError(t, db.Create(&template).Error)

	questions := []model.TemplateQuestion{
		{TemplateID: template.ID, OrganizationID: 1, Question: "Extinguishers present", SortOrder: 1},
		{TemplateID: template.ID, OrganizationID: 1, Question: "Exits unobstructed", SortOrder: 2},
		{TemplateID: template.ID, OrganizationID: 1, Question: "Signage visible", SortOrder: 3},
	}
	require.NoError(t, db.Create(&questions).Error)
	require.NoError(t, db.Delete(&model.TemplateQuestion{}, questions[1].ID).Error)

	c, rec := newTestContext(t, http.MethodPost, "/api/audits",
		fmt.Sprintf(`{"title":"Q3 safety audit","scheduled_date":"2026-09-15","template_id":%d}`, template.ID))
	require.NoError(t, CreateAuditFromTemplate(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var items []model.ChecklistItem
	require.NoError(t, db.Order("sort_order ASC").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "Extinguishers present", items[0].Question)
	assert.Equal(t, "Signage visible", items[1].Question)
	for _, item := range items {
		assert.Equal(t, string(lifecycle.OutcomePending), item.Outcome)
	}
}

func TestSnapshotFromEmptyTemplate(t *testing.T) {
	db := setupTestDB(t)

	template := model.ChecklistTemplate{OrganizationID: 1, Title: "Blank template"}
	require.NoError(t, db.Create(&template).Error)

	c, rec := newTestContext(t, http.MethodPost, "/api/audits",
		fmt.Sprintf(`{"title":"Empty audit","scheduled_date":"2026-10-01","template_id":%d}`, template.ID))
	require.NoError(t, CreateAuditFromTemplate(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var count int64
	db.Model(&model.ChecklistItem{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCloseAuditIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Annual review", Status: string(lifecycle.StatusReview)}
	require.NoError(t, db.Create(&audit).Error)

	c, rec := newTestContext(t, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(audit.ID))
	require.NoError(t, CloseAudit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Second close is a no-op: still 200, no extra trail entry
	c2, rec2 := newTestContext(t, http.MethodPost, "/", "")
	c2.SetParamNames("id")
	c2.SetParamValues(fmt.Sprint(audit.ID))
	require.NoError(t, CloseAudit(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	var trailCount int64
	db.Model(&model.AuditTrailEntry{}).Where("audit_id = ?", audit.ID).Count(&trailCount)
	assert.Equal(t, int64(1), trailCount)

	var reloaded model.Audit
	require.NoError(t, db.First(&reloaded, audit.ID).Error)
	assert.Equal(t, string(lifecycle.StatusClosed), reloaded.Status)
}

func TestCloseAuditRejectsNonReviewStatus(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Early close attempt", Status: string(lifecycle.StatusInProgress)}
	require.NoError(t, db.Create(&audit).Error)

	c, rec := newTestContext(t, http.MethodPost, "/", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(audit.ID))
	require.NoError(t, CloseAudit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var trailCount int64
	db.Model(&model.AuditTrailEntry{}).Where("audit_id = ?", audit.ID).Count(&trailCount)
	assert.Equal(t, int64(0), trailCount)
}
