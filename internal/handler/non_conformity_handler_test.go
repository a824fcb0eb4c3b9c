package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReopeningNonConformityClearsClosedAt(t *testing.T) {
	db := setupTestDB(t)

	closedAt := time.Now()
	nc := model.NonConformity{
		AuditID:         1,
		ChecklistItemID: 1,
		OrganizationID:  1,
		Title:           "Extinguisher missing",
		Severity:        string(lifecycle.SeverityMajor),
		Status:          string(lifecycle.NCStatusClosed),
		ClosedAt:        &closedAt,
	}
	require.NoError(t, db.Create(&nc).Error)

	c, rec := newTestContext(t, http.MethodPut, "/", `{"status":"open"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(nc.ID))
	require.NoError(t, UpdateNonConformity(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded model.NonConformity
	require.NoError(t, db.First(&reloaded, nc.ID).Error)
	assert.Equal(t, string(lifecycle.NCStatusOpen), reloaded.Status)
	assert.Nil(t, reloaded.ClosedAt)
}

func TestCreateNonConformityRequiresNonCompliantItem(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Warehouse audit", Status: string(lifecycle.StatusInProgress)}
	require.NoError(t, db.Create(&audit).Error)
	item := model.ChecklistItem{AuditID: audit.ID, OrganizationID: 1, Question: "q", Outcome: string(lifecycle.OutcomeCompliant)}
	require.NoError(t, db.Create(&item).Error)

	c, rec := newTestContext(t, http.MethodPost, "/api/non-conformities",
		fmt.Sprintf(`{"checklist_item_id":%d,"title":"Should not be recordable"}`, item.ID))
	require.NoError(t, CreateNonConformity(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	db.Model(&model.NonConformity{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateNonConformityDefaultsSeverity(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Warehouse audit", Status: string(lifecycle.StatusInProgress)}
	require.NoError(t, db.Create(&audit).Error)
	item := model.ChecklistItem{AuditID: audit.ID, OrganizationID: 1, Question: "q", Outcome: string(lifecycle.OutcomeNonCompliant)}
	require.NoError(t, db.Create(&item).Error)

	c, rec := newTestContext(t, http.MethodPost, "/api/non-conformities",
		fmt.Sprintf(`{"checklist_item_id":%d,"title":"Extinguisher missing"}`, item.ID))
	require.NoError(t, CreateNonConformity(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var nc model.NonConformity
	require.NoError(t, db.First(&nc).Error)
	assert.Equal(t, string(lifecycle.SeverityMajor), nc.Severity)
	assert.Equal(t, audit.ID, nc.AuditID)
	assert.Equal(t, string(lifecycle.NCStatusOpen), nc.Status)
}
