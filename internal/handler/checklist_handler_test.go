package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/fgiubilesi-cpu/sgic/internal/lifecycle"
	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearingEvidenceRemovesItemFromEvidenceList(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Warehouse audit", Status: string(lifecycle.StatusInProgress)}
	require.NoError(t, db.Create(&audit).Error)

	evidenceURL := "https://storage.googleapis.com/audit-evidence/audits/1/items/1/photo.jpg"
	item := model.ChecklistItem{
		AuditID:        audit.ID,
		OrganizationID: 1,
		Question:       "Extinguishers present",
		Outcome:        string(lifecycle.OutcomeCompliant),
		EvidenceURL:    &evidenceURL,
		SortOrder:      1,
	}
	require.NoError(t, db.Create(&item).Error)

	c, rec := newTestContext(t, http.MethodPatch, "/", `{"evidence_url":""}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	require.NoError(t, UpdateChecklistItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var reloaded model.ChecklistItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Nil(t, reloaded.EvidenceURL)

	lc, lrec := newTestContext(t, http.MethodGet, "/", "")
	lc.SetParamNames("id")
	lc.SetParamValues(fmt.Sprint(audit.ID))
	require.NoError(t, ListAuditEvidence(lc))
	require.Equal(t, http.StatusOK, lrec.Code)

	var listed []model.ChecklistItem
	require.NoError(t, json.Unmarshal(lrec.Body.Bytes(), &listed))
	assert.Empty(t, listed)
}

func TestUpdateChecklistItemRejectsUnknownOutcome(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Warehouse audit", Status: string(lifecycle.StatusInProgress)}
	require.NoError(t, db.Create(&audit).Error)
	item := model.ChecklistItem{AuditID: audit.ID, OrganizationID: 1, Question: "q", Outcome: string(lifecycle.OutcomePending)}
	require.NoError(t, db.Create(&item).Error)

	c, rec := newTestContext(t, http.MethodPatch, "/", `{"outcome":"failed"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	require.NoError(t, UpdateChecklistItem(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateChecklistItemFrozenWhenAuditClosed(t *testing.T) {
	db := setupTestDB(t)

	audit := model.Audit{OrganizationID: 1, Title: "Closed audit", Status: string(lifecycle.StatusClosed)}
	require.NoError(t, db.Create(&audit).Error)
	item := model.ChecklistItem{AuditID: audit.ID, OrganizationID: 1, Question: "q", Outcome: string(lifecycle.OutcomeCompliant)}
	require.NoError(t, db.Create(&item).Error)

	c, rec := newTestContext(t, http.MethodPatch, "/", `{"notes":"late edit"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	require.NoError(t, UpdateChecklistItem(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var reloaded model.ChecklistItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Empty(t, reloaded.Notes)
}
