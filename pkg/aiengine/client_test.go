package aiengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAnalyzeNonConformity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analyze-nc", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("X-Internal-API-Key"))

		var req AnalysisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Fire extinguisher missing", req.Title)
		assert.Equal(t, "major", req.Severity)

		json.NewEncoder(w).Encode(AnalysisResponse{
			RootCauseAnalysis:   "No periodic inspection schedule in place",
			SuggestedActionPlan: "Install extinguisher and add monthly checks",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key", 5*time.Second, zap.NewNop())
	out, err := c.AnalyzeNonConformity(context.Background(), AnalysisRequest{
		Title:       "Fire extinguisher missing",
		Description: "Zone B has no extinguisher",
		Severity:    "major",
	})
	require.NoError(t, err)
	assert.Equal(t, "No periodic inspection schedule in place", out.RootCauseAnalysis)
	assert.Equal(t, "Install extinguisher and add monthly checks", out.SuggestedActionPlan)
}

func TestAnalyzeNonConformitySurfacesEngineDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"detail": "invalid internal API key"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "wrong-key", 5*time.Second, zap.NewNop())
	_, err := c.AnalyzeNonConformity(context.Background(), AnalysisRequest{Title: "t", Severity: "minor"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid internal API key")
}

func TestAnalyzeNonConformityEngineDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "key", 1*time.Second, zap.NewNop())
	_, err := c.AnalyzeNonConformity(context.Background(), AnalysisRequest{Title: "t", Severity: "minor"})
	assert.Error(t, err)
}
