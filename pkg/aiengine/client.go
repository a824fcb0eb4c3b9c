package aiengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"go.uber.org/zap"
)

// Client talks to the external analysis engine that prefills
// corrective-action forms. It is advisory only: every caller must
// tolerate failure and fall back to manual entry.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// AnalysisRequest is the payload sent to the analysis endpoint
type AnalysisRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AnalysisResponse is the suggested remediation returned by the engine
type AnalysisResponse struct {
	RootCauseAnalysis   string `json:"root_cause_analysis"`
	SuggestedActionPlan string `json:"suggested_action_plan"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

var client *Client

// Initialize creates the global analysis client
func Initialize(cfg *config.AIEngineConfig, logger *zap.Logger) {
	client = NewClient(cfg.URL, cfg.APIKey, cfg.Timeout, logger)
}

// GetClient returns the global analysis client
func GetClient() *Client {
	return client
}

// NewClient creates a new analysis client instance
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// AnalyzeNonConformity posts the non-conformity to the engine and returns
// a root-cause analysis and a suggested action plan
func (c *Client) AnalyzeNonConformity(ctx context.Context, in AnalysisRequest) (*AnalysisResponse, error) {
	c.Logger.Info("Requesting non-conformity analysis",
		zap.String("title", in.Title),
		zap.String("severity", in.Severity))

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/v1/analyze-nc", c.BaseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-API-Key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Error("Analysis request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("analysis engine error: %s", errResp.Detail)
		}
		return nil, fmt.Errorf("analysis engine returned status %d", resp.StatusCode)
	}

	var out AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	return &out, nil
}
