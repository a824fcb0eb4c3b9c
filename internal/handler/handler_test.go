package handler

import (
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/fgiubilesi-cpu/sgic/internal/model"
	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "handler_test"},
	})
	os.Exit(m.Run())
}

// setupTestDB opens a fresh in-memory database, migrates the full schema
// and installs it as the global connection for the handlers under test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// An in-memory database exists per connection; keep the pool at one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Organization{},
		&model.User{},
		&model.ChecklistTemplate{},
		&model.TemplateQuestion{},
		&model.Audit{},
		&model.ChecklistItem{},
		&model.NonConformity{},
		&model.CorrectiveAction{},
		&model.AuditTrailEntry{},
	))

	database.DB = db
	return db
}

// newTestContext builds an Echo context with tenant claims already set,
// the way the auth middleware would leave it
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validate.New()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.Set("organization_id", uint(1))
	c.Set("user_id", uint(1))
	return c, rec
}
