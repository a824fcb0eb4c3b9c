package main

import (
	"context"

	"github.com/fgiubilesi-cpu/sgic/internal/handler"
	"github.com/fgiubilesi-cpu/sgic/internal/middleware"
	"github.com/fgiubilesi-cpu/sgic/pkg/aiengine"
	"github.com/fgiubilesi-cpu/sgic/pkg/blobstore"
	"github.com/fgiubilesi-cpu/sgic/pkg/config"
	"github.com/fgiubilesi-cpu/sgic/pkg/database"
	"github.com/fgiubilesi-cpu/sgic/pkg/jwtutil"
	"github.com/fgiubilesi-cpu/sgic/pkg/logger"
	"github.com/fgiubilesi-cpu/sgic/pkg/validate"
	"github.com/fgiubilesi-cpu/sgic/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting audit service...", cfg.LogConfig()...)

	// Initialize JWT signing
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize database (now includes migrations automatically)
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Evidence storage is optional: without it uploads return 503 but
	// everything else keeps working
	if err := blobstore.Initialize(context.Background(), &cfg.Blob); err != nil {
		log.Warn("Evidence storage unavailable, uploads are disabled", zap.Error(err))
	} else {
		log.Info("Evidence storage initialized", zap.String("bucket", cfg.Blob.Bucket))
	}

	// Initialize the analysis engine client
	aiengine.Initialize(&cfg.AIEngine, log)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.GetHandler())

	// Auth routes
	auth := e.Group("/api/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)

	// Tenant-scoped routes: valid token + linked organization
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.Use(middleware.RequireOrganization)

	// Organization settings
	api.GET("/organization", handler.GetOrganization)
	api.PUT("/organization", handler.UpdateOrganization)

	// Checklist templates
	api.POST("/templates", handler.CreateTemplate)
	api.GET("/templates", handler.ListTemplates)
	api.GET("/templates/:id", handler.GetTemplate)
	api.POST("/templates/:id/questions", handler.AddQuestion)
	api.DELETE("/templates/:id/questions/:question_id", handler.SoftDeleteQuestion)

	// Audits and their lifecycle
	api.POST("/audits", handler.CreateAuditFromTemplate)
	api.GET("/audits", handler.ListAudits)
	api.GET("/audits/:id", handler.GetAudit)
	api.POST("/audits/:id/start", handler.StartAudit)
	api.POST("/audits/:id/complete", handler.CompleteAudit)
	api.POST("/audits/:id/close", handler.CloseAudit)
	api.GET("/audits/:id/summary", handler.GetAuditSummary)
	api.GET("/audits/:id/trail", handler.GetAuditTrail)
	api.GET("/audits/:id/evidence", handler.ListAuditEvidence)
	api.GET("/audits/:id/non-conformities", handler.ListNonConformities)

	// Checklist items
	api.PATCH("/checklist-items/:id", handler.UpdateChecklistItem)
	api.POST("/checklist-items/:id/evidence", handler.UploadEvidence)

	// Non-conformities
	api.POST("/non-conformities", handler.CreateNonConformity)
	api.PUT("/non-conformities/:id", handler.UpdateNonConformity)
	api.POST("/non-conformities/:id/close", handler.CloseNonConformity)
	api.POST("/non-conformities/analyze", handler.AnalyzeNonConformity)
	api.GET("/non-conformities/:id/corrective-actions", handler.ListCorrectiveActions)

	// Corrective actions
	api.POST("/corrective-actions", handler.CreateCorrectiveAction)
	api.PUT("/corrective-actions/:id", handler.UpdateCorrectiveAction)
	api.POST("/corrective-actions/:id/complete", handler.CompleteCorrectiveAction)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
