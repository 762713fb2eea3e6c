package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appledger "github.com/stayops/backend/internal/application/ledger"
	"github.com/stayops/backend/internal/infrastructure/auth"
	"github.com/stayops/backend/internal/infrastructure/config"
	"github.com/stayops/backend/internal/infrastructure/logger"
	"github.com/stayops/backend/internal/infrastructure/persistence"
	"github.com/stayops/backend/internal/interfaces/http/handler"
	"github.com/stayops/backend/internal/interfaces/http/middleware"
	"github.com/stayops/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)

	// Transaction scope binds the allocation and reconciliation flows to a
	// single database transaction
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	invoiceService := appledger.NewInvoiceService(invoiceRepo, txScope, log)
	paymentService := appledger.NewPaymentService(paymentRepo, allocationRepo, log)
	allocationService := appledger.NewAllocationService(txScope, log)
	reconciliationService := appledger.NewReconciliationService(txScope, log)
	agingService := appledger.NewAgingService(invoiceRepo, log)
	auditService := appledger.NewAuditService(persistence.NewGormAuditRepository(db.DB), log)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, reconciliationService, allocationService, auditService)
	paymentHandler := handler.NewPaymentHandler(paymentService, allocationService, reconciliationService)
	reportHandler := handler.NewReportHandler(agingService, auditService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, order matters: request ID first so every later
	// stage can log it, then panic recovery, request logging, security
	// headers and the body size cap
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r.Register(systemHandler)
	r.Register(invoiceHandler)
	r.Register(paymentHandler)
	r.Register(reportHandler)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
