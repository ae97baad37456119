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

	billingapp "github.com/dormhub/backend/internal/application/billing"
	housingapp "github.com/dormhub/backend/internal/application/housing"
	"github.com/dormhub/backend/internal/domain/shared"
	"github.com/dormhub/backend/internal/infrastructure/cache"
	"github.com/dormhub/backend/internal/infrastructure/config"
	"github.com/dormhub/backend/internal/infrastructure/logger"
	"github.com/dormhub/backend/internal/infrastructure/payment"
	"github.com/dormhub/backend/internal/infrastructure/persistence"
	"github.com/dormhub/backend/internal/infrastructure/telemetry"
	"github.com/dormhub/backend/internal/interfaces/http/handler"
	"github.com/dormhub/backend/internal/interfaces/http/middleware"
	"github.com/dormhub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting DormHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithGormLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, tracerProvider.IsEnabled(), log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	feeRateRepo := persistence.NewGormFeeRateRepository(db.DB)
	meterReadingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	residentRepo := persistence.NewGormResidentRepository(db.DB)
	vehicleRepo := persistence.NewGormVehicleRepository(db.DB)
	transferRepo := persistence.NewGormRoomTransferRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// IPN dedupe store: Redis when reachable, in-memory otherwise
	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, paymentRepo, txManager, log)
	reconcileService := billingapp.NewReconcileService(invoiceRepo, paymentRepo, txManager, log)
	feeRateService := billingapp.NewFeeRateService(feeRateRepo, txManager, log)
	meterReadingService := billingapp.NewMeterReadingService(meterReadingRepo, log)
	bulkInvoiceService := billingapp.NewBulkInvoiceService(
		invoiceRepo, feeRateRepo, meterReadingRepo, residentRepo, roomRepo, vehicleRepo, txManager, log,
	)
	bulkInvoiceService.SetInvoiceDueDays(cfg.Billing.InvoiceDueDays)
	transferService := housingapp.NewTransferService(transferRepo, residentRepo, roomRepo, txManager, log)

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(reconcileService)
	billingRunHandler := handler.NewBillingRunHandler(bulkInvoiceService)
	feeRateHandler := handler.NewFeeRateHandler(feeRateService)
	meterReadingHandler := handler.NewMeterReadingHandler(meterReadingService)
	transferHandler := handler.NewTransferHandler(transferService)
	systemHandler := handler.NewSystemHandler(db)

	// Gateway payments are only exposed when credentials are configured
	var gatewayHandler *handler.GatewayHandler
	if cfg.VNPay.IsConfigured() {
		gateway, err := payment.NewVNPayAdapter(&cfg.VNPay)
		if err != nil {
			log.Fatal("Failed to initialize payment gateway", zap.Error(err))
		}
		gatewayService := billingapp.NewGatewayPaymentService(
			gateway, invoiceRepo, paymentRepo, txManager, idempotencyStore, log,
		)
		gatewayService.SetIdempotencyTTL(cfg.Billing.IPNDedupeTTL)
		gatewayService.SetPaymentURLTTL(cfg.Billing.PaymentURLTTL)
		gatewayHandler = handler.NewGatewayHandler(gatewayService, cfg.VNPay.ResultURL)
		log.Info("Payment gateway configured", zap.String("gateway", gateway.Name()))
	} else {
		log.Warn("Payment gateway not configured, gateway endpoints disabled")
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if tracerProvider.IsEnabled() {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(invoiceHandler).
		Register(paymentHandler).
		Register(billingRunHandler).
		Register(feeRateHandler).
		Register(meterReadingHandler).
		Register(transferHandler).
		Register(systemHandler)
	if gatewayHandler != nil {
		r.Register(gatewayHandler)
	}
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

// healthHandler returns a handler for the root health check endpoint
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

// newIdempotencyStore prefers Redis so IPN dedupe keys survive restarts.
// When Redis is unreachable the in-memory store keeps a single instance
// correct; the gateway retries IPNs, so a restart only risks one duplicate
// delivery attempt that amount matching still rejects.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	store, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory IPN dedupe store",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		return cache.NewInMemoryIdempotencyStore()
	}
	log.Info("Redis IPN dedupe store connected", zap.String("addr", cfg.Redis.Addr()))
	return store
}
