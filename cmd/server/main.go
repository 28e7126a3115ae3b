package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	onboardingapp "github.com/souqly/backend/internal/application/onboarding"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/souqly/backend/internal/infrastructure/auth"
	"github.com/souqly/backend/internal/infrastructure/cache"
	"github.com/souqly/backend/internal/infrastructure/config"
	"github.com/souqly/backend/internal/infrastructure/event"
	"github.com/souqly/backend/internal/infrastructure/gateway"
	"github.com/souqly/backend/internal/infrastructure/logger"
	"github.com/souqly/backend/internal/infrastructure/notification"
	"github.com/souqly/backend/internal/infrastructure/persistence"
	"github.com/souqly/backend/internal/infrastructure/ratelimit"
	"github.com/souqly/backend/internal/infrastructure/session"
	"github.com/souqly/backend/internal/infrastructure/storage"
	"github.com/souqly/backend/internal/interfaces/http/handler"
	"github.com/souqly/backend/internal/interfaces/http/middleware"
	"github.com/souqly/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Souqly Vendor API
//	@version		1.0
//	@description	Vendor onboarding and payment verification backend for the Souqly marketplace

//	@contact.name	API Support
//	@contact.email	support@souqly.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting Souqly Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	policy, err := policyFromConfig(cfg)
	if err != nil {
		log.Fatal("Invalid onboarding policy configuration", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis backs the token blacklist and the idempotency store. When it is
	// unreachable the in-memory implementations take over; fine for a single
	// node, not for a fleet.
	var (
		idempotencyStore shared.IdempotencyStore
		blacklist        auth.TokenBlacklist
	)
	if redisClient := newRedisClient(cfg, log); redisClient != nil {
		idempotencyStore = cache.NewRedisIdempotencyStoreWithClient(redisClient, "souqly:idempotency:")
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Initialize repositories
	applicationRepo := persistence.NewGormApplicationRepository(db.DB)
	evidenceRepo := persistence.NewGormEvidenceRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	decisionRepo := persistence.NewGormDecisionRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)

	notifier := notification.NewLogNotifier(log, 200)
	identity := persistence.NewGormIdentityProvider(db.DB, notifier, log)
	provisioner := persistence.NewGormVendorProvisioner(db.DB, log)
	txRunner := persistence.NewGormTxRunner(db.DB)
	coordinator := onboardingapp.NewCommitCoordinator(txRunner, log)

	// External gateways
	bank := newBankVerifier(cfg, log)
	scanner := newMalwareScanner(cfg, log)
	objectStorage := newObjectStorage(cfg, log)

	// Per-vendor operation limiters
	paymentLimiter := ratelimit.NewWindowLimiter(cfg.Onboarding.PaymentRateLimit, cfg.Onboarding.PaymentRateWindow)
	defer paymentLimiter.Stop()
	uploadLimiter := ratelimit.NewWindowLimiter(cfg.Onboarding.UploadRateLimit, cfg.Onboarding.UploadRateWindow)
	defer uploadLimiter.Stop()

	// Event bus, live feed hub, and security escalation
	eventBus := event.NewInMemoryEventBus(log)

	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)

	feedHub := session.NewFeedHub(log)
	eventBus.Subscribe(feedHub)

	securityAlerts := event.NewDedupHandler(
		notification.NewSecurityAlertHandler(notifier, log),
		idempotencyStore,
		log,
		event.WithDedupRetention(cfg.Onboarding.IdempotencyRetention),
	)
	eventBus.Subscribe(securityAlerts)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Session manager owns live feed handles; idle feeds are swept out
	sessions := session.NewResourceManager(cfg.Session.IdleTimeout, cfg.Session.SweepInterval, log)
	defer sessions.Shutdown()

	// Application services
	signupService := onboardingapp.NewSignupService(
		applicationRepo, documentRepo, identity, eventBus, policy, time.Now, log,
	)
	paymentService := onboardingapp.NewPaymentService(
		applicationRepo, evidenceRepo, ledgerRepo, idempotencyStore, paymentLimiter,
		bank, coordinator, eventBus, onboarding.DefaultPriceTable(), policy, time.Now, log,
	)
	documentService := onboardingapp.NewDocumentService(
		documentRepo, auditRepo, objectStorage, scanner, uploadLimiter, policy, time.Now, log,
	)
	reviewService := onboardingapp.NewReviewService(
		applicationRepo, decisionRepo, provisioner, coordinator, sessions, feedHub,
		notifier, eventBus, policy, time.Now, log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP handlers
	onboardingHandler := handler.NewOnboardingHandler(signupService, paymentService, applicationRepo, jwtService)
	authHandler := handler.NewAuthHandler(jwtService, blacklist)
	documentHandler := handler.NewDocumentHandler(documentService, eventBus, log)
	reviewHandler := handler.NewReviewHandler(reviewService, applicationRepo)
	feedHandler := handler.NewFeedHandler(feedHub, sessions, serializer, handler.WithFeedLogger(log))
	systemHandler := handler.NewSystemHandler()

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

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit covers multipart document uploads plus envelope
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// JWT authentication for the API surface. Signup and email confirmation
	// happen before the vendor has a token; refresh carries its own proof.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/vendors/signup",
			"/api/v1/vendors/confirm-email",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Pre-auth endpoints get an IP-keyed limiter on top
	signupLimiter := middleware.NewRateLimiter(10, time.Minute)

	vendorRoutes := router.NewDomainGroup("vendors", "/vendors")
	vendorRoutes.Use(middleware.AuthRateLimit(signupLimiter))
	vendorRoutes.POST("/signup", onboardingHandler.Signup)
	vendorRoutes.POST("/confirm-email", onboardingHandler.ConfirmEmail)

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)

	applicationRoutes := router.NewDomainGroup("applications", "/applications")
	applicationRoutes.GET("/feed", feedHandler.Stream)
	applicationRoutes.GET("/:id", onboardingHandler.GetApplication)
	applicationRoutes.POST("/:id/submit", onboardingHandler.SubmitApplication)
	applicationRoutes.POST("/:id/payment", onboardingHandler.VerifyPayment)
	applicationRoutes.POST("/:id/documents", documentHandler.Upload)

	documentRoutes := router.NewDomainGroup("documents", "/documents")
	documentRoutes.GET("/:id/url", documentHandler.AccessURL)

	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAdmin())
	adminRoutes.GET("/applications", reviewHandler.ListPending)
	adminRoutes.POST("/applications/:id/review", reviewHandler.Review)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(vendorRoutes).
		Register(authRoutes).
		Register(applicationRoutes).
		Register(documentRoutes).
		Register(adminRoutes).
		Register(systemRoutes)

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

// policyFromConfig builds the onboarding policy from configuration
func policyFromConfig(cfg *config.Config) (onboardingapp.Policy, error) {
	tolerance, err := decimal.NewFromString(cfg.Onboarding.AmountTolerance)
	if err != nil {
		return onboardingapp.Policy{}, fmt.Errorf("invalid amount tolerance %q: %w", cfg.Onboarding.AmountTolerance, err)
	}

	policy := onboardingapp.DefaultPolicy()
	policy.AmountTolerance = tolerance
	policy.VerificationWindow = cfg.Onboarding.VerificationWindow
	policy.IdempotencyRetention = cfg.Onboarding.IdempotencyRetention
	policy.ReapplyCooldown = cfg.Onboarding.ReapplyCooldown
	policy.MaxUploadBytes = cfg.Onboarding.MaxUploadBytes
	policy.SignedURLExpiry = cfg.Onboarding.SignedURLExpiry
	policy.ReceiverAddress = cfg.Onboarding.ReceiverAddress
	policy.Currency = cfg.Onboarding.Currency
	policy.BankTimeout = cfg.Bank.Timeout
	policy.ScanTimeout = cfg.Scanner.Timeout
	policy.RetryMax = cfg.Onboarding.RetryMax
	policy.RetryBackoff = cfg.Onboarding.RetryBackoff
	return policy, nil
}

// newRedisClient connects to Redis, returning nil when it is unreachable
func newRedisClient(cfg *config.Config, log *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, falling back to in-memory stores", zap.Error(err))
		_ = client.Close()
		return nil
	}

	log.Info("Redis connected successfully",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)
	return client
}

// newBankVerifier wires the InstaPay client, or its stub when unconfigured
func newBankVerifier(cfg *config.Config, log *zap.Logger) onboardingapp.BankVerifier {
	if cfg.Bank.BaseURL == "" {
		log.Warn("Bank verification API not configured, using stub verifier")
		return gateway.NewStubBankVerifier()
	}

	verifier, err := gateway.NewInstaPayVerifier(&gateway.InstaPayConfig{
		BaseURL: cfg.Bank.BaseURL,
		APIKey:  cfg.Bank.APIKey,
		Timeout: cfg.Bank.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create bank verifier", zap.Error(err))
	}
	return verifier
}

// newMalwareScanner wires the scanning client, or its stub when unconfigured
func newMalwareScanner(cfg *config.Config, log *zap.Logger) onboardingapp.MalwareScanner {
	if cfg.Scanner.Endpoint == "" {
		log.Warn("Malware scanner not configured, using stub scanner")
		return gateway.NewStubMalwareScanner()
	}

	scanner, err := gateway.NewHTTPMalwareScanner(&gateway.ScannerConfig{
		Endpoint: cfg.Scanner.Endpoint,
		Timeout:  cfg.Scanner.Timeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create malware scanner", zap.Error(err))
	}
	return scanner
}

// newObjectStorage wires S3 document storage, or the in-memory stub
func newObjectStorage(cfg *config.Config, log *zap.Logger) onboardingapp.ObjectStorage {
	if cfg.Storage.Bucket == "" {
		log.Warn("Object storage not configured, using in-memory stub")
		return storage.NewStubObjectStorage()
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create object storage", zap.Error(err))
	}
	return s3Storage
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
