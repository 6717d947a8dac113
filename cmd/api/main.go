package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/voxdesk-app/voxdesk/pkg/validator"

	"github.com/voxdesk-app/voxdesk/internal/adapter/handler"
	"github.com/voxdesk-app/voxdesk/internal/adapter/repository"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/cache"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/database"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/external/voice"
	httpmw "github.com/voxdesk-app/voxdesk/internal/infrastructure/http/middleware"
	"github.com/voxdesk-app/voxdesk/internal/infrastructure/storage"
	"github.com/voxdesk-app/voxdesk/internal/usecase/evaluation"
	"github.com/voxdesk-app/voxdesk/internal/usecase/leadgen"
	syncuc "github.com/voxdesk-app/voxdesk/internal/usecase/sync"
	"github.com/voxdesk-app/voxdesk/pkg/config"
	"github.com/voxdesk-app/voxdesk/pkg/jwt"
)

// @title           VoxDesk Sync API
// @version         1.0
// @description     Call evaluation and lead extraction backend for the VoxDesk voice-agent platform

// @host      api.voxdesk.app
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if cfg.Server.Environment == "development" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema migrations run on boot only when explicitly enabled.
	// Production deployments apply them out of band, see scripts/migrate.go.
	if cfg.Database.AutoMigrate {
		log.Println("🔄 Applying pending SQL migrations...")
		if err := database.RunMigrations(db, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations on boot; apply schema with scripts/migrate.go")
	}

	// Initialize job lock and status store. Redis is preferred; the
	// in-memory store keeps single-instance dev setups working without it.
	var locks syncuc.JobLocker
	var status syncuc.StatusStore

	log.Println("📦 Connecting to Redis...")
	redisStore, err := cache.NewRedisStore(cfg)
	if err != nil {
		if cfg.Server.Environment == "production" {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("⚠️  Redis unavailable (%v), falling back to in-memory job store", err)
		memStore := cache.NewMemoryStore()
		locks, status = memStore, memStore
	} else {
		defer redisStore.Close()
		locks, status = redisStore, redisStore
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	callRepo := repository.NewCallRepository(db)
	leadRepo := repository.NewLeadRepository(db)

	// Initialize voice provider client
	log.Println("📞 Initializing voice provider client...")
	voiceClient := voice.NewClient(&cfg.Voice)
	if !voiceClient.IsConfigured() {
		log.Println("⚠️  Voice provider API key not set; call sync endpoints will refuse to run")
	}

	// Initialize recording archive storage (optional)
	var archiveStore syncuc.ArchiveStore
	if cfg.Storage.Endpoint != "" {
		log.Println("🗄️  Initializing recording archive storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archiveStore = minioClient
	} else {
		log.Println("⚠️  Storage endpoint not set; recording archival disabled")
	}

	// Initialize transcription (optional)
	var transcriber syncuc.Transcriber
	if cfg.Assembly.APIKey != "" {
		log.Println("🎙️  Initializing transcription client...")
		transcriber = syncuc.NewAssemblyTranscriber(cfg.Assembly.APIKey)
	} else {
		log.Println("⚠️  AssemblyAI API key not set; transcript backfill disabled")
	}

	// Initialize domain services
	log.Println("🧠 Initializing evaluation parser and lead extractor...")
	parser := evaluation.NewParser(evaluation.DefaultConfig())
	extractor := leadgen.NewExtractor(leadgen.DefaultConfig())

	log.Println("🔁 Initializing sync services...")
	callSync := syncuc.NewCallSyncService(callRepo, leadRepo, voiceClient, parser, locks, status, cfg, logger)
	leadSync := syncuc.NewLeadSyncService(callRepo, leadRepo, extractor, locks, status, cfg, logger)
	backfills := syncuc.NewBackfillService(callRepo, leadRepo, parser, nil, locks, status, cfg, logger)
	transcripts := syncuc.NewTranscriptBackfillService(callRepo, transcriber, locks, status, cfg, logger)
	archive := syncuc.NewRecordingArchiveService(callRepo, archiveStore, voiceClient, locks, status, cfg, logger)

	// Initialize JWT manager and auth middleware
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	authMW := httpmw.NewAuthMiddleware(jwtManager, logger)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	syncHandler := handler.NewSyncHandler(callSync, leadSync, status, logger)
	backfillHandler := handler.NewBackfillHandler(backfills, transcripts, archive, logger)
	log.Println("✅ Handlers initialized successfully")

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, syncHandler, backfillHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
