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

	pkgvalidator "github.com/podflow-team/podflow/pkg/validator"

	"github.com/podflow-team/podflow/internal/adapter/handler"
	"github.com/podflow-team/podflow/internal/adapter/repository"
	"github.com/podflow-team/podflow/internal/infrastructure/cache"
	"github.com/podflow-team/podflow/internal/infrastructure/database"
	"github.com/podflow-team/podflow/internal/infrastructure/storage"
	"github.com/podflow-team/podflow/internal/infrastructure/vectorstore"
	"github.com/podflow-team/podflow/internal/usecase/content"
	episodeuse "github.com/podflow-team/podflow/internal/usecase/episode"
	pkgai "github.com/podflow-team/podflow/pkg/ai"
	"github.com/podflow-team/podflow/pkg/config"
	"github.com/podflow-team/podflow/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use scripts/migrate.go for schema migrations in CI/CD/production")
	}

	// Initialize cache; Redis with in-memory fallback for local development
	log.Println("📦 Connecting to Redis...")
	var resultCache cache.Cache
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), falling back to in-memory cache", err)
		resultCache = cache.NewMemoryCache()
	} else {
		resultCache = redisCache
	}
	defer resultCache.Close()

	// Initialize object storage for artifact bundles
	log.Println("🪣 Connecting to MinIO...")
	var artifacts episodeuse.ArtifactStore
	var minioClient *storage.MinIOClient
	minioClient, err = storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Printf("⚠️  MinIO unavailable (%v), artifact upload disabled", err)
		minioClient = nil
	} else {
		artifacts = minioClient
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	episodeRepo := repository.NewEpisodeRepository(db)
	jobRepo := repository.NewContentJobRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	resultRepo := repository.NewContentResultRepository(db)

	// Initialize AI clients and the content pipeline
	log.Println("🤖 Initializing content pipeline...")
	asmClient := pkgai.NewAssemblyAIClient(&cfg.Assembly)
	llmClient := pkgai.NewLLMClient(&cfg.OpenAI, logger)

	store, err := vectorstore.New(&cfg.VectorStore, logger)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// The LLM client doubles as the embedder; orchestrator falls back to
	// lexical retrieval when embeddings are unavailable.
	var embedder content.Embedder
	if cfg.OpenAI.APIKey != "" {
		embedder = llmClient
	}
	orchestrator := content.NewOrchestrator(llmClient, embedder, store, &cfg.Pipeline, logger)

	// Initialize the episode service and its background workers
	log.Println("🎙️  Initializing episode service...")
	episodeService := episodeuse.NewService(
		episodeRepo,
		jobRepo,
		transcriptRepo,
		resultRepo,
		asmClient,
		orchestrator,
		artifacts,
		resultCache,
		cfg,
		logger,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if err := episodeService.StartWorkerPool(workerCtx, cfg.Pipeline.WorkerCount); err != nil {
		log.Fatalf("Failed to start worker pool: %v", err)
	}
	defer episodeService.StopWorkerPool()

	// Initialize JWT manager; episode routes run unauthenticated when no
	// secret is configured
	var jwtManager *jwt.Manager
	if cfg.JWT.AccessSecret != "" {
		jwtManager = jwt.NewManager(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiry,
			cfg.JWT.RefreshExpiry,
		)
	} else {
		log.Println("⚠️  JWT_ACCESS_SECRET not set, API authentication disabled")
	}

	// Initialize handlers
	log.Println("🛣️  Setting up routes...")
	episodeHandler := handler.NewEpisodeHandler(episodeService, logger)
	webhookHandler := handler.NewWebhookHandler(episodeService, logger)
	var artifactHandler *handler.ArtifactHandler
	if minioClient != nil {
		artifactHandler = handler.NewArtifactHandler(minioClient, logger)
	}

	router := handler.NewRouter(cfg, episodeHandler, webhookHandler, artifactHandler, jwtManager)
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
