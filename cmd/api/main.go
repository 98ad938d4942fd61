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

	pkgvalidator "github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/validator"

	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/adapter/handler"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/adapter/repository"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/cache"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/database"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/media"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/infrastructure/storage"
	usecase "github.com/Ketengan-Diffusion/Gemini-Transcriber/internal/usecase/transcription"
	pkgai "github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/ai"
	"github.com/Ketengan-Diffusion/Gemini-Transcriber/pkg/config"
)

// @title           Gemini Transcriber API
// @version         1.0
// @description     API for transcribing audio files into timestamped transcripts and SRT subtitles using Gemini

// @host      localhost:8080
// @BasePath  /v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

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
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Cap upload size; audio files are large but not unbounded
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxUploadMB)))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Job history store (optional)
	var jobRepo *repository.TranscriptionJobRepository
	if cfg.Database.Enabled {
		log.Println("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB(db)

		// Run migrations only when explicitly enabled in config.
		// Production deployments should manage schema via sql-migrate.
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
			}
			log.Println("🔄 Running migrations (development only) ...")
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run AutoMigrate: %v", err)
			}
		} else {
			log.Println("🔄 Skipping AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
		}

		jobRepo = repository.NewTranscriptionJobRepository(db)
	} else {
		log.Println("📦 Job history disabled (DB_ENABLED=false)")
	}

	// Result cache: Redis when enabled, in-memory otherwise
	var resultCache usecase.ResultCache
	if cfg.Cache.RedisEnabled {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(cfg, logger)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		resultCache = redisStore
	} else {
		log.Println("📦 Using in-memory result cache")
		resultCache = cache.NewMemoryStore()
	}

	// Artifact storage (optional)
	var artifacts usecase.ArtifactStore
	if cfg.Storage.Enabled {
		log.Println("📦 Connecting to MinIO...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		artifacts = minioClient
	}

	// Output directory
	outputs, err := storage.NewOutputWriter(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("Failed to prepare output directory: %v", err)
	}

	// Pipeline components
	log.Println("🤖 Initializing transcription pipeline...")
	segmenter := media.NewSegmenter(cfg.Pipeline.FFmpegPath, cfg.Pipeline.SegmentSeconds, logger)
	geminiClient := pkgai.NewGeminiClient(&cfg.Gemini)
	transcriber := usecase.NewGeminiChunkTranscriber(geminiClient, cfg.Gemini.MaxRetries, logger)

	service := usecase.NewService(segmenter, transcriber, outputs, cfg.Pipeline.Workers, logger, usecase.Options{
		Artifacts: artifacts,
		Cache:     resultCache,
		Jobs:      jobRepo,
		CacheTTL:  cfg.Cache.TTL,
	})

	// Handlers and routes
	log.Println("🛣️  Setting up routes...")
	transcriptionHandler := handler.NewTranscription(service, outputs, jobRepo, cfg.Pipeline.JobTimeout, logger)
	router := handler.NewRouter(cfg, transcriptionHandler)
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
