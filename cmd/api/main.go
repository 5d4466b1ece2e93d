package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/cinemaadmin/backend/docs"
	"github.com/cinemaadmin/backend/internal/handlers"
	"github.com/cinemaadmin/backend/internal/mediainfo"
	"github.com/cinemaadmin/backend/internal/metrics"
	"github.com/cinemaadmin/backend/internal/repositories"
	"github.com/cinemaadmin/backend/internal/services"
	"github.com/cinemaadmin/backend/internal/storage"
	"github.com/cinemaadmin/backend/internal/thumbnail"
	authMiddleware "github.com/cinemaadmin/backend/libs/auth/middleware"
	authService "github.com/cinemaadmin/backend/libs/auth/service"
	"github.com/cinemaadmin/backend/libs/config"
	"github.com/cinemaadmin/backend/libs/logger"
	loggerMiddleware "github.com/cinemaadmin/backend/libs/logger/middleware"
	sharedMiddleware "github.com/cinemaadmin/backend/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// requestOverhead is added to the chunk size for multipart framing and form fields
const requestOverhead = 1 << 20

const minRequestSize = 32 << 20

// @title Cinema Admin Media API
// @version 1.0
// @description API for media items, chunked video uploads and thumbnails

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT issued by the auth provider, prefixed with "Bearer "
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Cinema Admin Media Service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Upload sessions live in Redis when configured, otherwise in process memory
	var sessions services.UploadSessionRepository
	if addr := cfg.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		sessions = repositories.NewRedisUploadSessionRepository(rdb, cfg.Upload.SessionTTL)
		logger.Logger.Info("Upload sessions stored in Redis", zap.String("addr", addr))
	} else {
		sessions = repositories.NewMemoryUploadSessionRepository()
		logger.Logger.Warn("REDIS_HOST not set, upload sessions are kept in memory")
	}

	// Initialize storage
	fsys := storage.OSFileSystem{}
	folders, err := storage.NewFolders(cfg.Storage.MovieFolder, cfg.Storage.SeriesFolder)
	if err != nil {
		logger.Logger.Fatal("Invalid storage folders", zap.Error(err))
	}
	if err := folders.Ensure(fsys); err != nil {
		logger.Logger.Fatal("Failed to create storage folders", zap.Error(err))
	}
	relocator := storage.NewRelocator(folders, fsys, logger.Logger)
	mover := storage.NewMover(fsys, logger.Logger)
	thumbnails := storage.NewAssetStore(cfg.Storage.ThumbnailFolder)

	// Initialize frame capture
	prober := mediainfo.NewProber(cfg.Thumbnail.FFprobePath)
	grabber := mediainfo.NewFrameGrabber(cfg.Thumbnail.FFmpegPath)
	if !prober.Available() || !grabber.Available() {
		logger.Logger.Warn("ffmpeg/ffprobe not found, thumbnail capture will report unavailable",
			zap.String("ffmpeg", cfg.Thumbnail.FFmpegPath),
			zap.String("ffprobe", cfg.Thumbnail.FFprobePath),
		)
	}
	capturer := thumbnail.NewCapturer(prober, grabber, cfg.Thumbnail.Count, cfg.Thumbnail.FrameTimeout, logger.Logger)
	candidates := thumbnail.NewCandidateStore()

	// Initialize repositories
	mediaRepo := repositories.NewMediaItemRepository(db)

	// Initialize services
	mediaService := services.NewMediaService(mediaRepo, relocator, fsys, logger.Logger)
	uploadService := services.NewUploadService(sessions, mover, services.UploadConfig{
		TempDir:      cfg.Upload.TempDir,
		MaxChunkSize: cfg.Upload.MaxChunkSize,
		Folders:      folders,
	}, logger.Logger)
	thumbnailService := services.NewThumbnailService(capturer, candidates, thumbnails, folders, cfg.Server.BaseURL, logger.Logger)

	// Initialize handlers
	mediaHandler := handlers.NewMediaHandler(mediaService, logger.Logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, logger.Logger)
	thumbnailHandler := handlers.NewThumbnailHandler(thumbnailService, thumbnails, logger.Logger)
	videoHandler := handlers.NewVideoHandler(folders, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Initialize middleware
	verifier := authService.NewTokenVerifier(cfg.JWT.Secret)
	adminMw := authMiddleware.RoleMiddleware(verifier, authService.RoleAdmin)

	maxRequestSize := cfg.Upload.MaxChunkSize + requestOverhead
	if maxRequestSize < minRequestSize {
		maxRequestSize = minRequestSize
	}

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger, "/health", "/metrics"))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(metrics.Middleware("/health", "/metrics"))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(maxRequestSize))

	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("%s/swagger/doc.json", cfg.Server.BaseURL)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(300, time.Minute))
			mediaHandler.RegisterRoutes(r)
			thumbnailHandler.RegisterRoutes(r)
			videoHandler.RegisterRoutes(r)
		})

		// Admin endpoints; chunk uploads are not rate limited
		r.Route("/admin", func(r chi.Router) {
			r.Use(adminMw)
			mediaHandler.RegisterAdminRoutes(r)
			uploadHandler.RegisterAdminRoutes(r)
			thumbnailHandler.RegisterAdminRoutes(r)
		})
	})

	// Schedule stale upload cleanup
	cleanup, err := NewCleanupScheduler(cfg.Upload.CleanupSchedule, uploadService, cfg.Upload.SessionTTL, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to schedule upload cleanup", zap.Error(err))
	}
	cleanup.Start()

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // chunk bodies on slow links
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: video playback responses stream for as long as the viewer watches
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")
	cleanup.Stop()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "cinema_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Migrations sit next to the working directory or one level up when started from cmd
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		} else if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
