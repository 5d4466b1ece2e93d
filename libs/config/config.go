// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Server    ServerConfig
	Logging   LoggingConfig
	CORS      CORSConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Thumbnail ThumbnailConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings. An empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port    int
	BaseURL string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds the secret shared with the auth provider
type JWTConfig struct {
	Secret string
}

// StorageConfig holds the on-disk locations of media assets
type StorageConfig struct {
	MovieFolder     string
	SeriesFolder    string
	ThumbnailFolder string
}

// UploadConfig holds chunked upload settings
type UploadConfig struct {
	TempDir         string
	MaxChunkSize    int64
	SessionTTL      time.Duration
	CleanupSchedule string
}

// ThumbnailConfig holds frame capture settings
type ThumbnailConfig struct {
	FFmpegPath   string
	FFprobePath  string
	Count        int
	FrameTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}

	dbHost, err := required("DB_HOST")
	if err != nil {
		return nil, err
	}
	cfg.Database.Host = dbHost

	dbPortStr, err := required("DB_PORT")
	if err != nil {
		return nil, err
	}
	if cfg.Database.Port, err = strconv.Atoi(dbPortStr); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	if cfg.Database.User, err = required("DB_USER"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = required("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.DBName, err = required("DB_NAME"); err != nil {
		return nil, err
	}

	if cfg.Server.Port, err = intOr("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	cfg.Server.BaseURL = os.Getenv("BASE_URL")
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	cfg.Logging.Level = stringOr("LOG_LEVEL", "info")
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	if cfg.JWT.Secret, err = required("JWT_SECRET"); err != nil {
		return nil, err
	}

	if err := loadStorage(cfg); err != nil {
		return nil, err
	}

	// Redis is optional, upload sessions fall back to process memory
	cfg.Redis.Host = os.Getenv("REDIS_HOST")
	if cfg.Redis.Port, err = intOr("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = intOr("REDIS_DB", 0); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadStorage reads the folder, upload and thumbnail settings. Relative folders are resolved
// against the working directory so later path comparisons are stable.
func loadStorage(cfg *Config) error {
	var err error

	folders := []struct {
		env, def string
		dst      *string
	}{
		{"MOVIE_FOLDER", "./movies", &cfg.Storage.MovieFolder},
		{"SERIES_FOLDER", "./series", &cfg.Storage.SeriesFolder},
		{"THUMBNAIL_FOLDER", "./thumbnails", &cfg.Storage.ThumbnailFolder},
		{"UPLOAD_TEMP_DIR", "./uploads/tmp", &cfg.Upload.TempDir},
	}
	for _, f := range folders {
		if *f.dst, err = filepath.Abs(stringOr(f.env, f.def)); err != nil {
			return fmt.Errorf("invalid %s: %w", f.env, err)
		}
	}

	if cfg.Upload.MaxChunkSize, err = int64Or("UPLOAD_MAX_CHUNK_SIZE", 10<<20); err != nil {
		return err
	}
	if cfg.Upload.MaxChunkSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_CHUNK_SIZE must be positive")
	}
	if cfg.Upload.SessionTTL, err = durationOr("UPLOAD_SESSION_TTL", 24*time.Hour); err != nil {
		return err
	}
	cfg.Upload.CleanupSchedule = stringOr("UPLOAD_CLEANUP_SCHEDULE", "@hourly")

	cfg.Thumbnail.FFmpegPath = stringOr("FFMPEG_PATH", "ffmpeg")
	cfg.Thumbnail.FFprobePath = stringOr("FFPROBE_PATH", "ffprobe")
	if cfg.Thumbnail.Count, err = intOr("THUMBNAIL_COUNT", 6); err != nil {
		return err
	}
	if cfg.Thumbnail.Count <= 0 {
		return fmt.Errorf("THUMBNAIL_COUNT must be positive")
	}
	if cfg.Thumbnail.FrameTimeout, err = durationOr("THUMBNAIL_FRAME_TIMEOUT", 15*time.Second); err != nil {
		return err
	}

	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns host:port of the Redis server, or "" when Redis is disabled
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func required(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func stringOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func int64Or(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

// parseOrigins splits a comma separated origin list, defaulting to "*"
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
