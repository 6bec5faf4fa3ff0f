package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr         string
	HTTPWriteTimeout time.Duration
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	MaxUploadBytes   int64

	// Rendering.
	RenderDPI      int
	RenderWidthIn  float64
	RenderHeightIn float64

	// ReferenceCurvesPath optionally replaces the built-in curve catalog.
	ReferenceCurvesPath string

	// Object storage sink for finished archives.
	ArchiveBucket  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool
	ArchiveEnabled bool

	// Kafka manifest publishing.
	KafkaBrokers       []string
	KafkaManifestTopic string
	ManifestEnabled    bool
}

// Load reads configuration from the environment, applying defaults where unset.
// A .env file in the working directory is read first when present; variables
// already set in the environment take precedence over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parsePositiveDuration("HTTP_WRITE_TIMEOUT", "2m")
	if err != nil {
		return nil, err
	}
	maxUpload, err := parseIntRange("MAX_UPLOAD_BYTES", 32<<20, 1024, 1<<30)
	if err != nil {
		return nil, err
	}
	dpi, err := parseIntRange("RENDER_DPI", 300, 72, 600)
	if err != nil {
		return nil, err
	}
	width, err := parseInches("RENDER_WIDTH_IN", "12")
	if err != nil {
		return nil, err
	}
	height, err := parseInches("RENDER_HEIGHT_IN", "8")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		HTTPWriteTimeout: writeTimeout,
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		MaxUploadBytes:   int64(maxUpload),

		RenderDPI:      dpi,
		RenderWidthIn:  width,
		RenderHeightIn: height,

		ReferenceCurvesPath: os.Getenv("REFERENCE_CURVES_PATH"),

		ArchiveBucket:  os.Getenv("ARCHIVE_BUCKET"),
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioSecure:    os.Getenv("MINIO_SECURE") == "true",

		KafkaBrokers:       sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaManifestTopic: sharedcfg.EnvOrDefault("KAFKA_MANIFEST_TOPIC", "power-curve-archives"),
	}
	cfg.ArchiveEnabled = cfg.ArchiveBucket != "" && cfg.MinioEndpoint != ""
	cfg.ManifestEnabled = len(cfg.KafkaBrokers) > 0

	if cfg.ArchiveBucket != "" && cfg.MinioEndpoint == "" {
		return nil, errors.New("ARCHIVE_BUCKET is set but MINIO_ENDPOINT is not")
	}
	if cfg.ArchiveEnabled && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		return nil, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when ARCHIVE_BUCKET is set")
	}
	if cfg.ManifestEnabled && cfg.KafkaManifestTopic == "" {
		return nil, errors.New("KAFKA_MANIFEST_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func parseInches(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, fallback), 64)
	if err != nil || v <= 0 || v > 40 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
