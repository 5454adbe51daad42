// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database access, upload handling, the
// external recognition/lyrics services, and the local sound classifier.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-music-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// AuddConfig holds settings for the external audio-fingerprinting API.
type AuddConfig struct {
	APIURL   string // AUDD_API_URL
	APIToken string // AUDD_API_TOKEN
}

// GeniusConfig holds settings for the lyrics search API and the public
// content site its results point into.
type GeniusConfig struct {
	APIURL   string // GENIUS_API_URL  (search endpoint base)
	SiteURL  string // GENIUS_SITE_URL (content pages)
	APIToken string // GENIUS_API_TOKEN (bearer)
}

// ClassifierConfig holds settings for the local multi-label sound classifier.
// Model artifacts are fetched from ModelURL/ClassMapURL into CacheDir at
// startup when missing; RunnerCmd is the external scoring binary.
type ClassifierConfig struct {
	Enabled     bool   // CLASSIFIER_ENABLED
	RunnerCmd   string // CLASSIFIER_RUNNER (scorer binary on PATH or absolute)
	ModelURL    string // CLASSIFIER_MODEL_URL
	ClassMapURL string // CLASSIFIER_CLASS_MAP_URL
	CacheDir    string // CLASSIFIER_CACHE_DIR
}

// AuthConfig holds settings for session-token issuance.
type AuthConfig struct {
	JWTSecret string        // JWT_SECRET (HS256 signing key)
	TokenTTL  time.Duration // TOKEN_TTL (default 24h)
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 60s (uploads)
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 2m (fingerprint + scraping are slow)
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBDSN        string // sqlite path or postgres:// URL
	UploadDir    string // scratch directory for uploaded clips
	MaxUploadMiB int    // request body cap for audio uploads

	// External services
	Audd   AuddConfig
	Genius GeniusConfig

	// Local classifier
	Classifier ClassifierConfig

	// Auth
	Auth AuthConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              envStr("PORT", "8000"),
		ReadTimeout:       envDur("READ_TIMEOUT", 60*time.Second),
		ReadHeaderTimeout: envDur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      envDur("WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:       envDur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    envInt("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(envStr("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(envStr("LOG_LEVEL", "info")),
		LogPretty:   envBool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(envStr("API_BASE_PATH", "/api")),

		// App
		DBDSN:        envStr("DB_DSN", "app.db"),
		UploadDir:    envStr("UPLOAD_DIR", "uploads"),
		MaxUploadMiB: envInt("MAX_UPLOAD_MIB", 16),

		// External services
		Audd: AuddConfig{
			APIURL:   envStr("AUDD_API_URL", "https://api.audd.io/"),
			APIToken: envStr("AUDD_API_TOKEN", ""),
		},
		Genius: GeniusConfig{
			APIURL:   envStr("GENIUS_API_URL", "https://api.genius.com"),
			SiteURL:  envStr("GENIUS_SITE_URL", "https://genius.com"),
			APIToken: envStr("GENIUS_API_TOKEN", ""),
		},

		// Local classifier
		Classifier: ClassifierConfig{
			Enabled:     envBool("CLASSIFIER_ENABLED", true),
			RunnerCmd:   envStr("CLASSIFIER_RUNNER", "yamnet-score"),
			ModelURL:    envStr("CLASSIFIER_MODEL_URL", "https://storage.googleapis.com/audioset/yamnet.tflite"),
			ClassMapURL: envStr("CLASSIFIER_CLASS_MAP_URL", "https://raw.githubusercontent.com/tensorflow/models/master/research/audioset/yamnet/yamnet_class_map.csv"),
			CacheDir:    envStr("CLASSIFIER_CACHE_DIR", "models"),
		},

		// Auth
		Auth: AuthConfig{
			JWTSecret: envStr("JWT_SECRET", ""),
			TokenTTL:  envDur("TOKEN_TTL", 24*time.Hour),
		},

		// Rate limiting
		RateRPS:   envFloat("RATE_RPS", 5.0),
		RateBurst: envInt("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(envStr("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: envBool("ENABLE_HSTS", false),
			HSTSMaxAge: envDur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: envStr("OTEL_SERVICE_NAME", "go-music-backend"),
			SampleRatio: envFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBDSN) == "" {
		return cfg, errors.New("DB_DSN must not be empty")
	}
	if strings.TrimSpace(cfg.UploadDir) == "" {
		return cfg, errors.New("UPLOAD_DIR must not be empty")
	}
	if cfg.MaxUploadMiB < 1 {
		return cfg, errors.New("MAX_UPLOAD_MIB must be >= 1")
	}
	if strings.TrimSpace(cfg.Audd.APIURL) == "" {
		return cfg, errors.New("AUDD_API_URL must not be empty")
	}
	if strings.TrimSpace(cfg.Genius.APIURL) == "" || strings.TrimSpace(cfg.Genius.SiteURL) == "" {
		return cfg, errors.New("GENIUS_API_URL and GENIUS_SITE_URL must not be empty")
	}
	if cfg.Classifier.Enabled && strings.TrimSpace(cfg.Classifier.RunnerCmd) == "" {
		return cfg, errors.New("CLASSIFIER_RUNNER must not be empty when the classifier is enabled")
	}
	if cfg.Classifier.Enabled && strings.TrimSpace(cfg.Classifier.CacheDir) == "" {
		return cfg, errors.New("CLASSIFIER_CACHE_DIR must not be empty when the classifier is enabled")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// Env helpers. An empty value counts as unset, and a value that fails to
// parse falls back to the default rather than erroring; validation catches
// anything that matters afterward.

func lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return v, ok && v != ""
}

func envStr(k, def string) string {
	if v, ok := lookup(k); ok {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v, ok := lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envFloat(k string, def float64) float64 {
	v, ok := lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func envBool(k string, def bool) bool {
	v, ok := lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func envDur(k string, def time.Duration) time.Duration {
	v, ok := lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath yields "/" for blank input, otherwise a path with a
// leading slash and no trailing one.
func normalizeBasePath(p string) string {
	return "/" + strings.Trim(strings.TrimSpace(p), "/")
}
