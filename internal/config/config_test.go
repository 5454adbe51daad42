package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every key Load reads so tests see defaults plus whatever
// they explicitly set via t.Setenv.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE",
		"LOG_LEVEL", "LOG_PRETTY", "API_BASE_PATH",
		"DB_DSN", "UPLOAD_DIR", "MAX_UPLOAD_MIB",
		"AUDD_API_URL", "AUDD_API_TOKEN",
		"GENIUS_API_URL", "GENIUS_SITE_URL", "GENIUS_API_TOKEN",
		"CLASSIFIER_ENABLED", "CLASSIFIER_RUNNER", "CLASSIFIER_MODEL_URL",
		"CLASSIFIER_CLASS_MAP_URL", "CLASSIFIER_CACHE_DIR",
		"JWT_SECRET", "TOKEN_TTL",
		"RATE_RPS", "RATE_BURST",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Port != "8000" {
		t.Fatalf("Port = %q; want 8000", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("GinMode = %q; want release", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api" {
		t.Fatalf("APIBasePath = %q; want /api", cfg.APIBasePath)
	}
	if cfg.DBDSN != "app.db" || cfg.UploadDir != "uploads" {
		t.Fatalf("storage defaults wrong: dsn=%q upload=%q", cfg.DBDSN, cfg.UploadDir)
	}
	if cfg.MaxUploadMiB != 16 {
		t.Fatalf("MaxUploadMiB = %d; want 16", cfg.MaxUploadMiB)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("TokenTTL = %v; want 24h", cfg.Auth.TokenTTL)
	}
	if !cfg.Classifier.Enabled || cfg.Classifier.RunnerCmd != "yamnet-score" {
		t.Fatalf("classifier defaults wrong: %+v", cfg.Classifier)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate defaults wrong: rps=%v burst=%d", cfg.RateRPS, cfg.RateBurst)
	}
	if cfg.OTEL.Enabled {
		t.Fatalf("OTEL should be disabled by default")
	}
	if len(cfg.CORS.AllowedOrigins) != 0 {
		t.Fatalf("CORS origins should default empty, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_OverridesAndNormalization(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9001")
	t.Setenv("GIN_MODE", "WEIRD")
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , https://b.example ,")
	t.Setenv("TOKEN_TTL", "1h30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9001" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("unknown GIN_MODE should normalize to release, got %q", cfg.GinMode)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LOG_LEVEL=WARNING should normalize to warn, got %q", cfg.LogLevel)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Fatalf("APIBasePath = %q; want /api/v2", cfg.APIBasePath)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 ||
		cfg.CORS.AllowedOrigins[0] != "https://a.example" ||
		cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORS origins parsed wrong: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Fatalf("TokenTTL = %v; want 1h30m", cfg.Auth.TokenTTL)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"zero upload cap", "MAX_UPLOAD_MIB", "0", "MAX_UPLOAD_MIB"},
		{"negative rps", "RATE_RPS", "-1", "RATE_RPS"},
		{"zero burst", "RATE_BURST", "0", "RATE_BURST"},
		{"bad sampler ratio", "OTEL_TRACES_SAMPLER_ARG", "2", "OTEL_TRACES_SAMPLER_ARG"},
		{"negative ttl", "TOKEN_TTL", "-1h", "TOKEN_TTL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.val)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestLoad_ClassifierDisabledSkipsRunnerValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSIFIER_ENABLED", "false")
	t.Setenv("CLASSIFIER_RUNNER", " ")

	// RunnerCmd is only required when the classifier is on. A blank value
	// with the classifier off must not fail validation.
	if _, err := Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "/"},
		{"/", "/"},
		{"api", "/api"},
		{"/api", "/api"},
		{"/api/", "/api"},
		{"api/v1///", "/api/v1"},
	}
	for _, tc := range cases {
		if got := normalizeBasePath(tc.in); got != tc.want {
			t.Fatalf("normalizeBasePath(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
