package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Vector backends accepted by VECTOR_BACKEND.
const (
	BackendQdrant = "qdrant"
	BackendChroma = "chroma"
	BackendMemory = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModelName   string
	LLMTemperature float32
	LLMRateLimit   float64

	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingCacheTTL  time.Duration

	VectorBackend    string
	QdrantURL        string
	ChromaURL        string
	VectorCollection string
	VectorSize       int

	ChunkSize          int
	ChunkOverlap       int
	RetrievalK         int
	HistoryMaxTurns    int
	TurnTimeout        time.Duration
	MaxUploadBytes     int64
	ExtractConcurrency int
	PDFEnabled         bool
	UnidocLicenseKey   string

	DBPath         string
	AllowedOrigins []string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// A .env file in the current directory or one of its parents is loaded first;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	llmBaseURL := strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.openai.com"), "/")

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LLMBaseURL:         llmBaseURL,
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o"),
		EmbeddingBaseURL:   strings.TrimRight(getEnv("EMBEDDING_BASE_URL", llmBaseURL), "/"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		ChromaURL:          getEnv("CHROMA_URL", "http://localhost:8000"),
		VectorCollection:   getEnv("VECTOR_COLLECTION", "manuals"),
		UnidocLicenseKey:   getEnv("UNIDOC_LICENSE_KEY", ""),
		DBPath:             getEnv("DB_PATH", "./data/manualrag.db"),
	}

	if cfg.LogLevel, err = parseLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// VECTOR_SIZE must match the output size of the embedding model; changing it
	// requires recreating the collection.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	if cfg.VectorSize, err = strconv.Atoi(vectorSizeStr); err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	switch cfg.VectorBackend {
	case BackendQdrant, BackendChroma, BackendMemory:
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be one of qdrant, chroma, memory, got %q", cfg.VectorBackend)
	}

	if cfg.LLMAPIKey == "" && !isLocalURL(cfg.LLMBaseURL) {
		return nil, fmt.Errorf("LLM_API_KEY is required for %s", cfg.LLMBaseURL)
	}

	ints := []struct {
		key  string
		def  int
		dst  *int
		min  int
		desc string
	}{
		{"CHUNK_SIZE", 10000, &cfg.ChunkSize, 1, "greater than 0"},
		{"CHUNK_OVERLAP", 1000, &cfg.ChunkOverlap, 0, "0 or greater"},
		{"RETRIEVAL_K", 4, &cfg.RetrievalK, 1, "greater than 0"},
		{"HISTORY_MAX_TURNS", 0, &cfg.HistoryMaxTurns, 0, "0 or greater"},
		{"EXTRACT_CONCURRENCY", 4, &cfg.ExtractConcurrency, 1, "greater than 0"},
	}
	for _, f := range ints {
		v, err := getEnvInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		if v < f.min {
			return nil, fmt.Errorf("%s must be %s", f.key, f.desc)
		}
		*f.dst = v
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be less than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_MB", 64)
	if err != nil {
		return nil, err
	}
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be greater than 0")
	}
	cfg.MaxUploadBytes = int64(maxUploadMB) << 20

	if cfg.TurnTimeout, err = getEnvDuration("TURN_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.EmbeddingCacheTTL, err = getEnvDuration("EMBEDDING_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	temp, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be a number: %w", err)
	}
	cfg.LLMTemperature = float32(temp)

	if cfg.LLMRateLimit, err = strconv.ParseFloat(getEnv("LLM_RATE_LIMIT", "0"), 64); err != nil {
		return nil, fmt.Errorf("LLM_RATE_LIMIT must be a number: %w", err)
	}
	if cfg.LLMRateLimit < 0 {
		return nil, fmt.Errorf("LLM_RATE_LIMIT must be 0 or greater")
	}

	if cfg.PDFEnabled, err = strconv.ParseBool(getEnv("PDF_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("PDF_ENABLED must be a boolean: %w", err)
	}
	// UniPDF refuses to extract text without a license.
	if cfg.PDFEnabled && cfg.UnidocLicenseKey == "" {
		return nil, fmt.Errorf("UNIDOC_LICENSE_KEY is required for PDF extraction; set PDF_ENABLED=false to accept only Markdown and text")
	}

	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// isLocalURL reports whether raw points at a loopback host, where a
// self-hosted OpenAI-compatible server usually needs no key.
func isLocalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
