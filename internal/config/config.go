// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL         string
	LLMModelName       string
	LLMAPIKey          string
	EmbeddingBaseURL   string
	EmbeddingModelName string
	DBPath             string
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	ChunkSize          int
	ChunkOverlap       int
	CalendlyAPIKey     string
	CalendlyBaseURL    string
	CalendlyEventType  string
	APIPort            string
	LogLevel           string
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		DBPath:             getEnv("DB_PATH", "./data/property-agent.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "property_documents"),
		CalendlyAPIKey:     getEnv("CALENDLY_API_KEY", ""),
		CalendlyBaseURL:    getEnv("CALENDLY_API_BASE_URL", "https://api.calendly.com"),
		CalendlyEventType:  getEnv("CALENDLY_DEFAULT_EVENT_TYPE_URI", ""),
		APIPort:            getEnv("API_PORT", "9000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// The vector size must match the output dimension of the embeddings
	// model. If it changes, the Qdrant collection must be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	chunkSize, err := getEnvInt("CHUNK_SIZE", 512)
	if err != nil {
		return nil, err
	}
	chunkOverlap, err := getEnvInt("CHUNK_OVERLAP", 50)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE")
	}
	cfg.ChunkSize = chunkSize
	cfg.ChunkOverlap = chunkOverlap

	// Calendly is optional. When the key is missing the tour endpoints
	// report the feature as unconfigured instead of failing startup.
	if cfg.CalendlyAPIKey != "" && cfg.CalendlyEventType == "" {
		return nil, fmt.Errorf("CALENDLY_DEFAULT_EVENT_TYPE_URI is required when CALENDLY_API_KEY is set")
	}

	// Create ./data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ToursEnabled reports whether Calendly is configured.
func (c *Config) ToursEnabled() bool {
	return c.CalendlyAPIKey != ""
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
