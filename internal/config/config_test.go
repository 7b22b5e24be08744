package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setEnv sets an environment variable, ignoring errors (for test setup)
func setEnv(key, value string) {
	_ = os.Setenv(key, value)
}

// unsetEnv unsets an environment variable, ignoring errors (for test cleanup)
func unsetEnv(key string) {
	_ = os.Unsetenv(key)
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalEnv := make(map[string]string)
	envVars := []string{
		"QDRANT_VECTOR_SIZE", "QDRANT_URL", "QDRANT_COLLECTION",
		"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL",
		"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME",
		"DB_PATH", "API_PORT", "CHUNK_SIZE", "CHUNK_OVERLAP",
		"CALENDLY_API_KEY", "CALENDLY_API_BASE_URL", "CALENDLY_DEFAULT_EVENT_TYPE_URI",
		"LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range envVars {
		originalEnv[key] = os.Getenv(key)
		unsetEnv(key)
	}
	defer func() {
		for key, value := range originalEnv {
			if value != "" {
				setEnv(key, value)
			} else {
				unsetEnv(key)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*Config) bool
	}{
		{
			name: "valid config with defaults",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.QdrantVectorSize == 768 &&
					cfg.ChunkSize == 512 &&
					cfg.ChunkOverlap == 50 &&
					cfg.APIPort == "9000" &&
					!cfg.ToursEnabled()
			},
		},
		{
			name:     "missing vector size",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "invalid vector size",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "not-a-number")
			},
			wantErr: true,
		},
		{
			name: "zero vector size",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "0")
			},
			wantErr: true,
		},
		{
			name: "overlap must be smaller than chunk size",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("CHUNK_SIZE", "100")
				setEnv("CHUNK_OVERLAP", "100")
			},
			wantErr: true,
		},
		{
			name: "custom chunking",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("CHUNK_SIZE", "256")
				setEnv("CHUNK_OVERLAP", "32")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.ChunkSize == 256 && cfg.ChunkOverlap == 32
			},
		},
		{
			name: "calendly key without event type",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("CALENDLY_API_KEY", "key")
			},
			wantErr: true,
		},
		{
			name: "calendly fully configured",
			setupEnv: func(t *testing.T) {
				setEnv("QDRANT_VECTOR_SIZE", "768")
				setEnv("CALENDLY_API_KEY", "key")
				setEnv("CALENDLY_DEFAULT_EVENT_TYPE_URI", "https://api.calendly.com/event_types/abc")
				setEnv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
			},
			wantErr: false,
			checkConfig: func(cfg *Config) bool {
				return cfg.ToursEnabled() &&
					cfg.CalendlyBaseURL == "https://api.calendly.com"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range envVars {
				unsetEnv(key)
			}
			tt.setupEnv(t)

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Load() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.checkConfig != nil && !tt.checkConfig(cfg) {
				t.Errorf("unexpected config: %+v", cfg)
			}
		})
	}
}
