package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Keys        APIKeys
	Ai          AIConfig
	Rag         RAGConfig
	VectorStore VectorStoreConfig
	Session     SessionConfig
	Events      EventsConfig
	Tracing     TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	EventLogFilePath   string
	CorsAllowedOrigins string
	BodyLimitMB        int
	DataDir            string
}

type APIKeys struct {
	OpenAI string
	Tavily string
}

type AIConfig struct {
	LLMProvider       string // "openai" or "ollama"
	LLMModel          string
	LLMBaseURL        string
	PlannerModel      string // falls back to LLMModel
	EmbeddingProvider string // "openai" or "ollama"
	EmbeddingModel    string
	EmbeddingBaseURL  string
	OllamaBaseURL     string
}

type RAGConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	TopK             int
	MinScore         float64
	SearchMaxResults int
	SearchCacheTTL   time.Duration
}

type VectorStoreConfig struct {
	Backend     string // "tinysql" or "pgvector"
	StorageMode string // tinySQL storage mode: disk, wal, memory, index, hybrid
	PostgresDSN string
	Dimensions  int
}

type SessionConfig struct {
	LockBackend string // "local" or "redis"
	LockTTL     time.Duration
	RedisURL    string
}

type EventsConfig struct {
	NatsEnabled bool
	NatsURL     string
}

type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// Paths derived from DataDir. They mirror the layout the frontend tooling expects.
func (a AppConfig) SessionsDir() string  { return filepath.Join(a.DataDir, "chat_sessions") }
func (a AppConfig) DocsDir() string      { return filepath.Join(a.DataDir, "docs") }
func (a AppConfig) VectorDBDir() string  { return filepath.Join(a.DataDir, "vector_db") }
func (a AppConfig) MetadataFile() string { return filepath.Join(a.DataDir, "metadata.json") }

func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Environment, "production")
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	llmModel := getEnv("LLM_MODEL", "gpt-4o-mini")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 50),
			DataDir:            getEnv("DATA_DIR", "data"),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
			Tavily: getEnv("TAVILY_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMModel:          llmModel,
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			PlannerModel:      getEnv("PLANNER_MODEL", llmModel),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Rag: RAGConfig{
			ChunkSize:        getEnvAsInt("RAG_CHUNK_SIZE", 8000),
			ChunkOverlap:     getEnvAsInt("RAG_CHUNK_OVERLAP", 800),
			TopK:             getEnvAsInt("RAG_TOP_K", 4),
			MinScore:         getEnvAsFloat("RAG_MIN_SCORE", 0.2),
			SearchMaxResults: getEnvAsInt("SEARCH_MAX_RESULTS", 5),
			SearchCacheTTL:   getEnvAsDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		},
		VectorStore: VectorStoreConfig{
			Backend:     getEnv("VECTOR_STORE_BACKEND", "tinysql"),
			StorageMode: getEnv("TINYSQL_STORAGE_MODE", "disk"),
			PostgresDSN: getEnv("DB_CONNECTION_STRING", ""),
			Dimensions:  getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
		},
		Session: SessionConfig{
			LockBackend: getEnv("SESSION_LOCK_BACKEND", "local"),
			LockTTL:     getEnvAsDuration("SESSION_LOCK_TTL", 3*time.Minute),
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Events: EventsConfig{
			NatsEnabled: getEnvAsBool("NATS_ENABLED", false),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Tracing: TracingConfig{
			Enabled:  getEnvAsBool("OTEL_ENABLED", false),
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
