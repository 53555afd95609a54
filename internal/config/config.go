package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Tiny     TinyConfig
	Sync     SyncConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

// TinyConfig holds upstream ERP access settings. ApiToken is required;
// the binary refuses to start without it.
type TinyConfig struct {
	ApiToken        string
	BaseURL         string
	MinTime         time.Duration
	SnapshotInitial time.Duration
	SnapshotMax     time.Duration
}

type SyncConfig struct {
	Strategy           string // "delta" or "fallback"
	MaxPagesPerRun     int
	PageDelay          time.Duration
	RateLimitSleep     time.Duration
	Jitter             time.Duration
	StockFieldPriority []string
}

type AIConfig struct {
	EmbeddingProvider   string // "gemini" or "ollama"
	GoogleGeminiApiKey  string
	OllamaBaseURL       string
	OllamaModel         string
	EmbedDocumentTopic  string
	VectorizeBatchSize  int
	VectorizeInterval   time.Duration
	VectorizeItemDelay  time.Duration
	ChunkDedupThreshold float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Tiny: TinyConfig{
			ApiToken:        getEnv("TINY_API_TOKEN", ""),
			BaseURL:         getEnv("TINY_BASE_URL", "https://api.tiny.com.br/api2"),
			MinTime:         getEnvAsMillis("TINY_MIN_TIME_MS", 1000),
			SnapshotInitial: getEnvAsMillis("SNAPSHOT_BACKOFF_INITIAL_MS", 5000),
			SnapshotMax:     getEnvAsMillis("SNAPSHOT_BACKOFF_MAX_MS", 300000),
		},
		Sync: SyncConfig{
			Strategy:           getEnv("SYNC_STRATEGY", "delta"),
			MaxPagesPerRun:     getEnvAsInt("SYNC_MAX_PAGES_PER_RUN", 4),
			PageDelay:          getEnvAsMillis("SYNC_PAGE_DELAY_MS", 800),
			RateLimitSleep:     getEnvAsMillis("SYNC_RATE_LIMIT_SLEEP_MS", 60000),
			Jitter:             getEnvAsMillis("SYNC_JITTER_MS", 400),
			StockFieldPriority: getEnvAsList("STOCK_FIELD_PRIORITY", "estoque_atual,saldo,estoque,saldoEstoque,estoqueAtual"),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "gemini"),
			GoogleGeminiApiKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:         getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbedDocumentTopic:  getEnv("EMBED_DOCUMENT_TOPIC_NAME", "EMBED_DOCUMENT"),
			VectorizeBatchSize:  getEnvAsInt("VECTORIZE_BATCH_SIZE", 10),
			VectorizeInterval:   getEnvAsMillis("VECTORIZE_INTERVAL_MS", 60000),
			VectorizeItemDelay:  getEnvAsMillis("VECTORIZE_ITEM_DELAY_MS", 500),
			ChunkDedupThreshold: getEnvAsFloat("CHUNK_DEDUP_THRESHOLD", 0.9),
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

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
