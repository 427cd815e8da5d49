package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Assembly    AssemblyAIConfig
	OpenAI      OpenAIConfig
	Pipeline    PipelineConfig
	VectorStore VectorStoreConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StorageConfig holds artifact storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string
}

// AssemblyAIConfig holds transcription provider configuration
type AssemblyAIConfig struct {
	APIKey         string
	BaseURL        string
	WebhookBaseURL string
	WebhookSecret  string
	LanguageCode   string
}

// OpenAIConfig holds LLM and embedding provider configuration
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	RequestTimeout time.Duration
	Temperature    float64
}

// PipelineConfig holds tunables for the content generation pipeline
type PipelineConfig struct {
	ChunkTargetTokens    int
	ChunkMaxTokens       int
	ChunkOverlapFraction float64
	RetrievalTopK        int
	TimestampTolerance   float64 // seconds
	QuoteMatchThreshold  float64 // normalized token similarity
	ApprovalThreshold    float64
	MaxIterations        int
	ChapterConcurrency   int
	WorkerCount          int
}

// VectorStoreConfig selects the retrieval index backend
type VectorStoreConfig struct {
	Backend     string // "memory", "pgvector" or "milvus"
	PostgresURL string
	MilvusAddr  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "podflow"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-change-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", "168h"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "podflow"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
		},
		Assembly: AssemblyAIConfig{
			APIKey:         getEnv("ASSEMBLYAI_API_KEY", ""),
			BaseURL:        getEnv("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com"),
			WebhookBaseURL: getEnv("ASSEMBLYAI_WEBHOOK_BASE_URL", ""),
			WebhookSecret:  getEnv("ASSEMBLYAI_WEBHOOK_SECRET", ""),
			LanguageCode:   getEnv("ASSEMBLYAI_LANGUAGE_CODE", "en"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			ChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-large"),
			RequestTimeout: getEnvAsDuration("OPENAI_REQUEST_TIMEOUT", "90s"),
			Temperature:    getEnvAsFloat("OPENAI_TEMPERATURE", 0.05),
		},
		Pipeline: PipelineConfig{
			ChunkTargetTokens:    getEnvAsInt("PIPELINE_CHUNK_TARGET_TOKENS", 300),
			ChunkMaxTokens:       getEnvAsInt("PIPELINE_CHUNK_MAX_TOKENS", 400),
			ChunkOverlapFraction: getEnvAsFloat("PIPELINE_CHUNK_OVERLAP_FRACTION", 0.15),
			RetrievalTopK:        getEnvAsInt("PIPELINE_RETRIEVAL_TOP_K", 5),
			TimestampTolerance:   getEnvAsFloat("PIPELINE_TIMESTAMP_TOLERANCE", 5.0),
			QuoteMatchThreshold:  getEnvAsFloat("PIPELINE_QUOTE_MATCH_THRESHOLD", 0.85),
			ApprovalThreshold:    getEnvAsFloat("PIPELINE_APPROVAL_THRESHOLD", 0.90),
			MaxIterations:        getEnvAsInt("PIPELINE_MAX_ITERATIONS", 3),
			ChapterConcurrency:   getEnvAsInt("PIPELINE_CHAPTER_CONCURRENCY", 3),
			WorkerCount:          getEnvAsInt("PIPELINE_WORKER_COUNT", 2),
		},
		VectorStore: VectorStoreConfig{
			Backend:     getEnv("VECTOR_STORE_BACKEND", "memory"),
			PostgresURL: getEnv("VECTOR_STORE_POSTGRES_URL", ""),
			MilvusAddr:  getEnv("VECTOR_STORE_MILVUS_ADDR", ""),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Assembly.APIKey == "" {
		return fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Pipeline.ChunkOverlapFraction < 0.1 || c.Pipeline.ChunkOverlapFraction > 0.2 {
		return fmt.Errorf("PIPELINE_CHUNK_OVERLAP_FRACTION must be within [0.1, 0.2]")
	}
	if c.Pipeline.MaxIterations < 1 {
		return fmt.Errorf("PIPELINE_MAX_ITERATIONS must be at least 1")
	}
	switch c.VectorStore.Backend {
	case "memory":
	case "pgvector":
		if c.VectorStore.PostgresURL == "" {
			return fmt.Errorf("VECTOR_STORE_POSTGRES_URL is required for the pgvector backend")
		}
	case "milvus":
		if c.VectorStore.MilvusAddr == "" {
			return fmt.Errorf("VECTOR_STORE_MILVUS_ADDR is required for the milvus backend")
		}
	default:
		return fmt.Errorf("unknown vector store backend %q", c.VectorStore.Backend)
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
