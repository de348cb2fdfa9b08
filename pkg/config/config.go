package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	LLM      LLMConfig
	RAG      RAGConfig
	Notify   NotifyConfig
	Insights InsightsConfig
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
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// StorageConfig holds object storage configuration for the insights archive
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// LLMConfig holds chat and embedding provider settings. Empty model names
// and base URL select the provider's own defaults; an empty SummaryModel
// uses the chat model.
type LLMConfig struct {
	Provider            string // "openai" or "gemini"
	APIKey              string
	BaseURL             string
	ChatModel           string
	SummaryModel        string
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             time.Duration
	MaxRetries          int
}

// RAGConfig holds retrieval and answer synthesis settings
type RAGConfig struct {
	GlobalTopK         int
	MeetingTopK        int
	MaxHistory         int
	EmbeddingBatchSize int
	QueryCacheTTL      time.Duration
	AnswerTemperature  float64
	AnswerMaxTokens    int
}

// NotifyConfig holds post-commit notification targets
type NotifyConfig struct {
	EmailTriggerURL      string
	TicketSyncTriggerURL string
	NATSURL              string
	NATSSubject          string
	NATSToken            string
	HookTimeout          time.Duration
}

// InsightsConfig holds the extraction worker settings, read from INSIGHTS_* variables
type InsightsConfig struct {
	TargetStatuses   []string      `split_words:"true" default:"completed"`
	SegmentLimit     int           `split_words:"true" default:"300"`
	BatchSize        int           `split_words:"true" default:"1"`
	Workers          int           `default:"1"`
	PollInterval     time.Duration `split_words:"true" default:"30s"`
	BusyPollInterval time.Duration `split_words:"true" default:"2s"`
	ProcessTimeout   time.Duration `split_words:"true" default:"5m"`
	ProcessingLease  time.Duration `split_words:"true" default:"30m"`
	ReapInterval     time.Duration `split_words:"true" default:"5m"`
	TeamRosterPath   string        `split_words:"true" default:"team_roster.txt"`
	Language         string        `default:"English"`
	Temperature      float64       `default:"0.2"`
	MaxOutputTokens  int           `split_words:"true" default:"4096"`
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
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "meeting_insights"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "meeting-insights"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
		},
		LLM: LLMConfig{
			Provider:            strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			APIKey:              getEnv("LLM_API_KEY", ""),
			BaseURL:             getEnv("LLM_BASE_URL", ""),
			ChatModel:           getEnv("LLM_CHAT_MODEL", ""),
			SummaryModel:        getEnv("LLM_SUMMARY_MODEL", ""),
			EmbeddingModel:      getEnv("LLM_EMBEDDING_MODEL", ""),
			EmbeddingDimensions: getEnvAsInt("LLM_EMBEDDING_DIMENSIONS", 1536),
			Timeout:             getEnvAsDuration("LLM_TIMEOUT", "60s"),
			MaxRetries:          getEnvAsInt("LLM_MAX_RETRIES", 3),
		},
		RAG: RAGConfig{
			GlobalTopK:         getEnvAsInt("RAG_GLOBAL_TOP_K", 8),
			MeetingTopK:        getEnvAsInt("RAG_MEETING_TOP_K", 6),
			MaxHistory:         getEnvAsInt("RAG_MAX_HISTORY", 10),
			EmbeddingBatchSize: getEnvAsInt("EMBEDDING_BATCH_SIZE", 50),
			QueryCacheTTL:      getEnvAsDuration("RAG_QUERY_CACHE_TTL", "1h"),
			AnswerTemperature:  getEnvAsFloat("RAG_ANSWER_TEMPERATURE", 0.2),
			AnswerMaxTokens:    getEnvAsInt("RAG_ANSWER_MAX_TOKENS", 1024),
		},
		Notify: NotifyConfig{
			EmailTriggerURL:      getEnv("EMAIL_TRIGGER_URL", ""),
			TicketSyncTriggerURL: getEnv("TICKET_SYNC_TRIGGER_URL", ""),
			NATSURL:              getEnv("NATS_URL", ""),
			NATSSubject:          getEnv("NATS_SUBJECT", "meetings.insights.completed"),
			NATSToken:            getEnv("NATS_TOKEN", ""),
			HookTimeout:          getEnvAsDuration("HOOK_TIMEOUT", "10s"),
		},
	}

	if err := envconfig.Process("INSIGHTS", &config.Insights); err != nil {
		return nil, fmt.Errorf("failed to read INSIGHTS_* settings: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be 'openai' or 'gemini', got %q", c.LLM.Provider)
	}
	if c.LLM.EmbeddingDimensions <= 0 {
		return fmt.Errorf("LLM_EMBEDDING_DIMENSIONS must be positive")
	}
	if c.RAG.GlobalTopK <= 0 || c.RAG.MeetingTopK <= 0 {
		return fmt.Errorf("RAG top-k values must be positive")
	}
	if c.RAG.EmbeddingBatchSize <= 0 {
		return fmt.Errorf("EMBEDDING_BATCH_SIZE must be positive")
	}
	if c.Insights.BatchSize <= 0 {
		return fmt.Errorf("INSIGHTS_BATCH_SIZE must be positive")
	}
	if len(c.Insights.TargetStatuses) == 0 {
		return fmt.Errorf("INSIGHTS_TARGET_STATUSES must not be empty")
	}
	// A lease at or below the job timeout lets the reaper hand a meeting
	// that is still being processed to a second worker.
	if c.Insights.ProcessingLease > 0 && c.Insights.ProcessingLease <= c.Insights.ProcessTimeout {
		return fmt.Errorf("INSIGHTS_PROCESSING_LEASE (%s) must exceed INSIGHTS_PROCESS_TIMEOUT (%s)",
			c.Insights.ProcessingLease, c.Insights.ProcessTimeout)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
