package config

import (
	"os"
	"strconv"
	"time"
)

// Backend holds the credentials and endpoint of one provider adapter.
type Backend struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Store selects and configures the conversation store.
type Store struct {
	// Backend is one of memory, redis, mongo or postgres.
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	PostgresDSN   string
	PostgresTable string
}

// Config is the process configuration.
type Config struct {
	DefaultProvider string
	// WebSearch is one of off, auto or always.
	WebSearch    string
	Language     string
	SystemPrompt string
	// Cursor enables the trailing "still generating" marker on streamed snapshots.
	Cursor bool

	OpenAI    Backend
	Anthropic Backend
	Gemini    Backend
	Groq      Backend
	Cohere    Backend
	Blackbox  Backend
	Nexra     Backend

	Store Store
}

// Load reads the configuration from environment variables, applying defaults.
func Load() *Config {
	return &Config{
		DefaultProvider: getEnv("CHATROUTE_PROVIDER", "openai"),
		WebSearch:       getEnv("CHATROUTE_WEB_SEARCH", "off"),
		Language:        getEnv("CHATROUTE_LANGUAGE", "English"),
		SystemPrompt:    getEnv("CHATROUTE_SYSTEM_PROMPT", ""),
		Cursor:          getEnvBool("CHATROUTE_CURSOR", true),

		OpenAI: Backend{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Anthropic: Backend{
			APIKey:  getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL: getEnv("ANTHROPIC_BASE_URL", ""),
			Model:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		},
		Gemini: Backend{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		Groq: Backend{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		},
		Cohere: Backend{
			APIKey:  getEnv("COHERE_API_KEY", ""),
			BaseURL: getEnv("COHERE_BASE_URL", "https://api.cohere.ai/v1/chat"),
			Model:   getEnv("COHERE_MODEL", "command-r"),
		},
		Blackbox: Backend{
			BaseURL: getEnv("BLACKBOX_BASE_URL", "https://www.blackbox.ai/api/chat"),
		},
		Nexra: Backend{
			BaseURL: getEnv("NEXRA_BASE_URL", "https://nexra.aryahcr.cc/api/chat/complements"),
			Model:   getEnv("NEXRA_MODEL", "gpt-4o"),
		},

		Store: Store{
			Backend:         getEnv("CHATROUTE_STORE", "memory"),
			RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:   getEnv("REDIS_PASSWORD", ""),
			RedisDB:         getEnvInt("REDIS_DB", 0),
			RedisPrefix:     getEnv("REDIS_PREFIX", "chatroute:chat:"),
			RedisTTL:        getEnvDuration("REDIS_TTL", 0),
			MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDatabase:   getEnv("MONGODB_DB", "chatroute"),
			MongoCollection: getEnv("MONGODB_COLLECTION", "chats"),
			PostgresDSN:     getEnv("POSTGRES_DSN", ""),
			PostgresTable:   getEnv("POSTGRES_TABLE", "chats"),
		},
	}
}

// Validate checks the configuration, including the selected store backend.
func (c *Config) Validate() error {
	v := NewValidator()
	v.RequireNonEmpty("provider", c.DefaultProvider)
	v.ValidateOneOf("webSearch", c.WebSearch, "off", "auto", "always")
	v.ValidateOneOf("store", c.Store.Backend, "memory", "redis", "mongo", "postgres")

	switch c.Store.Backend {
	case "redis":
		v.RequireNonEmpty("redisAddr", c.Store.RedisAddr)
		v.ValidateDBNumber("redisDB", c.Store.RedisDB)
		v.RequireNonEmpty("redisPrefix", c.Store.RedisPrefix)
	case "mongo":
		v.RequireNonEmpty("mongoURI", c.Store.MongoURI)
		v.RequireNonEmpty("mongoDatabase", c.Store.MongoDatabase)
		v.RequireNonEmpty("mongoCollection", c.Store.MongoCollection)
	case "postgres":
		v.RequireNonEmpty("postgresDSN", c.Store.PostgresDSN)
		v.RequireNonEmpty("postgresTable", c.Store.PostgresTable)
	}
	return v.Error()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
