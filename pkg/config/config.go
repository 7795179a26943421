package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the complete configuration for the aggregator service
type AppConfig struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	ServiceName string          `mapstructure:"service_name"`
	Server      ServerConfig    `mapstructure:"server"`
	Store       StoreConfig     `mapstructure:"store"`
	Directory   DirectoryConfig `mapstructure:"directory"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Enricher    EnricherConfig  `mapstructure:"enricher"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig describes the remote record store holding the collections.
type StoreConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	BaseID         string        `mapstructure:"base_id"`
	PageSize       int           `mapstructure:"page_size"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	GamesTable     string        `mapstructure:"games_table"`
	PostsTable     string        `mapstructure:"posts_table"`
	PlaysTable     string        `mapstructure:"plays_table"`
	FeedbackTable  string        `mapstructure:"feedback_table"`
	UsersTable     string        `mapstructure:"users_table"`
}

// DirectoryConfig describes the external profile directory.
type DirectoryConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type CacheConfig struct {
	Backend        string        `mapstructure:"backend"` // "memory" or "redis"
	TTL            time.Duration `mapstructure:"ttl"`
	SweepThreshold int           `mapstructure:"sweep_threshold"`
	RedisAddr      string        `mapstructure:"redis_addr"`
}

type EnricherConfig struct {
	WorkerCount int `mapstructure:"worker_count"`
}

// Load loads configuration from file and environment variables
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	// Default values
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "arcade-aggregator")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.base_url", "https://api.airtable.com/v0")
	v.SetDefault("store.page_size", 100)
	v.SetDefault("store.request_timeout", 30*time.Second)
	v.SetDefault("store.games_table", "Games")
	v.SetDefault("store.posts_table", "Posts")
	v.SetDefault("store.plays_table", "Plays")
	v.SetDefault("store.feedback_table", "GameFeedback")
	v.SetDefault("store.users_table", "Users")
	v.SetDefault("directory.request_timeout", 10*time.Second)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.sweep_threshold", 1000)
	v.SetDefault("enricher.worker_count", 8)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Bind environment variables explicitly for nested structs to ensure Unmarshal picks them up
	v.BindEnv("service_name", "SERVICE_NAME")
	v.BindEnv("environment", "ENVIRONMENT")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("server.addr", "SERVER_ADDR")
	v.BindEnv("store.base_url", "STORE_BASE_URL")
	v.BindEnv("store.api_key", "STORE_API_KEY")
	v.BindEnv("store.base_id", "STORE_BASE_ID")
	v.BindEnv("store.page_size", "STORE_PAGE_SIZE")
	v.BindEnv("store.request_timeout", "STORE_REQUEST_TIMEOUT")
	v.BindEnv("store.games_table", "STORE_GAMES_TABLE")
	v.BindEnv("store.posts_table", "STORE_POSTS_TABLE")
	v.BindEnv("store.plays_table", "STORE_PLAYS_TABLE")
	v.BindEnv("store.feedback_table", "STORE_FEEDBACK_TABLE")
	v.BindEnv("store.users_table", "STORE_USERS_TABLE")
	v.BindEnv("directory.base_url", "DIRECTORY_BASE_URL")
	v.BindEnv("directory.request_timeout", "DIRECTORY_REQUEST_TIMEOUT")
	v.BindEnv("cache.backend", "CACHE_BACKEND")
	v.BindEnv("cache.ttl", "CACHE_TTL")
	v.BindEnv("cache.sweep_threshold", "CACHE_SWEEP_THRESHOLD")
	v.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")
	v.BindEnv("enricher.worker_count", "ENRICHER_WORKER_COUNT")

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *AppConfig) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service_name is required")
	}
	if c.Store.BaseURL == "" {
		return errors.New("store.base_url is required")
	}
	if c.Store.APIKey == "" {
		return errors.New("store.api_key is required")
	}
	if c.Store.BaseID == "" {
		return errors.New("store.base_id is required")
	}
	if c.Store.PageSize <= 0 {
		return errors.New("store.page_size must be positive")
	}
	if c.Directory.BaseURL == "" {
		return errors.New("directory.base_url is required")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return errors.New("cache.backend must be memory or redis")
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New("cache.redis_addr is required for redis backend")
	}
	if c.Enricher.WorkerCount <= 0 {
		return errors.New("enricher.worker_count must be positive")
	}
	return nil
}
