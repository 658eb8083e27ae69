package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	YouTube  YouTubeConfig
	Pexels   PexelsConfig
	Insights InsightsConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig accepts either a full URL (Supabase connection string) or
// discrete connection fields.
type PostgresConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type YouTubeConfig struct {
	APIKey string
}

type PexelsConfig struct {
	APIKey  string
	BaseURL string
}

type InsightsConfig struct {
	TextTimeout  time.Duration
	VideoTimeout time.Duration
	ImageTimeout time.Duration
}

type LoggingConfig struct {
	Level string
	File  string
}

// Load reads and validates the full service configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadPostgres reads only what the schema tool needs; provider keys are not
// required.
func LoadPostgres() (PostgresConfig, error) {
	cfg, err := read()
	if err != nil {
		return PostgresConfig{}, err
	}
	if err := cfg.Postgres.validate(); err != nil {
		return PostgresConfig{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg.Postgres, nil
}

func read() (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "3001")
	v.SetDefault("allowed_origins", "http://localhost:3000")
	v.SetDefault("rate_limit_insights", "30/min")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("database_url", "")
	v.SetDefault("postgres_host", "")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "postgres")
	v.SetDefault("postgres_password", "")
	v.SetDefault("postgres_db", "postgres")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("openai_enable_fallback", true)

	v.SetDefault("youtube_api_key", "")
	v.SetDefault("pexels_api_key", "")
	v.SetDefault("pexels_base_url", "https://api.pexels.com/v1")

	v.SetDefault("insights_text_timeout", "30s")
	v.SetDefault("insights_video_timeout", "10s")
	v.SetDefault("insights_image_timeout", "10s")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	rl, err := parseRateLimit(v.GetString("rate_limit_insights"))
	if err != nil {
		return nil, fmt.Errorf("parse RATE_LIMIT_INSIGHTS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("port"),
			AllowedOrigins: parseCommaSeparated(v.GetString("allowed_origins")),
			RateLimit:      rl,
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetInt("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		Postgres: PostgresConfig{
			URL:      v.GetString("database_url"),
			Host:     v.GetString("postgres_host"),
			Port:     v.GetInt("postgres_port"),
			User:     v.GetString("postgres_user"),
			Password: v.GetString("postgres_password"),
			Database: v.GetString("postgres_db"),
			SSLMode:  v.GetString("postgres_sslmode"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("gemini_api_key"),
			Model:  v.GetString("gemini_model"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         v.GetString("openai_api_key"),
			Model:          v.GetString("openai_model"),
			EnableFallback: v.GetBool("openai_enable_fallback"),
		},
		YouTube: YouTubeConfig{
			APIKey: v.GetString("youtube_api_key"),
		},
		Pexels: PexelsConfig{
			APIKey:  v.GetString("pexels_api_key"),
			BaseURL: strings.TrimRight(v.GetString("pexels_base_url"), "/"),
		},
		Insights: InsightsConfig{
			TextTimeout:  v.GetDuration("insights_text_timeout"),
			VideoTimeout: v.GetDuration("insights_video_timeout"),
			ImageTimeout: v.GetDuration("insights_image_timeout"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("log_level"),
			File:  v.GetString("log_file"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if err := c.Postgres.validate(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Insights.TextTimeout <= 0 || c.Insights.VideoTimeout <= 0 || c.Insights.ImageTimeout <= 0 {
		return fmt.Errorf("insight provider timeouts must be positive")
	}
	return nil
}

func (p PostgresConfig) validate() error {
	if p.URL == "" && p.Host == "" {
		return fmt.Errorf("DATABASE_URL or POSTGRES_HOST is required")
	}
	return nil
}

// DSN returns the lib/pq connection string for the configured database.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
