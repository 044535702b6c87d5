// Package config loads service configuration from a yaml file and the
// environment, with environment variables taking precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Settings     `mapstructure:"s3"`
	AI       AIConfig       `mapstructure:"ai"`
	Search   SearchConfig   `mapstructure:"search"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type S3Settings struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Bucket  string `mapstructure:"bucket"`
}

type AIConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	ChatModel           string `mapstructure:"chat_model"`
	VisionModel         string `mapstructure:"vision_model"`
	EmbeddingModel      string `mapstructure:"embedding_model"`
	EmbeddingDimensions int    `mapstructure:"embedding_dimensions"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
}

type SearchConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file (or ./config.yaml when empty)
// plus the environment. A missing config file is fine; a missing AI key is
// not.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// sensitive values always come from the environment
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("ai.api_key", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "snapdish")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.bucket", "snapdish-submissions")

	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.chat_model", "gpt-4o-mini")
	v.SetDefault("ai.vision_model", "gpt-4o-mini")
	v.SetDefault("ai.embedding_model", "text-embedding-3-large")
	v.SetDefault("ai.embedding_dimensions", 3072)
	v.SetDefault("ai.timeout_seconds", 60)

	v.SetDefault("search.default_limit", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the values no deployment can run without.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key (OPENAI_API_KEY) is required")
	}
	if c.AI.EmbeddingModel == "" {
		return fmt.Errorf("ai.embedding_model is required")
	}
	if c.AI.EmbeddingDimensions <= 0 {
		return fmt.Errorf("ai.embedding_dimensions must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	return nil
}
