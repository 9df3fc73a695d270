package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yukikurage/project-tracker-api/internal/constants"
)

type Config struct {
	DBDriver           string        `yaml:"db_driver"`
	DBHost             string        `yaml:"db_host"`
	DBPort             string        `yaml:"db_port"`
	DBUser             string        `yaml:"db_user"`
	DBPassword         string        `yaml:"db_password"`
	DBName             string        `yaml:"db_name"`
	DBPath             string        `yaml:"db_path"`
	RedisHost          string        `yaml:"redis_host"`
	RedisPort          string        `yaml:"redis_port"`
	SessionSecret      string        `yaml:"session_secret"`
	JWTSecret          string        `yaml:"jwt_secret"`
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl"`
	GinMode            string        `yaml:"gin_mode"`
	Port               string        `yaml:"port"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	OpenAIAPIKey       string        `yaml:"openai_api_key"`
	RecentProjectScope string        `yaml:"recent_project_scope"`
}

// Default returns the configuration used when neither a file nor the
// environment provides a value.
func Default() *Config {
	return &Config{
		DBDriver:           "mysql",
		DBHost:             "localhost",
		DBPort:             "3306",
		DBUser:             "projectuser",
		DBPassword:         "projectpassword",
		DBName:             "project_tracker",
		DBPath:             "project_tracker.db",
		RedisPort:          "6379",
		SessionSecret:      "default-secret-key-change-me",
		JWTSecret:          "default-jwt-secret-change-me",
		AccessTokenTTL:     15 * time.Minute,
		GinMode:            "debug",
		Port:               "8080",
		LogLevel:           "info",
		LogFormat:          "text",
		RecentProjectScope: constants.RecentScopeGlobal,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.RecentProjectScope = getEnv("RECENT_PROJECT_SCOPE", cfg.RecentProjectScope)

	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL %q: %w", ttl, err)
		}
		cfg.AccessTokenTTL = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DBDriver)
	}

	switch c.RecentProjectScope {
	case constants.RecentScopeGlobal, constants.RecentScopeUser:
	default:
		return fmt.Errorf("unsupported recent project scope %q", c.RecentProjectScope)
	}

	if c.AccessTokenTTL <= 0 {
		return errors.New("access token ttl must be positive")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt secret is required")
	}
	return nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys in the file keep the values already in c.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
