package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"carelink-compliance-core/internal/infrastructure/database/mongodb"
	"carelink-compliance-core/internal/infrastructure/database/postgres"
	"carelink-compliance-core/internal/infrastructure/database/redis"

	"github.com/joho/godotenv"
)

// Environment variables only, optionally seeded from a .env file.

// Config is the unified application configuration
type Config struct {
	Environment  string
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	MongoDB      MongoConfig
	Sweep        SweepConfig
	Notification NotificationConfig
	Logging      LoggingConfig
	CORS         CORSConfig
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"`
	Port         int           `env:"SERVER_PORT"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`
}

// DatabaseConfig PostgreSQL configuration
type DatabaseConfig struct {
	Host           string        `env:"DB_HOST"`
	Port           int           `env:"DB_PORT"`
	Database       string        `env:"DB_NAME"`
	Username       string        `env:"DB_USERNAME"`
	Password       string        `env:"DB_PASSWORD"`
	MaxConnections int           `env:"DB_MAX_CONNECTIONS"`
	ConnectionTTL  time.Duration `env:"DB_CONNECTION_TTL"`
	QueryTimeout   time.Duration `env:"DB_QUERY_TIMEOUT"`
	SSLMode        string        `env:"DB_SSL_MODE"`
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST"`
	Port        int           `env:"REDIS_PORT"`
	Password    string        `env:"REDIS_PASSWORD"`
	Database    int           `env:"REDIS_DATABASE"`
	MaxRetries  int           `env:"REDIS_MAX_RETRIES"`
	PoolSize    int           `env:"REDIS_POOL_SIZE"`
	PoolTimeout time.Duration `env:"REDIS_POOL_TIMEOUT"`
}

// MongoConfig MongoDB configuration (sweep report archive)
type MongoConfig struct {
	Enabled        bool          `env:"MONGODB_ENABLED"`
	URI            string        `env:"MONGODB_URI"`
	Database       string        `env:"MONGODB_DATABASE"`
	ConnectTimeout time.Duration `env:"MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize    int           `env:"MONGODB_MAX_POOL_SIZE"`
}

// SweepConfig expiry sweep scheduling and guard configuration
type SweepConfig struct {
	Enabled          bool          `env:"SWEEP_ENABLED"`
	HourOfDay        int           `env:"SWEEP_HOUR_OF_DAY"`
	MinuteOfHour     int           `env:"SWEEP_MINUTE_OF_HOUR"`
	LeaseTTL         time.Duration `env:"SWEEP_LEASE_TTL"`
	ExpiringSoonDays int           `env:"SWEEP_EXPIRING_SOON_DAYS"`
	CategoryTimeout  time.Duration `env:"SWEEP_CATEGORY_TIMEOUT"`
}

// NotificationConfig provider/admin notification configuration
type NotificationConfig struct {
	AdminEmails   []string `env:"NOTIFICATION_ADMIN_EMAILS"`
	FromAddress   string   `env:"NOTIFICATION_FROM_ADDRESS"`
	PortalBaseURL string   `env:"NOTIFICATION_PORTAL_BASE_URL"`
}

// LoggingConfig logging configuration
type LoggingConfig struct {
	Level string `env:"LOG_LEVEL"`
}

// CORSConfig CORS configuration for the operational API
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"`
	MaxAge           int      `env:"CORS_MAX_AGE"`
}

// NewConfig loads the configuration from environment variables only
func NewConfig() (*Config, error) {
	// Load the .env file (optional)
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("[CONFIG] Warning: .env file not found: %v\n", err)
	}

	config := &Config{}

	config.Environment = getEnv("APP_ENV", "development")

	config.Server = ServerConfig{
		Host:         getEnv("SERVER_HOST", "localhost"),
		Port:         getEnvInt("SERVER_PORT", 4100),
		ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30) * time.Second,
		WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30) * time.Second,
	}

	config.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnvInt("DB_PORT", 5432),
		Database:       getEnv("DB_NAME", "carelink"),
		Username:       getEnv("DB_USERNAME", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 25),
		ConnectionTTL:  getEnvDuration("DB_CONNECTION_TTL", 300) * time.Second,
		QueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 30) * time.Second,
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
	}

	config.Redis = RedisConfig{
		Host:        getEnv("REDIS_HOST", "localhost"),
		Port:        getEnvInt("REDIS_PORT", 6379),
		Password:    getEnv("REDIS_PASSWORD", ""),
		Database:    getEnvInt("REDIS_DATABASE", 0),
		MaxRetries:  getEnvInt("REDIS_MAX_RETRIES", 3),
		PoolSize:    getEnvInt("REDIS_POOL_SIZE", 10),
		PoolTimeout: getEnvDuration("REDIS_POOL_TIMEOUT", 30) * time.Second,
	}

	config.MongoDB = MongoConfig{
		Enabled:        getEnvBool("MONGODB_ENABLED", true),
		URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGODB_DATABASE", "carelink_compliance"),
		ConnectTimeout: getEnvDuration("MONGODB_CONNECT_TIMEOUT", 10) * time.Second,
		MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 100),
	}

	config.Sweep = SweepConfig{
		Enabled:          getEnvBool("SWEEP_ENABLED", true),
		HourOfDay:        getEnvInt("SWEEP_HOUR_OF_DAY", 1),
		MinuteOfHour:     getEnvInt("SWEEP_MINUTE_OF_HOUR", 0),
		LeaseTTL:         getEnvDuration("SWEEP_LEASE_TTL", 1800) * time.Second,
		ExpiringSoonDays: getEnvInt("SWEEP_EXPIRING_SOON_DAYS", 30),
		CategoryTimeout:  getEnvDuration("SWEEP_CATEGORY_TIMEOUT", 60) * time.Second,
	}

	config.Notification = NotificationConfig{
		AdminEmails:   getEnvStringSlice("NOTIFICATION_ADMIN_EMAILS", []string{}),
		FromAddress:   getEnv("NOTIFICATION_FROM_ADDRESS", "compliance@carelink.africa"),
		PortalBaseURL: getEnv("NOTIFICATION_PORTAL_BASE_URL", "http://localhost:3000"),
	}

	config.Logging = LoggingConfig{
		Level: getEnv("LOG_LEVEL", "debug"),
	}

	config.CORS = CORSConfig{
		AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		MaxAge:           getEnvInt("CORS_MAX_AGE", 3600),
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Printf("[CONFIG] ✅ Configuration loaded for environment: %s\n", config.Environment)
	return config, nil
}

// Getters kept for call-site symmetry with sub-config consumers
func (c *Config) GetDatabase() DatabaseConfig         { return c.Database }
func (c *Config) GetRedis() RedisConfig               { return c.Redis }
func (c *Config) GetMongoDB() MongoConfig             { return c.MongoDB }
func (c *Config) GetServer() ServerConfig             { return c.Server }
func (c *Config) GetSweep() SweepConfig               { return c.Sweep }
func (c *Config) GetNotification() NotificationConfig { return c.Notification }
func (c *Config) GetLogging() LoggingConfig           { return c.Logging }
func (c *Config) GetCORS() CORSConfig                 { return c.CORS }

// DatabaseConfigProvider groups the datastore sub-configs for infrastructure providers
type DatabaseConfigProvider struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MongoDB  MongoConfig
}

func NewDatabaseConfigProvider(config *Config) *DatabaseConfigProvider {
	return &DatabaseConfigProvider{
		Database: config.Database,
		Redis:    config.Redis,
		MongoDB:  config.MongoDB,
	}
}

// Converters to infrastructure-level configurations

func NewPostgresConfig(config *DatabaseConfigProvider) *postgres.DatabaseConfig {
	return &postgres.DatabaseConfig{
		Host:     config.Database.Host,
		Port:     config.Database.Port,
		Database: config.Database.Database,
		Username: config.Database.Username,
		Password: config.Database.Password,
		SSLMode:  config.Database.SSLMode,
	}
}

func NewRedisConfig(config *DatabaseConfigProvider) *redis.RedisConfig {
	return &redis.RedisConfig{
		Host:     config.Redis.Host,
		Port:     config.Redis.Port,
		Password: config.Redis.Password,
		Database: config.Redis.Database,
	}
}

func NewMongoConfig(config *DatabaseConfigProvider) *mongodb.MongoConfig {
	return &mongodb.MongoConfig{
		Enabled:  config.MongoDB.Enabled,
		URI:      config.MongoDB.URI,
		Database: config.MongoDB.Database,
	}
}

// Environment variable parsing helpers

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds))
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	}
	return defaultValue
}

// validateConfig validates the configuration per environment
func validateConfig(config *Config) error {
	env := config.Environment

	if env != "development" && env != "docker" {
		return fmt.Errorf("unsupported environment: %s (use 'development' or 'docker')", env)
	}

	missingVars := []string{}

	// Critical variables in docker mode (production/staging)
	if env == "docker" {
		if config.Database.Password == "" {
			missingVars = append(missingVars, "DB_PASSWORD")
		}
		if len(config.Notification.AdminEmails) == 0 {
			missingVars = append(missingVars, "NOTIFICATION_ADMIN_EMAILS")
		}

		if config.Redis.Password == "" {
			fmt.Printf("[CONFIG] ⚠️ REDIS_PASSWORD not set for docker environment\n")
		}
	}

	if config.Sweep.HourOfDay < 0 || config.Sweep.HourOfDay > 23 {
		return fmt.Errorf("invalid SWEEP_HOUR_OF_DAY: %d", config.Sweep.HourOfDay)
	}
	if config.Sweep.MinuteOfHour < 0 || config.Sweep.MinuteOfHour > 59 {
		return fmt.Errorf("invalid SWEEP_MINUTE_OF_HOUR: %d", config.Sweep.MinuteOfHour)
	}
	if config.Sweep.ExpiringSoonDays <= 0 {
		return fmt.Errorf("invalid SWEEP_EXPIRING_SOON_DAYS: %d", config.Sweep.ExpiringSoonDays)
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing critical variables for docker environment: %v", missingVars)
	}

	return nil
}
