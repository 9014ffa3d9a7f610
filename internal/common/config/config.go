// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Queue         QueueConfig        `mapstructure:"queue"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Store         StoreConfig        `mapstructure:"store"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// QueueConfig holds settings for the SQS event queue.
type QueueConfig struct {
	URL               string `mapstructure:"url"`
	Region            string `mapstructure:"region"`
	WaitTimeSeconds   int    `mapstructure:"wait_time_seconds"`
	VisibilityTimeout int    `mapstructure:"visibility_timeout"` // seconds
	HandlerTimeout    int    `mapstructure:"handler_timeout"`    // milliseconds, per message
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig holds settings for the notification store.
type StoreConfig struct {
	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

type DynamoDBConfig struct {
	Table   string `mapstructure:"table"`
	Region  string `mapstructure:"region"`
	TTLDays int    `mapstructure:"ttl_days"`
}

// NotificationConfig holds rendering settings and the dedup guard toggle.
type NotificationConfig struct {
	ServiceBaseURL string `mapstructure:"service_base_url"`
	ImageBaseURL   string `mapstructure:"image_base_url"`

	// Dedup is an opt-in guard against duplicate rows from queue
	// redelivery. Off by default: the upstream contract is at-least-once
	// and duplicate notifications are accepted.
	Dedup DedupConfig `mapstructure:"dedup"`
}

type DedupConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	WindowHours int  `mapstructure:"window_hours"`
}

type MetricsConfig struct {
	ListenAddress string `mapstructure:"listen_address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
