package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func replacer() *strings.Replacer { return strings.NewReplacer(".", "_") }

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", host, s.Port)
}

// DBConfig holds the Postgres connection and pool settings.
type DBConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	Database        string
	Schema          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Schema,
	)
}

// CollaboratorConfig points at one downstream REST service.
type CollaboratorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DispatcherConfig bounds the background fulfillment pool.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
}

type Config struct {
	Server       ServerConfig
	DB           DBConfig
	Catalog      CollaboratorConfig
	Delivery     CollaboratorConfig
	Notification CollaboratorConfig
	Dispatcher   DispatcherConfig
	LogLevel     string
}

// Load reads configuration from SWIFTEATS_* environment variables over the
// defaults below. A .env file is honored via godotenv autoload in main.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("swifteats")
	v.SetEnvKeyReplacer(replacer())
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.username", "swifteats")
	v.SetDefault("db.password", "swifteats")
	v.SetDefault("db.database", "swifteats")
	v.SetDefault("db.schema", "public")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")

	v.SetDefault("catalog.base_url", "http://restaurant-service:80")
	v.SetDefault("catalog.timeout", "5s")
	v.SetDefault("delivery.base_url", "http://delivery-service:80")
	v.SetDefault("delivery.timeout", "5s")
	v.SetDefault("notification.base_url", "http://notification-service:80")
	v.SetDefault("notification.timeout", "3s")

	v.SetDefault("dispatcher.workers", 4)
	v.SetDefault("dispatcher.queue_size", 256)

	v.SetDefault("log_level", "info")

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetInt("server.port"),
		},
		DB: DBConfig{
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			Username:        v.GetString("db.username"),
			Password:        v.GetString("db.password"),
			Database:        v.GetString("db.database"),
			Schema:          v.GetString("db.schema"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Catalog: CollaboratorConfig{
			BaseURL: v.GetString("catalog.base_url"),
			Timeout: v.GetDuration("catalog.timeout"),
		},
		Delivery: CollaboratorConfig{
			BaseURL: v.GetString("delivery.base_url"),
			Timeout: v.GetDuration("delivery.timeout"),
		},
		Notification: CollaboratorConfig{
			BaseURL: v.GetString("notification.base_url"),
			Timeout: v.GetDuration("notification.timeout"),
		},
		Dispatcher: DispatcherConfig{
			Workers:   v.GetInt("dispatcher.workers"),
			QueueSize: v.GetInt("dispatcher.queue_size"),
		},
		LogLevel: v.GetString("log_level"),
	}

	if cfg.Dispatcher.Workers < 1 {
		return nil, fmt.Errorf("dispatcher workers must be >= 1, got %d", cfg.Dispatcher.Workers)
	}
	return cfg, nil
}
