package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	EmailProviderSendGrid = "sendgrid"
	EmailProviderStub     = "stub"
)

// Переменные окружения, перекрывающие секреты из файла
const (
	EnvDBPassword     = "SMC_DB_PASSWORD"
	EnvSendGridAPIKey = "SMC_SENDGRID_API_KEY"
	EnvRedisPassword  = "SMC_REDIS_PASSWORD"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса планирования
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Storage       StorageConfig       `toml:"storage"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Redis         RedisConfig         `toml:"redis"`
	Email         EmailConfig         `toml:"email"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host                string `toml:"host"`
	Port                int    `toml:"port"`
	User                string `toml:"user"`
	Password            string `toml:"password"`
	DBName              string `toml:"dbname"`
	SSLMode             string `toml:"sslmode"`
	MaxOpenConns        int    `toml:"max_open_conns"`
	MaxIdleConns        int    `toml:"max_idle_conns"`
	ConnMaxLifetime     int    `toml:"conn_max_lifetime"` // секунды
	SerializableRetries int    `toml:"serializable_retries"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL строка подключения для golang-migrate
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type StorageConfig struct {
	Driver   string `toml:"driver"`    // postgres | memory
	SeedFile string `toml:"seed_file"` // только для memory
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Enabled     bool   `toml:"enabled"`
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	HistorySize int    `toml:"history_size"`
}

type EmailConfig struct {
	Provider  string `toml:"provider"` // sendgrid | stub
	APIKey    string `toml:"api_key"`
	FromEmail string `toml:"from_email"`
	FromName  string `toml:"from_name"`
}

type NotificationsConfig struct {
	QueueSize      int `toml:"queue_size"`
	Workers        int `toml:"workers"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8083,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:                "localhost",
			Port:                5432,
			User:                "postgres",
			DBName:              "smc_scheduling",
			SSLMode:             "disable",
			MaxOpenConns:        25,
			MaxIdleConns:        5,
			ConnMaxLifetime:     300,
			SerializableRetries: 5,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-scheduling-service",
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			HistorySize: domain.DefaultHistorySize,
		},
		Email: EmailConfig{
			Provider: EmailProviderStub,
			FromName: "SMC",
		},
		Notifications: NotificationsConfig{
			QueueSize:      100,
			Workers:        2,
			TimeoutSeconds: 10,
		},
	}
}

// Load читает TOML файл поверх значений по умолчанию, применяет переменные окружения и проверяет результат
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDBPassword); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv(EnvSendGridAPIKey); ok {
		c.Email.APIKey = v
	}
	if v, ok := os.LookupEnv(EnvRedisPassword); ok {
		c.Redis.Password = v
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port out of range: %d", c.Server.HTTPPort))
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres driver")
		}
		if c.Database.SerializableRetries < 1 {
			problems = append(problems, "database.serializable_retries must be >= 1")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, c.Storage.Driver))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		problems = append(problems, "metrics.path must start with /")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		problems = append(problems, "redis.addr is required when redis is enabled")
	}

	switch c.Email.Provider {
	case EmailProviderStub:
	case EmailProviderSendGrid:
		if c.Email.APIKey == "" || c.Email.FromEmail == "" {
			problems = append(problems, "email.api_key and email.from_email are required for sendgrid")
		}
	default:
		problems = append(problems, fmt.Sprintf("email.provider must be %q or %q, got %q", EmailProviderSendGrid, EmailProviderStub, c.Email.Provider))
	}

	if c.Notifications.QueueSize <= 0 || c.Notifications.Workers <= 0 || c.Notifications.TimeoutSeconds <= 0 {
		problems = append(problems, "notifications.queue_size, workers and timeout_seconds must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
