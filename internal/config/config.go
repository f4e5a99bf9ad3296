package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read on top of the YAML file.
const (
	EnvDatabaseURL  = "DATABASE_URL"
	EnvDatabaseName = "DATABASE_NAME"
	EnvPort         = "PORT"

	EnvTelegramBotToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID   = "TELEGRAM_CHAT_ID"
)

const DefaultPort = 8000

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port int        `yaml:"port"`
	CORS CORSConfig `yaml:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"` // seconds
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	Name           string `yaml:"name"`
	ConnectTimeout int    `yaml:"connect_timeout"` // seconds
}

// Configured reports whether both the connection string and database name are present.
func (c DatabaseConfig) Configured() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Name) != ""
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type TelegramConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChatID    int64  `yaml:"chat_id"`
	QueueSize int    `yaml:"queue_size"`
}

// Enabled reports whether lead notifications should be sent.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// Incomplete reports a bot token without a chat to send to. Notifications stay off.
func (c TelegramConfig) Incomplete() bool {
	return c.BotToken != "" && c.ChatID == 0
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// Load reads .env, the optional YAML file at configPath and environment overrides.
// Missing files are not an error: every setting has a default.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var config Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			// Предварительная замена переменных окружения в YAML
			expandedData := []byte(os.ExpandEnv(string(data)))
			if err := yaml.Unmarshal(expandedData, &config); err != nil {
				return nil, fmt.Errorf("parse %s: %w", configPath, err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDatabaseURL); ok {
		c.Database.URL = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvDatabaseName); ok {
		c.Database.Name = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		c.HTTP.Port = port
	}
	if v, ok := os.LookupEnv(EnvTelegramBotToken); ok {
		c.Telegram.BotToken = strings.TrimSpace(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelegramChatID)); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTelegramChatID, v, err)
		}
		c.Telegram.ChatID = chatID
	}
	return nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == c.HTTP.Port {
		return errors.New("prometheus port must differ from http port")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Output)) {
	case "", "stdout", "stderr":
	case "file":
		if c.Logging.FilePath == "" {
			return errors.New("logging.output=file requires logging.file_path")
		}
	default:
		return fmt.Errorf("unknown logging output %q", c.Logging.Output)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "armar-api"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}
	if len(c.HTTP.CORS.AllowedOrigins) == 0 {
		c.HTTP.CORS.AllowedOrigins = []string{"*"}
		c.HTTP.CORS.AllowCredentials = true
	}
	if len(c.HTTP.CORS.AllowedMethods) == 0 {
		c.HTTP.CORS.AllowedMethods = []string{"*"}
	}
	if len(c.HTTP.CORS.AllowedHeaders) == 0 {
		c.HTTP.CORS.AllowedHeaders = []string{"*"}
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Telegram.QueueSize == 0 {
		c.Telegram.QueueSize = 100
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
