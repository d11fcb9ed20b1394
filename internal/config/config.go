package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Lark      LarkConfig      `mapstructure:"lark"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Directory DirectoryConfig `mapstructure:"directory"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Purge     PurgeConfig     `mapstructure:"purge"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LarkConfig holds Lark API configuration
type LarkConfig struct {
	AppID      string        `mapstructure:"app_id"`
	AppSecret  string        `mapstructure:"app_secret"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// TrackerConfig holds external tracker configuration. An empty token
// disables mirroring and reconciliation.
type TrackerConfig struct {
	Token     string        `mapstructure:"token"`
	ProjectID string        `mapstructure:"project_id"`
	BaseURL   string        `mapstructure:"base_url"`
	Interval  time.Duration `mapstructure:"interval"`
}

// DirectoryConfig holds the staff roster configuration
type DirectoryConfig struct {
	Path           string `mapstructure:"path"`
	OperatorID     string `mapstructure:"operator_id"`
	OperatorChatID string `mapstructure:"operator_chat_id"`
	RelayChatID    string `mapstructure:"relay_chat_id"`
}

// OpenAIConfig holds OpenAI API configuration. An empty key disables
// task text improvement.
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// PurgeConfig controls removal of old terminal tasks
type PurgeConfig struct {
	Grace time.Duration `mapstructure:"grace"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	viper.SetDefault("database.path", "data/taskline.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	viper.SetDefault("lark.api_timeout", 30*time.Second)

	viper.SetDefault("tracker.base_url", "https://api.todoist.com/rest/v2")
	viper.SetDefault("tracker.interval", 5*time.Minute)

	viper.SetDefault("directory.path", "configs/departments.json")

	viper.SetDefault("openai.model", "gpt-4o-mini")

	viper.SetDefault("purge.grace", 30*24*time.Hour)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("tracker.token", "TRACKER_TOKEN")
	viper.BindEnv("tracker.project_id", "TRACKER_PROJECT_ID")
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("directory.operator_id", "OPERATOR_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}

	if c.Directory.Path == "" {
		return fmt.Errorf("directory.path is required")
	}
	if c.Directory.OperatorID == "" {
		return fmt.Errorf("directory.operator_id is required")
	}

	if c.Tracker.Token != "" && c.Tracker.ProjectID == "" {
		return fmt.Errorf("tracker.project_id is required when tracker.token is set")
	}

	return nil
}
