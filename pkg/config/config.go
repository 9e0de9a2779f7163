package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database  DatabaseConfig
	Twitter   TwitterConfig
	Watchlist WatchlistConfig
	Redis     RedisConfig
	Server    ServerConfig
	Export    ExportConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds the sqlite store configuration
type DatabaseConfig struct {
	Path string
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	BearerToken string
	BaseURL     string
	PageSize    int
	MaxTweets   int
}

// WatchlistConfig holds the category rule file configuration
type WatchlistConfig struct {
	Path       string
	ArchiveDir string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// ExportConfig holds JSON dump configuration
type ExportConfig struct {
	Path string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled           bool
	JaegerURL         string
	PrometheusEnabled bool
	PrometheusPort    int
	ServiceName       string
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("RTT")
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.rtt-backend")
	viper.AddConfigPath("/etc/rtt-backend")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; this is OK if we have env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Path: getString("database_path", "db/tweets.db"),
		},
		Twitter: TwitterConfig{
			BearerToken: getString("twitter_bearer_token", ""),
			BaseURL:     getString("twitter_base_url", "https://api.twitter.com"),
			PageSize:    getInt("page_size", 100),
			MaxTweets:   getInt("max_tweets", 3200),
		},
		Watchlist: WatchlistConfig{
			Path:       getString("watchlist_path", "assets/watchlist.yml"),
			ArchiveDir: getString("archive_dir", "assets"),
		},
		Redis: RedisConfig{
			URL:     getString("redis_url", ""),
			Enabled: getString("redis_url", "") != "",
		},
		Server: ServerConfig{
			Port: getInt("http_server_port", 8080),
			Host: getString("http_server_host", "0.0.0.0"),
		},
		Export: ExportConfig{
			Path: getString("export_path", "db.json"),
		},
		Logging: LoggingConfig{
			Level:  getString("log_level", "INFO"),
			Format: getString("log_format", "json"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           getBool("telemetry_enabled", false),
			JaegerURL:         getString("jaeger_url", ""),
			PrometheusEnabled: getBool("prometheus_enabled", false),
			PrometheusPort:    getInt("prometheus_port", 9090),
			ServiceName:       getString("service_name", "rtt-backend"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_path", "db/tweets.db")
	viper.SetDefault("twitter_base_url", "https://api.twitter.com")
	viper.SetDefault("page_size", 100)
	viper.SetDefault("max_tweets", 3200)
	viper.SetDefault("watchlist_path", "assets/watchlist.yml")
	viper.SetDefault("archive_dir", "assets")
	viper.SetDefault("http_server_port", 8080)
	viper.SetDefault("http_server_host", "0.0.0.0")
	viper.SetDefault("export_path", "db.json")
	viper.SetDefault("log_level", "INFO")
	viper.SetDefault("log_format", "json")
	viper.SetDefault("telemetry_enabled", false)
	viper.SetDefault("prometheus_enabled", false)
	viper.SetDefault("prometheus_port", 9090)
	viper.SetDefault("service_name", "rtt-backend")
}

func getString(key, defaultValue string) string {
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	// Also check environment variable directly
	if val := os.Getenv("RTT_" + toEnvKey(key)); val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	if val := os.Getenv("RTT_" + toEnvKey(key)); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	if val := os.Getenv("RTT_" + toEnvKey(key)); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}

func toEnvKey(key string) string {
	// Convert snake_case to UPPER_SNAKE_CASE
	result := ""
	for _, r := range key {
		if r == '-' || r == '_' {
			result += "_"
		} else if r >= 'a' && r <= 'z' {
			result += string(r - 'a' + 'A')
		} else {
			result += string(r)
		}
	}
	return result
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.Watchlist.Path == "" {
		return fmt.Errorf("watchlist_path is required")
	}
	if c.Twitter.BaseURL == "" {
		return fmt.Errorf("twitter_base_url is required")
	}
	if c.Twitter.PageSize <= 0 || c.Twitter.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100")
	}
	if c.Twitter.MaxTweets <= 0 || c.Twitter.MaxTweets > 3200 {
		return fmt.Errorf("max_tweets must be between 1 and 3200")
	}
	return nil
}
