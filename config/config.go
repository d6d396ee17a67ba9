package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	BrightData BrightDataConfig
	Filter     FilterConfig
	TextGen    TextGenConfig
	Venues     VenuesConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	PublicBaseURL  string   `mapstructure:"public_base_url"`
}

// BrightDataConfig holds scraping backend configuration
type BrightDataConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	TriggerURL      string        `mapstructure:"trigger_url"`
	SnapshotBaseURL string        `mapstructure:"snapshot_base_url"`
	SubmitTimeout   time.Duration `mapstructure:"submit_timeout"`
	SnapshotTimeout time.Duration `mapstructure:"snapshot_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollMaxAttempts int           `mapstructure:"poll_max_attempts"`
}

// FilterConfig holds the default filter criteria applied when a request
// leaves them unset
type FilterConfig struct {
	MinRating float64 `mapstructure:"min_rating"`
	MaxPrice  float64 `mapstructure:"max_price"`
	TopLimit  int     `mapstructure:"top_limit"`
}

// TextGenConfig holds the text-generation collaborator configuration
type TextGenConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// VenuesConfig holds the business-listing search configuration
type VenuesConfig struct {
	APIKey string `mapstructure:"api_key"`
	Query  string `mapstructure:"query"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/prodscout/")

	v.SetEnvPrefix("PRODSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.public_base_url", "http://localhost:8080")

	// Bright Data defaults: keyword discovery trigger + snapshot retrieval
	v.SetDefault("brightdata.trigger_url",
		"https://api.brightdata.com/datasets/v3/trigger?dataset_id=gd_l7q7dkf244hwjntr0&notify=false&include_errors=true&type=discover_new&discover_by=keyword")
	v.SetDefault("brightdata.snapshot_base_url", "https://api.brightdata.com/datasets/v3/snapshot")
	v.SetDefault("brightdata.submit_timeout", "120s")
	v.SetDefault("brightdata.snapshot_timeout", "300s")
	v.SetDefault("brightdata.poll_interval", "5s")
	v.SetDefault("brightdata.poll_max_attempts", 30)

	// Filter defaults
	v.SetDefault("filter.min_rating", 4.0)
	v.SetDefault("filter.max_price", 100.0)
	v.SetDefault("filter.top_limit", 5)

	// Collaborator defaults
	v.SetDefault("textgen.model", "gemini-2.0-flash")
	v.SetDefault("venues.query", "hardware store")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Filter.MinRating < 0 || config.Filter.MinRating > 5 {
		return fmt.Errorf("filter.min_rating must be in [0, 5], got: %v", config.Filter.MinRating)
	}
	if config.Filter.MaxPrice <= 0 {
		return fmt.Errorf("filter.max_price must be positive, got: %v", config.Filter.MaxPrice)
	}
	if config.Filter.TopLimit < 1 || config.Filter.TopLimit > 50 {
		return fmt.Errorf("filter.top_limit must be in [1, 50], got: %d", config.Filter.TopLimit)
	}
	if config.BrightData.PollMaxAttempts < 1 {
		return fmt.Errorf("brightdata.poll_max_attempts must be at least 1, got: %d", config.BrightData.PollMaxAttempts)
	}
	if config.BrightData.PollInterval <= 0 {
		return fmt.Errorf("brightdata.poll_interval must be positive, got: %v", config.BrightData.PollInterval)
	}

	return nil
}
