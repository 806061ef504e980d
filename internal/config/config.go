package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for SurveyChat
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data"`
	Cache    CacheConfig    `mapstructure:"cache"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// DataConfig holds survey data file locations
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	MappingPath string `mapstructure:"mapping_path"`
	StartersDir string `mapstructure:"starters_dir"`
}

// CacheConfig holds thread cache and file memoization tuning
type CacheConfig struct {
	ThreadTTLHours int `mapstructure:"thread_ttl_hours"`
	FileMaxAgeMins int `mapstructure:"file_max_age_mins"`
	MaxBatchSize   int `mapstructure:"max_batch_size"`
}

// OpenAIConfig holds the external collaborator configuration: the semantic
// file matcher and the answer generator share one client.
type OpenAIConfig struct {
	APIKey       string  `mapstructure:"api_key"`
	BaseURL      string  `mapstructure:"base_url"`
	MatcherModel string  `mapstructure:"matcher_model"`
	AnswerModel  string  `mapstructure:"answer_model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("SURVEYCHAT")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", "./data/surveychat.db")

	v.SetDefault("data.dir", "./data/split_data")
	v.SetDefault("data.mapping_path", "./data/reference/canonical_topic_mapping.json")
	v.SetDefault("data.starters_dir", "./data/starters")

	v.SetDefault("cache.thread_ttl_hours", 24*90)
	v.SetDefault("cache.file_max_age_mins", 60)
	v.SetDefault("cache.max_batch_size", 8)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.matcher_model", "gpt-4o-mini")
	v.SetDefault("openai.answer_model", "gpt-4o-mini")
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.max_tokens", 1500)
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ThreadTTL returns the thread cache TTL as a duration.
func (c *Config) ThreadTTL() time.Duration {
	return time.Duration(c.Cache.ThreadTTLHours) * time.Hour
}

// FileMaxAge returns the file memoization window as a duration.
func (c *Config) FileMaxAge() time.Duration {
	return time.Duration(c.Cache.FileMaxAgeMins) * time.Minute
}
