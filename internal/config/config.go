// Package config loads the application configuration from a YAML file,
// environment variables and an optional .env file, with sane defaults for
// every key. The result is cached process-wide; Reset clears the cache so
// unit tests stay independent of load order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Content Content `mapstructure:"content"`
	Output  Output  `mapstructure:"output"`
	Logging Logging `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Content holds generation configuration: persona, locale and pacing.
type Content struct {
	Language      string  `mapstructure:"language"`
	Region        string  `mapstructure:"region"`
	Version       string  `mapstructure:"version"`
	Archetype     string  `mapstructure:"archetype"`
	Dimension     string  `mapstructure:"dimension"`
	CoinsPerItem  int     `mapstructure:"coins_per_item"`
	MaxInsights   int     `mapstructure:"max_insights"`
	ContentCards  int     `mapstructure:"content_cards"`
	QuizQuestions int     `mapstructure:"quiz_questions"`
	ChunkSize     int     `mapstructure:"chunk_size"`
	ChunkOverlap  int     `mapstructure:"chunk_overlap"`
}

// Output holds rendering configuration
type Output struct {
	Directory string `mapstructure:"directory"`
	Pretty    bool   `mapstructure:"pretty"`
}

// Logging holds logging configuration
type Logging struct {
	Level string `mapstructure:"level"`
}

var globalConfig *Config

// Load loads the configuration from file, environment and defaults. The
// result is cached; Reset clears the cache.
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".microlearn")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration so the next Load starts fresh.
func Reset() {
	globalConfig = nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".microlearn")

	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.max_tokens", 2000)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("content.language", "pt-BR")
	viper.SetDefault("content.region", "BR")
	viper.SetDefault("content.version", "1.0")
	viper.SetDefault("content.archetype", "sage")
	viper.SetDefault("content.dimension", "mentalHealth")
	viper.SetDefault("content.coins_per_item", 5)
	viper.SetDefault("content.max_insights", 8)
	viper.SetDefault("content.content_cards", 3)
	viper.SetDefault("content.quiz_questions", 2)
	viper.SetDefault("content.chunk_size", 4000)
	viper.SetDefault("content.chunk_overlap", 200)

	viper.SetDefault("output.directory", "packages")
	viper.SetDefault("output.pretty", true)

	viper.SetDefault("logging.level", "info")
}

// validate rejects configurations the pipeline cannot run with.
func validate(config *Config) error {
	if config.Content.ContentCards < 1 {
		return fmt.Errorf("content.content_cards must be at least 1, got %d", config.Content.ContentCards)
	}
	if config.Content.QuizQuestions < 0 {
		return fmt.Errorf("content.quiz_questions must not be negative, got %d", config.Content.QuizQuestions)
	}
	if config.Content.MaxInsights < 1 {
		return fmt.Errorf("content.max_insights must be at least 1, got %d", config.Content.MaxInsights)
	}
	return nil
}
