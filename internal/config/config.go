package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Logging configuration
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	// Google Books configuration (primary book source)
	GoogleBooks struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"google_books"`

	// Open Library configuration (fallback book source)
	OpenLibrary struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"open_library"`

	// Baserow configuration (destination store)
	Baserow struct {
		APIToken          string `yaml:"api_token"`
		BaseURL           string `yaml:"base_url"`
		DatabaseID        int64  `yaml:"database_id"`
		MediaTableID      int64  `yaml:"media_table_id"`
		CategoriesTableID int64  `yaml:"categories_table_id"`
	} `yaml:"baserow"`

	// LLM backend configuration
	LLM struct {
		Provider string `yaml:"provider"`
		OpenAI   struct {
			APIKey  string `yaml:"api_key"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"openai"`
		Anthropic struct {
			APIKey  string `yaml:"api_key"`
			Model   string `yaml:"model"`
			BaseURL string `yaml:"base_url"`
		} `yaml:"anthropic"`
		Ollama struct {
			BaseURL string `yaml:"base_url"`
			Model   string `yaml:"model"`
		} `yaml:"ollama"`
	} `yaml:"llm"`

	// Application settings
	App struct {
		Verbose             bool `yaml:"verbose"`
		MaxSearchResults    int  `yaml:"max_search_results"`
		MinSynopsisWords    int  `yaml:"min_synopsis_words"`
		TargetSynopsisWords int  `yaml:"target_synopsis_words"`
	} `yaml:"app"`
}

// Load loads configuration from a YAML file (if present) and environment
// variables. Priority: environment variables > config file > defaults.
func Load(configFile string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// Missing file is fine; environment variables may carry everything.
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// Unmarshal zeroes defaults for absent sections; restore them.
			cfg.applyDefaults()
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.GoogleBooks.BaseURL == "" {
		c.GoogleBooks.BaseURL = "https://www.googleapis.com/books/v1"
	}
	if c.OpenLibrary.BaseURL == "" {
		c.OpenLibrary.BaseURL = "https://openlibrary.org"
	}
	if c.Baserow.BaseURL == "" {
		c.Baserow.BaseURL = "https://api.baserow.io"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.OpenAI.BaseURL == "" {
		c.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.OpenAI.Model == "" {
		c.LLM.OpenAI.Model = "gpt-4o-mini"
	}
	if c.LLM.Anthropic.BaseURL == "" {
		c.LLM.Anthropic.BaseURL = "https://api.anthropic.com"
	}
	if c.LLM.Anthropic.Model == "" {
		c.LLM.Anthropic.Model = "claude-3-5-haiku-latest"
	}
	if c.LLM.Ollama.BaseURL == "" {
		c.LLM.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.LLM.Ollama.Model == "" {
		c.LLM.Ollama.Model = "llama3.1"
	}
	if c.App.MaxSearchResults == 0 {
		c.App.MaxSearchResults = 5
	}
	if c.App.MinSynopsisWords == 0 {
		c.App.MinSynopsisWords = 50
	}
	if c.App.TargetSynopsisWords == 0 {
		c.App.TargetSynopsisWords = 200
	}
}

// loadFromEnv overrides config values with environment variables
func (c *Config) loadFromEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("GOOGLE_BOOKS_API_KEY"); v != "" {
		c.GoogleBooks.APIKey = v
	}
	if v := os.Getenv("BASEROW_API_TOKEN"); v != "" {
		c.Baserow.APIToken = v
	}
	if v := os.Getenv("BASEROW_BASE_URL"); v != "" {
		c.Baserow.BaseURL = v
	}
	if v := getInt64Env("BASEROW_DATABASE_ID"); v > 0 {
		c.Baserow.DatabaseID = v
	}
	if v := getInt64Env("BASEROW_MEDIA_TABLE_ID"); v > 0 {
		c.Baserow.MediaTableID = v
	}
	if v := getInt64Env("BASEROW_CATEGORIES_TABLE_ID"); v > 0 {
		c.Baserow.CategoriesTableID = v
	}
	if v := os.Getenv("WCM_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.Anthropic.APIKey = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		c.LLM.Ollama.BaseURL = v
	}
	if verbose, set := os.LookupEnv("WCM_VERBOSE"); set {
		c.App.Verbose = strings.EqualFold(verbose, "true")
	}
	if v := getIntEnv("WCM_MAX_SEARCH_RESULTS"); v > 0 {
		c.App.MaxSearchResults = v
	}
}

func getIntEnv(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func getInt64Env(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks that the configuration is complete enough to run
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAI.APIKey == "" || strings.Contains(c.LLM.OpenAI.APIKey, "your_") {
			return fmt.Errorf("openai API key not configured")
		}
	case "anthropic":
		if c.LLM.Anthropic.APIKey == "" || strings.Contains(c.LLM.Anthropic.APIKey, "your_") {
			return fmt.Errorf("anthropic API key not configured")
		}
	case "ollama":
		// No API key needed for a local Ollama endpoint.
	default:
		return fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, ollama)", c.LLM.Provider)
	}

	if c.Baserow.APIToken == "" || strings.Contains(c.Baserow.APIToken, "your_") {
		return fmt.Errorf("baserow API token not configured")
	}
	if c.Baserow.MediaTableID == 0 {
		return fmt.Errorf("baserow media table ID not configured")
	}
	if c.Baserow.CategoriesTableID == 0 {
		return fmt.Errorf("baserow categories table ID not configured")
	}
	return nil
}
