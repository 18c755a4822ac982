package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Provider string        `yaml:"provider,omitempty"`
	API      APIConfig     `yaml:"api"`
	Model    ModelConfig   `yaml:"model"`
	Dataset  DatasetConfig `yaml:"dataset"`
	Paths    PathsConfig   `yaml:"paths"`
}

type APIConfig struct {
	BaseURL    string        `yaml:"base_url,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"max_retries,omitempty"`
	RetryDelay time.Duration `yaml:"retry_delay,omitempty"`
}

type ModelConfig struct {
	Name      string `yaml:"name,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

type DatasetConfig struct {
	Name string `yaml:"name,omitempty"`
	Path string `yaml:"path,omitempty"`
}

type PathsConfig struct {
	Checkpoint string `yaml:"checkpoint,omitempty"`
	ReportDir  string `yaml:"report_dir,omitempty"`
	LogDir     string `yaml:"log_dir,omitempty"`
	HistoryDB  string `yaml:"history_db,omitempty"`
}

// Load reads the YAML config and applies defaults. A `.env` file in the
// working directory is loaded first so env-sourced credentials work the same
// way in development and under a supervisor. The file may be absent when the
// default path is used; an explicitly given path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := strings.TrimSpace(path) != "" && path != DefaultPath
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = "grok"
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 15 * time.Minute
	}
	if c.API.MaxRetries <= 0 {
		c.API.MaxRetries = 3
	}
	if c.API.RetryDelay <= 0 {
		c.API.RetryDelay = 5 * time.Second
	}
	if c.Model.MaxTokens <= 0 {
		c.Model.MaxTokens = 100000
	}
	if strings.TrimSpace(c.Dataset.Name) == "" {
		c.Dataset.Name = "gpqa_main"
	}
	if strings.TrimSpace(c.Dataset.Path) == "" {
		c.Dataset.Path = "data/gpqa_main.jsonl"
	}
	if strings.TrimSpace(c.Paths.Checkpoint) == "" {
		c.Paths.Checkpoint = "results/gpqa_checkpoint.json"
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = "results"
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = "logs"
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = "results/history.db"
	}
}

// APIKey resolves the credential for a provider from the environment. A
// missing credential is the one fatal startup condition: the runner must not
// begin processing without it.
func APIKey(provider string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "grok", "xai":
		if v := strings.TrimSpace(os.Getenv("XAI_API_KEY")); v != "" {
			return v, nil
		}
		return "", errors.New("config: XAI_API_KEY is not set")
	case "claude", "anthropic":
		if v := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")); v != "" {
			return v, nil
		}
		if v := strings.TrimSpace(os.Getenv("ANTHROPIC_AUTH_TOKEN")); v != "" {
			return v, nil
		}
		return "", errors.New("config: ANTHROPIC_API_KEY is not set")
	default:
		return "", fmt.Errorf("config: unknown provider %q", provider)
	}
}
