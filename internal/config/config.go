// Package config loads the service configuration from a YAML file, with
// defaults that bring the whole stack up on SQLite without any file at all.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the full service configuration
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Port    int    `yaml:"port"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Database struct {
		Dialect string `yaml:"dialect"`
		DSN     string `yaml:"dsn"`
	} `yaml:"database"`

	LLM struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"llm"`

	RL struct {
		Alpha     float64 `yaml:"alpha"`
		Gamma     float64 `yaml:"gamma"`
		Epsilon   float64 `yaml:"epsilon"`
		StatePath string  `yaml:"state_path"`
	} `yaml:"rl"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8080

	config.Metrics.Enabled = true
	config.Metrics.Port = 9090
	config.Metrics.Path = "/metrics"

	config.Database.Dialect = "sqlite3"
	config.Database.DSN = "tiffin.db"

	config.LLM.Provider = "ollama"
	config.LLM.Model = "mistral:latest"
	config.LLM.BaseURL = "http://localhost:11434"

	config.RL.Alpha = 0.1
	config.RL.Gamma = 0.9
	config.RL.Epsilon = 0.1
	config.RL.StatePath = "rl_state.json"

	return config
}

// Load reads the configuration file at path, applying defaults for any
// missing sections. A missing file is not an error; the defaults are used.
func Load(path string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No configuration file at %s, using defaults", path)
			return config, nil
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Keys never belong in the file in production setups.
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		config.LLM.APIKey = key
	}

	return config, nil
}
