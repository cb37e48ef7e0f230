// Package config loads process configuration: environment variables via a
// .env file, and an optional YAML agent config with environment expansion.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvConfig holds environment-sourced settings.
type EnvConfig struct {
	// LLM provider selection and credentials
	LLMProvider  string
	GeminiAPIKey string
	GoogleAPIKey string
	OpenAIAPIKey string
	LLMModel     string
	LLMTimeout   time.Duration

	// Server ports
	APIPort int
	WSPort  int

	// Paths
	MemoryPath string
	ConfigPath string

	// Logging
	LogLevel string
}

// LoadEnv loads a .env file when present and reads the agent's environment
// variables, applying defaults.
func LoadEnv() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		LLMProvider:  getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		LLMModel:     getEnv("LLM_MODEL", ""),
		MemoryPath:   getEnv("VOXA_MEMORY_PATH", "voxa_memory.json"),
		ConfigPath:   getEnv("VOXA_CONFIG", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	cfg.APIPort = getEnvInt("API_PORT", 8080)
	cfg.WSPort = getEnvInt("WS_PORT", 8085)
	cfg.LLMTimeout = time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second
	return cfg, nil
}

// AppOverride adds or replaces one app in the directory.
type AppOverride struct {
	Name    string   `yaml:"name" json:"name"`
	Package string   `yaml:"package" json:"package"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// ExecutorConfig tunes the action executor.
type ExecutorConfig struct {
	SafetyCeiling   int `yaml:"safety_ceiling,omitempty" json:"safety_ceiling,omitempty"`
	DefaultDelayMS  int `yaml:"default_delay_ms,omitempty" json:"default_delay_ms,omitempty"`
	CooldownSeconds int `yaml:"cooldown_seconds,omitempty" json:"cooldown_seconds,omitempty"`
}

// ContactEntry seeds the contact store.
type ContactEntry struct {
	Name  string `yaml:"name" json:"name"`
	Phone string `yaml:"phone" json:"phone"`
}

// AgentConfig is the optional YAML configuration.
type AgentConfig struct {
	Apps     []AppOverride  `yaml:"apps" json:"apps,omitempty"`
	Contacts []ContactEntry `yaml:"contacts" json:"contacts,omitempty"`
	Executor ExecutorConfig `yaml:"executor" json:"executor"`
}

// LoadAgentConfig reads and parses the YAML config at configPath, expanding
// ${VAR} references from the environment first. An empty path returns an
// empty config rather than an error.
func LoadAgentConfig(configPath string) (*AgentConfig, error) {
	if configPath == "" {
		return &AgentConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	configStr := expandEnvVars(string(data))

	var config AgentConfig
	if err := yaml.Unmarshal([]byte(configStr), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateAgentConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}
