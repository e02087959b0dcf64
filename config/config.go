package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tinymachines/sovereign/llmhook"
	"github.com/tinymachines/sovereign/vm"
)

// Config represents the interpreter's on-disk configuration.
type Config struct {
	// VM bounds the resources a single execution may consume.
	VM vm.Config `toml:"vm"`

	// Hooks configures the LLMGEN/EVOLVE hook client.
	Hooks HooksConfig `toml:"hooks"`
}

// HooksConfig mirrors llmhook.Config with TOML-friendly field names and a
// plain-seconds duration so it round-trips cleanly through encoding/toml,
// which doesn't natively marshal time.Duration.
type HooksConfig struct {
	Enabled            bool    `toml:"enabled"`
	Host               string  `toml:"host"`
	Model              string  `toml:"model"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
	MaxRetries         int     `toml:"max_retries"`
	RetryDelaySeconds  int     `toml:"retry_delay_seconds"`
	ConnectionPoolSize int     `toml:"connection_pool_size"`
	Temperature        float64 `toml:"temperature"`
	MaxTokens          int     `toml:"max_tokens"`
}

// ToLLMHookConfig converts h into the llmhook package's runtime Config.
func (h HooksConfig) ToLLMHookConfig() llmhook.Config {
	return llmhook.Config{
		Host:               h.Host,
		Model:              h.Model,
		Timeout:            time.Duration(h.TimeoutSeconds) * time.Second,
		MaxRetries:         h.MaxRetries,
		RetryDelay:         time.Duration(h.RetryDelaySeconds) * time.Second,
		ConnectionPoolSize: h.ConnectionPoolSize,
		Temperature:        h.Temperature,
		MaxTokens:          h.MaxTokens,
	}
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{
		VM: vm.DefaultConfig(),
		Hooks: HooksConfig{
			Enabled:            false,
			Host:               "http://localhost:11434",
			Model:              "llama3",
			TimeoutSeconds:     30,
			MaxRetries:         3,
			RetryDelaySeconds:  1,
			ConnectionPoolSize: 10,
			Temperature:        0.7,
			MaxTokens:          2048,
		},
	}
	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "sovereign")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "sovereign")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "sovereign", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "sovereign", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file, returning the
// defaults unchanged if the file doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
