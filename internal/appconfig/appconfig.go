// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for provider HTTP requests.
	defaultRequestTimeout = 60 * time.Second
	// defaultShutdownTimeout is the default grace period for HTTP server shutdown.
	defaultShutdownTimeout = 10 * time.Second
	// defaultTemperature is the sampling temperature applied when a request does not override it.
	defaultTemperature = 0.7
	// defaultMaxTokens caps completion length when a request does not override it.
	defaultMaxTokens = 1000
	// defaultVerifyDelay is the pause between sequential provider calls in a verification run.
	defaultVerifyDelay = 1 * time.Second
)

// Config represents the top-level application configuration.
type Config struct {
	Server    ServerConfig              `json:"server"`
	Database  DatabaseConfig            `json:"database"`
	LLM       LLMConfig                 `json:"llm"`
	Providers map[string]ProviderConfig `json:"providers"`
	Verify    VerifyConfig              `json:"verify"`
	Debug     bool                      `json:"debug"`
	LogFile   string                    `json:"logFile,omitempty"`

	ConfigPath string `json:"-" mapstructure:"-"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address         string `json:"address"`
	ShutdownSeconds int    `json:"shutdownTimeout,omitempty"`
}

// DatabaseConfig holds the sqlite dictionary settings.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// LLMConfig gates and shapes all provider-backed behavior. Enabled is read
// once at startup and never mutated by requests.
type LLMConfig struct {
	Enabled        bool    `json:"enabled"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	MaxTokens      int     `json:"maxTokens,omitempty"`
	TimeoutSeconds int     `json:"timeout,omitempty"`
}

// ProviderConfig holds per-vendor connection settings. API keys are usually
// supplied through the environment rather than the config file.
type ProviderConfig struct {
	APIKey       string `json:"apiKey,omitempty"`
	BaseURL      string `json:"baseURL,omitempty"`
	DefaultModel string `json:"defaultModel,omitempty"`
}

// VerifyConfig shapes batch verification runs.
type VerifyConfig struct {
	DelaySeconds int    `json:"delaySeconds,omitempty"`
	MaxTests     int    `json:"maxTests,omitempty"`
	ResultsDir   string `json:"resultsDir,omitempty"`
}

// RequestTimeout returns the timeout duration for provider HTTP requests,
// falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.LLM.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the grace period allowed for HTTP server shutdown.
func (c Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownSeconds <= 0 {
		return defaultShutdownTimeout
	}
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}

// Temperature returns the configured sampling temperature or the default.
func (c Config) Temperature() float64 {
	if c.LLM.Temperature <= 0 {
		return defaultTemperature
	}
	return c.LLM.Temperature
}

// MaxTokens returns the configured completion cap or the default.
func (c Config) MaxTokens() int {
	if c.LLM.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.LLM.MaxTokens
}

// VerifyDelay returns the pause between sequential verification calls.
func (c Config) VerifyDelay() time.Duration {
	if c.Verify.DelaySeconds <= 0 {
		return defaultVerifyDelay
	}
	return time.Duration(c.Verify.DelaySeconds) * time.Second
}

// ResultsDir returns the directory verification reports are written to.
func (c Config) ResultsDir() string {
	if dir := strings.TrimSpace(c.Verify.ResultsDir); dir != "" {
		return dir
	}
	return "verify/results"
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "kosha.log"
}

// Provider returns the connection settings for the named provider. A missing
// entry yields a zero value so callers can still rely on environment keys.
func (c Config) Provider(name string) ProviderConfig {
	if c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}

// Load reads the application configuration from the specified path and
// overlays environment-supplied credentials.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	if strings.TrimSpace(config.Database.Path) == "" {
		return Config{}, errors.New("config must set database.path")
	}
	config.ConfigPath = path
	config.ApplyEnvironment()
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// ApplyEnvironment overlays provider credentials and endpoints from the
// process environment. Environment values win over file values so deployments
// can keep keys out of config files.
func (c *Config) ApplyEnvironment() {
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, keyVar := range map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"gemini":    "GEMINI_API_KEY",
	} {
		entry := c.Providers[name]
		if key := os.Getenv(keyVar); key != "" {
			entry.APIKey = key
		}
		c.Providers[name] = entry
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		entry := c.Providers["ollama"]
		entry.BaseURL = url
		c.Providers["ollama"] = entry
	}
	if addr := os.Getenv("KOSHA_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if path := os.Getenv("KOSHA_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if enabled := os.Getenv("KOSHA_LLM_ENABLED"); enabled != "" {
		c.LLM.Enabled = strings.EqualFold(enabled, "true") || enabled == "1"
	}
}
