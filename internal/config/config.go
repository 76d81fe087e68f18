// Package config loads application configuration for the Canvass survey
// assistant. Configuration lives at ~/.canvass/config.yaml and can be
// overridden by CANVASS_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Survey  SurveyConfig  `mapstructure:"survey" yaml:"survey"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Speech  SpeechConfig  `mapstructure:"speech" yaml:"speech"`
	Results ResultsConfig `mapstructure:"results" yaml:"results"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SurveyConfig describes where the survey definition comes from.
type SurveyConfig struct {
	// File is the path to the line-oriented survey definition.
	File string `mapstructure:"file" yaml:"file"`
}

// LLMConfig contains configuration for language-model providers.
type LLMConfig struct {
	// DefaultProvider specifies which provider to use (e.g., "ollama", "openai").
	DefaultProvider string `mapstructure:"default_provider" yaml:"default_provider"`
	// Providers maps provider names to their specific configuration.
	Providers map[string]ProviderSettings `mapstructure:"providers" yaml:"providers"`
}

// ProviderSettings contains configuration for a specific LLM provider.
type ProviderSettings struct {
	// Endpoint is the API endpoint URL (primarily for local providers like Ollama).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	// APIKey is the authentication key for the provider.
	APIKey string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	// Model is the specific model to use with this provider.
	Model string `mapstructure:"model" yaml:"model,omitempty"`
	// MaxTokens caps response length.
	MaxTokens int `mapstructure:"max_tokens" yaml:"max_tokens,omitempty"`
	// Temperature controls sampling randomness.
	Temperature float64 `mapstructure:"temperature" yaml:"temperature,omitempty"`
	// TimeoutSec is the per-call timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// SpeechConfig contains configuration for the optional speech services.
type SpeechConfig struct {
	// Enabled controls whether voice input/output is offered in the UI.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// STTEndpoint is the speech-to-text transcription endpoint.
	STTEndpoint string `mapstructure:"stt_endpoint" yaml:"stt_endpoint,omitempty"`
	// TTSEndpoint is the text-to-speech synthesis endpoint.
	TTSEndpoint string `mapstructure:"tts_endpoint" yaml:"tts_endpoint,omitempty"`
	// Voice is the synthesis voice identifier.
	Voice string `mapstructure:"voice" yaml:"voice,omitempty"`
	// TimeoutSec is the per-call timeout in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec,omitempty"`
}

// ResultsConfig describes where completed survey results are stored.
type ResultsConfig struct {
	// DataDir is the directory holding the results database.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// LoggingConfig contains configuration for application logging.
type LoggingConfig struct {
	// Level is the log level ("debug", "info", "warn", "error").
	Level string `mapstructure:"level" yaml:"level"`
	// File is the path to the log file. Empty logs to stderr only.
	File string `mapstructure:"file" yaml:"file,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".canvass")

	return &Config{
		Survey: SurveyConfig{
			File: filepath.Join(dataDir, "survey.txt"),
		},
		LLM: LLMConfig{
			DefaultProvider: "ollama",
			Providers: map[string]ProviderSettings{
				"ollama": {
					Endpoint:    "http://127.0.0.1:11434",
					Model:       "llama3",
					Temperature: 0.2,
				},
				"openai": {
					Endpoint:    "https://api.openai.com/v1",
					Model:       "gpt-4o-mini",
					Temperature: 0.2,
				},
			},
		},
		Speech: SpeechConfig{
			Enabled:     false,
			STTEndpoint: "http://127.0.0.1:8880/v1/audio/transcriptions",
			TTSEndpoint: "http://127.0.0.1:8880/v1/audio/speech",
			Voice:       "alloy",
			TimeoutSec:  60,
		},
		Results: ResultsConfig{
			DataDir: dataDir,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "canvass.log"),
		},
	}
}

// Load reads configuration from the default location, creating a default
// config file on first run.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".canvass", "config.yaml")
	return LoadFromPath(configPath)
}

// LoadFromPath reads configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	path = expandPath(path)

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfigFile(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment overrides, e.g. CANVASS_LLM_DEFAULT_PROVIDER.
	v.SetEnvPrefix("CANVASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Survey.File = expandPath(cfg.Survey.File)
	cfg.Results.DataDir = expandPath(cfg.Results.DataDir)
	cfg.Logging.File = expandPath(cfg.Logging.File)

	return &cfg, nil
}

// writeConfigFile persists cfg as YAML at path.
func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// expandPath expands a leading tilde to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
