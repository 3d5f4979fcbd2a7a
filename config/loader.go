// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"./configs",
			"/etc/socialmesh",
		},
		envPrefix:     "SOCIALMESH",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the default configuration
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var format ConfigFormat
	switch ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}
	return l.finish(config)
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, err
	}
	return l.finish(config)
}

// AutoLoad automatically discovers and loads configuration. If no
// config file is found the defaults apply, still honoring environment
// overrides.
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, _, err := l.findConfigFile()
	if err != nil {
		if err == ErrConfigFileNotFound {
			return l.finish(&Config{})
		}
		return nil, err
	}
	return l.LoadFromFile(configFile)
}

// finish merges defaults, applies environment overrides, and validates.
func (l *Loader) finish(config *Config) (*Config, error) {
	defaultConfig := l.defaultConfig
	if defaultConfig == nil {
		defaultConfig = DefaultConfig()
	}
	config = l.mergeConfig(defaultConfig, config)

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, ConfigFormat, error) {
	filenames := []string{
		"socialmesh.yaml", "socialmesh.yml",
		"config.yaml", "config.yml",
		"socialmesh.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err == nil {
				ext := strings.ToLower(filepath.Ext(filename))
				var format ConfigFormat
				switch ext {
				case ".yaml", ".yml":
					format = FormatYAML
				case ".json":
					format = FormatJSON
				default:
					continue
				}
				return fullPath, format, nil
			}
		}
	}

	return "", "", ErrConfigFileNotFound
}

// parseConfig parses configuration data based on format
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := &Config{}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	return config, nil
}

// mergeConfig fills zero-valued fields of config from defaults
func (l *Loader) mergeConfig(defaults, config *Config) *Config {
	merged := *config

	if merged.App.Name == "" {
		merged.App.Name = defaults.App.Name
	}
	if merged.App.Version == "" {
		merged.App.Version = defaults.App.Version
	}
	if merged.App.Environment == "" {
		merged.App.Environment = defaults.App.Environment
	}
	if merged.Log.Level == "" {
		merged.Log.Level = defaults.Log.Level
	}
	if merged.Log.Format == "" {
		merged.Log.Format = defaults.Log.Format
	}
	if merged.Actor.MailboxSize == 0 {
		merged.Actor.MailboxSize = defaults.Actor.MailboxSize
	}
	if merged.Actor.ProcessTimeout == 0 {
		merged.Actor.ProcessTimeout = defaults.Actor.ProcessTimeout
	}
	if merged.Actor.ShutdownTimeout == 0 {
		merged.Actor.ShutdownTimeout = defaults.Actor.ShutdownTimeout
	}
	if merged.Actor.FanoutSweep == 0 {
		merged.Actor.FanoutSweep = defaults.Actor.FanoutSweep
	}
	if merged.Limits.MaxComments == 0 {
		merged.Limits.MaxComments = defaults.Limits.MaxComments
	}
	if merged.Limits.MaxChatMessages == 0 {
		merged.Limits.MaxChatMessages = defaults.Limits.MaxChatMessages
	}
	if merged.Limits.RegistryCapacity == 0 {
		merged.Limits.RegistryCapacity = defaults.Limits.RegistryCapacity
	}
	if merged.Limits.IndexShards == 0 {
		merged.Limits.IndexShards = defaults.Limits.IndexShards
	}
	if merged.Poll.IterWait == 0 {
		merged.Poll.IterWait = defaults.Poll.IterWait
	}
	if merged.Poll.MaxWait == 0 {
		merged.Poll.MaxWait = defaults.Poll.MaxWait
	}
	if merged.View.BatchSize == 0 {
		merged.View.BatchSize = defaults.View.BatchSize
	}
	if merged.Storage.Backend == "" {
		merged.Storage.Backend = defaults.Storage.Backend
	}

	return &merged
}

// loadFromEnv loads configuration overrides from environment variables
func (l *Loader) loadFromEnv(config *Config) error {
	if val := os.Getenv(l.envPrefix + "_APP_NAME"); val != "" {
		config.App.Name = val
	}
	if val := os.Getenv(l.envPrefix + "_APP_ENVIRONMENT"); val != "" {
		config.App.Environment = Environment(val)
	}
	if val := os.Getenv(l.envPrefix + "_APP_DEBUG"); val != "" {
		config.App.Debug = strings.ToLower(val) == "true"
	}
	if val := os.Getenv(l.envPrefix + "_LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(val)
	}
	if val := os.Getenv(l.envPrefix + "_LOG_FORMAT"); val != "" {
		config.Log.Format = val
	}
	if val := os.Getenv(l.envPrefix + "_ACTOR_MAILBOX_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.Actor.MailboxSize = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_ACTOR_PROCESS_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Actor.ProcessTimeout = d
		}
	}
	if val := os.Getenv(l.envPrefix + "_POLL_ITER_WAIT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Poll.IterWait = d
		}
	}
	if val := os.Getenv(l.envPrefix + "_POLL_MAX_WAIT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			config.Poll.MaxWait = d
		}
	}
	if val := os.Getenv(l.envPrefix + "_VIEW_BATCH_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			config.View.BatchSize = n
		}
	}
	if val := os.Getenv(l.envPrefix + "_STORAGE_BACKEND"); val != "" {
		config.Storage.Backend = StorageBackend(val)
	}
	if val := os.Getenv(l.envPrefix + "_STORAGE_DIR"); val != "" {
		config.Storage.Dir = val
	}
	if val := os.Getenv(l.envPrefix + "_STORAGE_DSN"); val != "" {
		config.Storage.DSN = val
	}
	return nil
}
