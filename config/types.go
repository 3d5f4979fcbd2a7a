// Package config provides configuration management for the socialmesh daemon
package config

import (
	"time"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvStaging, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// StorageBackend selects where actor snapshots are persisted
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageFile     StorageBackend = "file"
	StoragePostgres StorageBackend = "postgres"
)

// IsValid checks if the storage backend is known
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageFile, StoragePostgres:
		return true
	default:
		return false
	}
}

// Config represents the complete socialmesh configuration
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Actor system configuration
	Actor ActorConfig `yaml:"actor" json:"actor"`

	// Domain bounds
	Limits LimitsConfig `yaml:"limits" json:"limits"`

	// Long-poll budgets
	Poll PollConfig `yaml:"poll" json:"poll"`

	// Read-side aggregation configuration
	View ViewConfig `yaml:"view" json:"view"`

	// Snapshot storage configuration
	Storage StorageConfig `yaml:"storage" json:"storage"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Application version
	Version string `yaml:"version" json:"version"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`

	// Debug mode
	Debug bool `yaml:"debug" json:"debug"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level
	Level LogLevel `yaml:"level" json:"level"`

	// Log format (json, console)
	Format string `yaml:"format" json:"format"`
}

// ActorConfig contains actor system configuration
type ActorConfig struct {
	// Default actor mailbox size
	MailboxSize int `yaml:"mailbox_size" json:"mailbox_size"`

	// Per-message processing timeout
	ProcessTimeout time.Duration `yaml:"process_timeout" json:"process_timeout"`

	// System shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// Interval between deferred fan-out drains
	FanoutSweep time.Duration `yaml:"fanout_sweep" json:"fanout_sweep"`
}

// LimitsConfig contains the domain bounds actors enforce
type LimitsConfig struct {
	// Maximum comments per post
	MaxComments int `yaml:"max_comments" json:"max_comments"`

	// Maximum messages per chat
	MaxChatMessages int `yaml:"max_chat_messages" json:"max_chat_messages"`

	// Timeline and chat-list registry capacity
	RegistryCapacity int `yaml:"registry_capacity" json:"registry_capacity"`

	// Number of user-index partitions
	IndexShards int `yaml:"index_shards" json:"index_shards"`
}

// PollConfig contains long-poll budgets
type PollConfig struct {
	// Sleep between empty fetches
	IterWait time.Duration `yaml:"iter_wait" json:"iter_wait"`

	// Total wall-clock budget per poll
	MaxWait time.Duration `yaml:"max_wait" json:"max_wait"`
}

// ViewConfig contains read-side aggregation configuration
type ViewConfig struct {
	// Maximum concurrent entity queries per batch
	BatchSize int `yaml:"batch_size" json:"batch_size"`
}

// StorageConfig contains snapshot storage configuration
type StorageConfig struct {
	// Backend: memory, file, or postgres
	Backend StorageBackend `yaml:"backend" json:"backend"`

	// Directory for the file backend
	Dir string `yaml:"dir" json:"dir"`

	// Connection string for the postgres backend
	DSN string `yaml:"dsn" json:"dsn"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "socialmesh",
			Version:     "1.0.0",
			Environment: EnvDevelopment,
			Debug:       false,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: "json",
		},
		Actor: ActorConfig{
			MailboxSize:     1000,
			ProcessTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			FanoutSweep:     5 * time.Second,
		},
		Limits: LimitsConfig{
			MaxComments:      2000,
			MaxChatMessages:  2000,
			RegistryCapacity: 500,
			IndexShards:      16,
		},
		Poll: PollConfig{
			IterWait: 250 * time.Millisecond,
			MaxWait:  25 * time.Second,
		},
		View: ViewConfig{
			BatchSize: 20,
		},
		Storage: StorageConfig{
			Backend: StorageMemory,
		},
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	if c.Actor.MailboxSize <= 0 {
		return ErrInvalidMailboxSize
	}
	if c.Limits.MaxComments <= 0 || c.Limits.MaxChatMessages <= 0 ||
		c.Limits.RegistryCapacity <= 0 || c.Limits.IndexShards <= 0 {
		return ErrInvalidLimit
	}
	if c.Poll.IterWait <= 0 || c.Poll.MaxWait <= 0 || c.Poll.IterWait > c.Poll.MaxWait {
		return ErrInvalidPollBudget
	}
	if c.View.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if !c.Storage.Backend.IsValid() {
		return ErrInvalidStorageBackend
	}
	if c.Storage.Backend == StorageFile && c.Storage.Dir == "" {
		return ErrMissingStorageDir
	}
	if c.Storage.Backend == StoragePostgres && c.Storage.DSN == "" {
		return ErrMissingStorageDSN
	}
	return nil
}
