// Package config provides error definitions for configuration management
package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidAppName        = errors.New("invalid application name")
	ErrInvalidEnvironment    = errors.New("invalid environment")
	ErrInvalidLogLevel       = errors.New("invalid log level")
	ErrInvalidMailboxSize    = errors.New("invalid mailbox size")
	ErrInvalidLimit          = errors.New("invalid limit value")
	ErrInvalidPollBudget     = errors.New("invalid poll budget")
	ErrInvalidBatchSize      = errors.New("invalid view batch size")
	ErrInvalidStorageBackend = errors.New("invalid storage backend")
	ErrMissingStorageDir     = errors.New("file storage requires a directory")
	ErrMissingStorageDSN     = errors.New("postgres storage requires a dsn")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("configuration parse error")
	ErrConfigWatchError   = errors.New("configuration watch error")
)
