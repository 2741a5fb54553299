package config

import "errors"

var (
	// ErrConfigFileNotFound is returned when an explicit --config path does
	// not exist.
	ErrConfigFileNotFound = errors.New("config file not found")
	// ErrConfigFileRead is returned when an explicit --config path exists
	// but cannot be read.
	ErrConfigFileRead = errors.New("cannot read config file")
	// ErrConfigInvalid wraps a JSONC parse error or a validation failure
	// inside a specific config file.
	ErrConfigInvalid = errors.New("invalid config")
	// ErrDBPathEmpty is returned when a config file explicitly sets
	// db_path to "".
	ErrDBPathEmpty = errors.New("db_path must not be empty")
)
