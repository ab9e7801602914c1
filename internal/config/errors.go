package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrIndentInvalid      = errors.New("indent must be between 0 and 16")
	ErrLockTimeoutInvalid = errors.New("lock_timeout must be a positive duration")
	ErrIDDPathEmpty       = errors.New("idd path cannot be empty")
)
