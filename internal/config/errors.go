package config

import "errors"

// Sentinel kinds for configuration errors. ErrInvalidConfig marks a config
// that loaded but cannot run a sync; ErrLoadConfig marks a failed load of a
// layer (file or env).
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
