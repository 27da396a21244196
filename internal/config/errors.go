package config

import (
	"errors"
)

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig wraps file and env provider failures.
	ErrLoadConfig = errors.New("load config failed")
	// ErrUnknownCacheBackend is joined with ErrInvalidConfig for an unrecognised cache_backend.
	ErrUnknownCacheBackend = errors.New("unknown cache backend")
)
