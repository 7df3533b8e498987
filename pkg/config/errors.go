package config

import "errors"

var (
	ErrTokenRequired = errors.New("SF_TOKEN environment variable is required")
	ErrRealmRequired = errors.New("realm must not be empty")
)
