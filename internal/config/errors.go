package config

import "errors"

var (
	// ErrEmptyDatabasePath is returned when database_path is empty.
	ErrEmptyDatabasePath = errors.New("database_path cannot be empty")
	// ErrEmptyIndicesDir is returned when indices_dir is empty.
	ErrEmptyIndicesDir = errors.New("indices_dir cannot be empty")
	// ErrInvalidTimeout is returned when request_timeout is not greater than 0.
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrInvalidQueryLimit is returned when query_limit is not greater than 0.
	ErrInvalidQueryLimit = errors.New("query_limit must be greater than 0")
)
