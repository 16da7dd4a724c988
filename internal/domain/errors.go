package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptyInput        = errors.New("empty input")
	ErrInvalidExtraction = errors.New("invalid extraction")
	ErrProviderFailure   = errors.New("provider failure")
	ErrNoJobAvailable    = errors.New("no job available")
)
