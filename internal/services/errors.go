package services

import "errors"

// Dataset service errors
var (
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrUnsupportedFormat  = errors.New("unsupported dataset format")
	ErrInvalidInput       = errors.New("invalid input")
)
