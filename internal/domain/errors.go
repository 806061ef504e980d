package domain

import "errors"

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrEmptyQuery is the early-return sentinel for blank queries; it is
	// not a failure
	ErrEmptyQuery = errors.New("empty query")
	// ErrMappingLoad indicates the canonical topic mapping could not be read
	ErrMappingLoad = errors.New("compatibility mapping load failed")
)
