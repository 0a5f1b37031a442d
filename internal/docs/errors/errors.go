package errors

// Package errors provides sentinel errors for content discovery.

import "errors"

var (
	// ErrContentRootNotFound indicates the configured content directory does not exist.
	ErrContentRootNotFound = errors.New("content directory not found")

	// ErrDocsDirWalkFailed indicates filesystem traversal of the content directory failed.
	ErrDocsDirWalkFailed = errors.New("content directory walk failed")

	// ErrInvalidPattern indicates an include or exclude glob is malformed.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrNoDocsFound indicates discovery matched no documentation sources.
	ErrNoDocsFound = errors.New("no documentation files found")

	// ErrInvalidRelativePath indicates calculating a path relative to the content root failed.
	ErrInvalidRelativePath = errors.New("invalid relative path calculation")
)
