package build

import "errors"

// Sentinel errors wrapped by classified build failures.
var (
	ErrUnreadableFiles = errors.New("docsite: unreadable source files")
	ErrWarnings        = errors.New("docsite: build produced diagnostics")
)
