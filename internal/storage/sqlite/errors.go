package sqlite

import "errors"

// Common errors returned by storage operations
var (
	ErrNotFound      = errors.New("record not found")
	ErrStorageClosed = errors.New("storage is closed")
)
