package repo_errors

import "errors"

var (
	ErrNotFound = errors.New("entity not found")
	// ErrConflict means a guarded update matched zero rows: the entity left
	// the expected source state between read and write.
	ErrConflict = errors.New("entity state changed concurrently")
)
