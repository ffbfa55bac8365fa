package internal

import "fmt"

// GenerationExhaustedError means no unique token was found within the
// attempt budget. Operators must treat this as a configuration problem:
// the token space is too small for the live session population.
type GenerationExhaustedError struct {
	Attempts int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate unique token after %d attempts", e.Attempts)
}

// PersistenceError means a durable write of the session store failed.
// The in-memory mutation that triggered the write has been rolled back.
type PersistenceError struct {
	Op  string // "create", "update", "delete", "sweep"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// OwnerLimitError means an owner already holds the maximum number of
// live sessions allowed by configuration.
type OwnerLimitError struct {
	OwnerID string
	Limit   int
}

func (e *OwnerLimitError) Error() string {
	return fmt.Sprintf("owner %s already holds %d live sessions", e.OwnerID, e.Limit)
}

// StorageError represents errors accessing the session store file.
type StorageError struct {
	Path string
	Op   string // "open", "read", "parse", "write"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
