// Package services implements the tri-state repository (memory blocks, style
// DNA, intent profiles, telemetry chunks) and the contract store on top of
// the embedded database.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an entity does not exist. Internal
	// callers that treat absence as a nullable result check for it with
	// errors.Is; the API boundary maps it to 404.
	ErrNotFound = errors.New("entity not found")
)

// ValidationError wraps field-specific validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UniquenessViolationError reports an attempt to save a second block with an
// already-claimed (session_id, artifact_id) pair.
type UniquenessViolationError struct {
	SessionID  string
	ArtifactID string
	ExistingID string
}

func (e *UniquenessViolationError) Error() string {
	return fmt.Sprintf("block for (session %s, artifact %s) already exists with id %s",
		e.SessionID, e.ArtifactID, e.ExistingID)
}

// IsUniquenessViolation reports whether err is a UniquenessViolationError.
func IsUniquenessViolation(err error) bool {
	var uv *UniquenessViolationError
	return errors.As(err, &uv)
}

// ChecksumMismatchError reports a StyleDNA whose stored vectors no longer
// hash to the stored checksum. The read hard-fails; the caller treats the
// record as corrupted.
type ChecksumMismatchError struct {
	ID       string
	Stored   string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("style dna %s failed checksum verification (stored %.12s, computed %.12s)",
		e.ID, e.Stored, e.Computed)
}

// IsChecksumMismatch reports whether err is a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}

// isUniqueConstraint detects the engine's UNIQUE constraint failure. The
// sqlite driver surfaces constraint violations as plain errors carrying the
// standard SQLite message text.
func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
