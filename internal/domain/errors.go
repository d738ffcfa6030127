package domain

import (
	"errors"
	"fmt"
)

// Base error kinds (sentinel errors).
var (
	ErrInputInvalid      = errors.New("invalid input")
	ErrNoMatch           = errors.New("no match")
	ErrPatternRejected   = errors.New("pattern rejected")
	ErrStalePrecondition = errors.New("stale precondition")
	ErrProjection        = errors.New("projection failed")
	ErrInactive          = errors.New("assist inactive")
)

// Specific errors.
var (
	ErrTooFewPoints        = fmt.Errorf("too few points: %w", ErrInputInvalid)
	ErrZeroLengthEdge      = fmt.Errorf("zero length edge: %w", ErrInputInvalid)
	ErrInvalidCentroid     = fmt.Errorf("centroid: %w", ErrInputInvalid)
	ErrDegenerateSegment   = fmt.Errorf("neighbour centroids coincide: %w", ErrInputInvalid)
	ErrNoContainingPolygon = fmt.Errorf("no polygon contains point: %w", ErrNoMatch)
	ErrNoNeighbors         = fmt.Errorf("not enough named neighbours: %w", ErrNoMatch)
	ErrCharsetMismatch     = fmt.Errorf("name charset: %w", ErrPatternRejected)
	ErrNoTrailingDigits    = fmt.Errorf("name has no trailing number: %w", ErrPatternRejected)
	ErrPrefixMismatch      = fmt.Errorf("name prefixes differ: %w", ErrPatternRejected)
	ErrUnsupportedGap      = fmt.Errorf("number gap: %w", ErrPatternRejected)
	ErrSpatialOrder        = fmt.Errorf("target position: %w", ErrPatternRejected)
	ErrFeatureVanished     = fmt.Errorf("feature no longer exists: %w", ErrStalePrecondition)
	ErrFeatureModified     = fmt.Errorf("feature was modified: %w", ErrStalePrecondition)
	ErrNothingToChange     = fmt.Errorf("nothing to change: %w", ErrNoMatch)
)

// IsRecoverable reports whether err is an expected outcome of an assist
// action that callers degrade gracefully from. Projection and
// infrastructure failures are not recoverable.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrProjection) {
		return false
	}
	return errors.Is(err, ErrInputInvalid) ||
		errors.Is(err, ErrNoMatch) ||
		errors.Is(err, ErrPatternRejected) ||
		errors.Is(err, ErrStalePrecondition) ||
		errors.Is(err, ErrInactive)
}

// ProjectionError represents a failed conversion between geodetic and
// planar coordinates.
type ProjectionError struct {
	Op    string // to_planar or to_geodetic
	Point string // Offending point
	Err   error  // Underlying error
}

// Error implements the error interface.
func (e *ProjectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("projection error during %s of %s: %v", e.Op, e.Point, e.Err)
	}
	return fmt.Sprintf("projection error during %s of %s", e.Op, e.Point)
}

// Unwrap returns the projection sentinel so errors.Is(err, ErrProjection) holds.
func (e *ProjectionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProjection, e.Err}
	}
	return []error{ErrProjection}
}

// CommandError represents a command the store refused to apply.
type CommandError struct {
	Command string // Command description
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string // Configuration field
	Message string // Error message
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error type.
func (e *ConfigError) Unwrap() error {
	return ErrInputInvalid
}

// ValidationError represents a detailed validation error.
type ValidationError struct {
	Field      string      // Field that failed validation
	Value      interface{} // The invalid value
	Constraint string      // The constraint that was violated
	Message    string      // Human-readable message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v, constraint: %s)",
		e.Field, e.Message, e.Value, e.Constraint)
}

// Unwrap returns the underlying error type.
func (e *ValidationError) Unwrap() error {
	return ErrInputInvalid
}
