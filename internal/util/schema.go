package util

import (
	"fmt"
	"strings"

	"github.com/astraeum/oraclecore/core"
)

// ValidationError reports a puzzle skeleton field that violates the minimal
// schema, with enough detail for logging. It unwraps to
// core.ErrValidationFailed so callers can branch on recoverability.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Unwrap ties the error into the engine taxonomy.
func (e *ValidationError) Unwrap() error { return core.ErrValidationFailed }

// ValidateSkeleton checks the minimal puzzle schema: type, description and
// solution are mandatory non-empty strings, and hints, when present, contain
// no blank entries.
func ValidateSkeleton(s core.PuzzleSkeleton) error {
	if strings.TrimSpace(s.Type) == "" {
		return &ValidationError{Field: "puzzle_type", Value: s.Type, Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(s.Description) == "" {
		return &ValidationError{Field: "description", Value: s.Description, Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(s.Solution) == "" {
		return &ValidationError{Field: "solution", Value: s.Solution, Message: "must be a non-empty string"}
	}
	for i, h := range s.Hints {
		if strings.TrimSpace(h) == "" {
			return &ValidationError{Field: fmt.Sprintf("hints[%d]", i), Value: h, Message: "hint entries must be non-empty"}
		}
	}
	return nil
}
