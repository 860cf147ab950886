package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrFlowNotFound  = errors.New("booking flow not found")
	ErrFlowCompleted = errors.New("booking flow already completed")
)

// ValidationError is a field-scoped problem the user can fix by editing the form.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field error found in a single submission.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when no errors were collected.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

type CalculationErrorCode string

const (
	CalculationNoTierEnabled      CalculationErrorCode = "NO_TIER_ENABLED"
	CalculationInvalidRange       CalculationErrorCode = "INVALID_RANGE"
	CalculationUncoveredRemainder CalculationErrorCode = "UNCOVERED_REMAINDER"
)

// CalculationError means a quote is unavailable for the given inputs.
type CalculationError struct {
	Code    CalculationErrorCode `json:"code"`
	Message string               `json:"message"`
}

func (e *CalculationError) Error() string {
	return "quote unavailable: " + e.Message
}

// MissingContextError reports that a step ran without the identifiers an earlier step produces.
type MissingContextError struct {
	Missing      string
	RequiredStep FlowStep
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("missing %s: complete the %s step first", e.Missing, e.RequiredStep.Label())
}

// RemoteCallError wraps a failed collaborator call. Retrying means resubmitting the step.
type RemoteCallError struct {
	Operation string
	Err       error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}
