// Package errors provides the campaign orchestration error taxonomy and its
// mapping onto BPMN job errors.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Taxonomy
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"
	ErrCodeCollaboratorTimeout     ErrorCode = "COLLABORATOR_TIMEOUT"
	ErrCodeMalformedOutput         ErrorCode = "MALFORMED_OUTPUT"
	ErrCodeSchemaValidation        ErrorCode = "SCHEMA_VALIDATION_FAILURE"
	ErrCodeDeadlineExceeded        ErrorCode = "DEADLINE_EXCEEDED"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Worker packages wrap these in their own
// task-specific sentinels so the orchestrator can classify any step failure.
var (
	ErrCollaboratorUnavailable = stderrors.New(string(ErrCodeCollaboratorUnavailable))
	ErrCollaboratorTimeout     = stderrors.New(string(ErrCodeCollaboratorTimeout))
	ErrMalformedOutput         = stderrors.New(string(ErrCodeMalformedOutput))
	ErrSchemaValidation        = stderrors.New(string(ErrCodeSchemaValidation))
	ErrDeadlineExceeded        = stderrors.New(string(ErrCodeDeadlineExceeded))
)

var sentinelByCode = map[ErrorCode]error{
	ErrCodeCollaboratorUnavailable: ErrCollaboratorUnavailable,
	ErrCodeCollaboratorTimeout:     ErrCollaboratorTimeout,
	ErrCodeMalformedOutput:         ErrMalformedOutput,
	ErrCodeSchemaValidation:        ErrSchemaValidation,
	ErrCodeDeadlineExceeded:        ErrDeadlineExceeded,
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the taxonomy sentinel so errors.Is works on StandardError.
func (e *StandardError) Unwrap() error {
	return sentinelByCode[e.Code]
}

// ==========================
// 2. Constructors
// ==========================

func newStandard(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCollaboratorUnavailableError(service string, err error) *StandardError {
	e := newStandard(ErrCodeCollaboratorUnavailable, "Collaborator unavailable", errString(err))
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

func NewCollaboratorTimeoutError(service string, timeout time.Duration) *StandardError {
	e := newStandard(ErrCodeCollaboratorTimeout, "Collaborator call timed out",
		fmt.Sprintf("service: %s, timeout: %s", service, timeout))
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

func NewMalformedOutputError(service, details string) *StandardError {
	e := newStandard(ErrCodeMalformedOutput, "Collaborator returned malformed output", details)
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

func NewSchemaValidationError(violations []string) *StandardError {
	e := newStandard(ErrCodeSchemaValidation, "Campaign document failed schema validation",
		strings.Join(violations, "; "))
	e.Metadata = map[string]interface{}{"violationCount": len(violations)}
	return e
}

func NewDeadlineExceededError(stage string) *StandardError {
	return newStandard(ErrCodeDeadlineExceeded, "Request budget exhausted", fmt.Sprintf("stage: %s", stage))
}

// NewValidationFailedError is the only error the HTTP boundary reports as 400.
func NewValidationFailedError(details string) *StandardError {
	return newStandard(ErrCodeValidationFailed, "Invalid campaign request", details)
}

func NewInternalError(err error) *StandardError {
	return newStandard(ErrCodeInternal, "Internal error", errString(err))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Classification
// ==========================

// Classify maps any step error onto the taxonomy. Bare context deadline errors
// count as a collaborator timeout; the orchestrator decides separately whether
// the outer budget was the cause.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}

	switch {
	case stderrors.Is(err, ErrDeadlineExceeded):
		return ErrCodeDeadlineExceeded
	case stderrors.Is(err, ErrCollaboratorTimeout), stderrors.Is(err, context.DeadlineExceeded):
		return ErrCodeCollaboratorTimeout
	case stderrors.Is(err, ErrSchemaValidation):
		return ErrCodeSchemaValidation
	case stderrors.Is(err, ErrMalformedOutput):
		return ErrCodeMalformedOutput
	case stderrors.Is(err, ErrCollaboratorUnavailable), stderrors.Is(err, context.Canceled):
		return ErrCodeCollaboratorUnavailable
	default:
		return ErrCodeInternal
	}
}

// Reason is the short form used in progress events, e.g. tier1_failed:timeout.
func Reason(code ErrorCode) string {
	switch code {
	case ErrCodeCollaboratorUnavailable:
		return "unavailable"
	case ErrCodeCollaboratorTimeout:
		return "timeout"
	case ErrCodeMalformedOutput:
		return "malformed_output"
	case ErrCodeSchemaValidation:
		return "schema_validation_failed"
	case ErrCodeDeadlineExceeded:
		return "deadline_exceeded"
	case ErrCodeValidationFailed:
		return "invalid_request"
	default:
		return "internal_error"
	}
}

// ==========================
// 4. BPMN Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// GetRetryCount is zero for every code: the orchestration core never retries
// a collaborator, and a redelivered generate-campaign job would start a new
// request with its own budget.
func GetRetryCount(code ErrorCode) int {
	return 0
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: false,
		Retries:   GetRetryCount(stdErr.Code),
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"errorCategory":     GetErrorCategory(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeCollaboratorUnavailable, ErrCodeCollaboratorTimeout, ErrCodeMalformedOutput:
		return "COLLABORATOR"
	case ErrCodeSchemaValidation, ErrCodeValidationFailed:
		return "VALIDATION"
	case ErrCodeDeadlineExceeded:
		return "BUDGET"
	default:
		return "OTHER"
	}
}
