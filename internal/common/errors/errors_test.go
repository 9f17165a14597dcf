package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Classification
// ==========================

func TestClassify(t *testing.T) {
	stepTimeout := fmt.Errorf("%w: youtube search", ErrCollaboratorTimeout)
	stepMalformed := fmt.Errorf("%w: not json", ErrMalformedOutput)

	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		reason string
	}{
		{"nil", nil, "", "internal_error"},
		{"unavailable constructor", NewCollaboratorUnavailableError("bedrock-agent", stderrors.New("dial tcp")), ErrCodeCollaboratorUnavailable, "unavailable"},
		{"timeout constructor", NewCollaboratorTimeoutError("bedrock-agent", 45*time.Second), ErrCodeCollaboratorTimeout, "timeout"},
		{"wrapped timeout sentinel", stepTimeout, ErrCodeCollaboratorTimeout, "timeout"},
		{"bare deadline", context.DeadlineExceeded, ErrCodeCollaboratorTimeout, "timeout"},
		{"cancelled", context.Canceled, ErrCodeCollaboratorUnavailable, "unavailable"},
		{"malformed", stepMalformed, ErrCodeMalformedOutput, "malformed_output"},
		{"schema", NewSchemaValidationError([]string{"campaigns: required"}), ErrCodeSchemaValidation, "schema_validation_failed"},
		{"outer budget", NewDeadlineExceededError("synthesis"), ErrCodeDeadlineExceeded, "deadline_exceeded"},
		{"invalid request", NewValidationFailedError("name missing"), ErrCodeValidationFailed, "invalid_request"},
		{"unknown", stderrors.New("boom"), ErrCodeInternal, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := Classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.reason, Reason(code))
		})
	}
}

func TestStandardError_UnwrapsToSentinel(t *testing.T) {
	err := fmt.Errorf("tier1: %w", NewMalformedOutputError("bedrock-agent", "empty response"))

	assert.True(t, stderrors.Is(err, ErrMalformedOutput))
	assert.False(t, stderrors.Is(err, ErrSchemaValidation))

	var stdErr *StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, "bedrock-agent", stdErr.Metadata["service"])
	assert.Contains(t, stdErr.Error(), "empty response")
}

func TestNilCauseIsSafe(t *testing.T) {
	err := NewCollaboratorUnavailableError("image-analysis", nil)

	assert.Empty(t, err.Details)
	assert.Equal(t, "StandardError[COLLABORATOR_UNAVAILABLE]: Collaborator unavailable", err.Error())
}

// ==========================
// BPMN Conversion
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	bpmn := ConvertToBPMNError(NewValidationFailedError("product_info: required field missing"))

	assert.Equal(t, string(ErrCodeValidationFailed), bpmn.Code)
	assert.False(t, bpmn.Retryable)
	assert.Zero(t, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "VALIDATION", vars["errorCategory"])
	assert.Equal(t, "product_info: required field missing", vars["errorDetails"])
	assert.NotEmpty(t, vars["timestamp"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "COLLABORATOR", GetErrorCategory(ErrCodeMalformedOutput))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeSchemaValidation))
	assert.Equal(t, "BUDGET", GetErrorCategory(ErrCodeDeadlineExceeded))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
