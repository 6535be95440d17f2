package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ProviderError
		expected string
	}{
		{
			name:     "with wrapped error",
			err:      NewProviderError(KindTimeout, "503", "read timeout while calling provider", errors.New("i/o timeout")),
			expected: "timeout (503): read timeout while calling provider: i/o timeout",
		},
		{
			name:     "without wrapped error",
			err:      NewUpstreamHTTPError(404, "not found"),
			expected: "upstream-http (404): not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	original := errors.New("original error")
	err := NewProviderError(KindUnknown, "500", "boom", original)

	assert.ErrorIs(t, err, original)
}

func TestProviderError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{"404", 404},
		{"422", 422},
		{"503", 503},
		{"200", 500},
		{"", 500},
		{"abc", 500},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %q", tt.code), func(t *testing.T) {
			err := &ProviderError{Kind: KindUpstreamHTTP, Code: tt.code}
			assert.Equal(t, tt.expected, err.HTTPStatus())
		})
	}
}

func TestNewMalformedResponseError(t *testing.T) {
	err := NewMalformedResponseError("result.fee")

	assert.Equal(t, KindMalformedResponse, err.Kind)
	assert.Equal(t, "result.fee", err.Field)
	assert.Contains(t, err.Message, "result.fee")
}

func TestAsProviderError(t *testing.T) {
	pe := NewNotFoundError("transaction 7 not found")
	wrapped := fmt.Errorf("get info: %w", pe)

	got, ok := AsProviderError(wrapped)
	require.True(t, ok)
	assert.Same(t, pe, got)

	_, ok = AsProviderError(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsRetryableCandidateFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"404 offer not found", NewUpstreamHTTPError(404, "offer not found"), true},
		{"400 no free requisite", NewUpstreamHTTPError(400, "no free requisite"), true},
		{"wrapped 404", fmt.Errorf("attempt: %w", NewUpstreamHTTPError(404, "x")), true},
		{"422 duplicate order", NewUpstreamHTTPError(422, "exists"), false},
		{"500 upstream", NewUpstreamHTTPError(500, "boom"), false},
		{"timeout", NewProviderError(KindTimeout, "503", "read timeout", nil), false},
		{"malformed", NewMalformedResponseError("result.id"), false},
		{"unknown method with 404 code", NewUnknownMethodError("404", "bank x"), false},
		{"plain error", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryableCandidateFailure(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("amount", "must be a positive integer")

	assert.Equal(t, "validation failed for field amount: must be a positive integer", err.Error())
	assert.Nil(t, err.Fields)
}
