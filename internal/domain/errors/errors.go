package errors

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// Merchant-facing edge errors
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDuplicateRequest     = errors.New("request for this merchant_transaction_id is already in progress")
	ErrUnsupportedOperation = errors.New("operation not supported by provider")
	ErrProviderNotFound     = errors.New("payment provider not found")
	ErrUnsupportedCurrency  = errors.New("unsupported currency")

	// Webhook errors
	ErrWebhookDisabled      = errors.New("webhook processing is disabled")
	ErrWebhookMisconfigured = errors.New("webhook secret is not configured")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidPayload       = errors.New("invalid webhook payload")

	// Lock errors
	ErrLockNotHeld = errors.New("lock not held")
)

// Kind classifies a ProviderError. Callers switch on Kind, never on message text.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindUnknownProviderMethod Kind = "unknown-provider-method"
	KindTimeout               Kind = "timeout"
	KindConnection            Kind = "connection"
	KindUpstreamHTTP          Kind = "upstream-http"
	KindMalformedResponse     Kind = "malformed-response"
	KindNotFound              Kind = "not-found"
	KindNotCancellable        Kind = "not-cancellable"
	KindSignatureInvalid      Kind = "signature-invalid"
	KindUnrecognizedStatus    Kind = "unrecognized-status"
	KindUnknown               Kind = "unknown"
)

// ProviderError is the canonical failure value produced by every provider call site.
type ProviderError struct {
	Kind    Kind
	Code    string
	Message string
	// Field names the missing response field for malformed-response errors.
	Field string
	Err   error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the numeric code as an HTTP status, falling back to 500.
func (e *ProviderError) HTTPStatus() int {
	status, err := strconv.Atoi(e.Code)
	if err != nil || status < 400 || status > 599 {
		return 500
	}
	return status
}

// NewProviderError creates a new provider error
func NewProviderError(kind Kind, code, message string, err error) *ProviderError {
	return &ProviderError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewUpstreamHTTPError(status int, message string) *ProviderError {
	return &ProviderError{Kind: KindUpstreamHTTP, Code: strconv.Itoa(status), Message: message}
}

func NewMalformedResponseError(field string) *ProviderError {
	return &ProviderError{
		Kind:    KindMalformedResponse,
		Code:    "502",
		Message: fmt.Sprintf("provider response is missing field %q", field),
		Field:   field,
	}
}

func NewUnknownMethodError(code, message string) *ProviderError {
	return &ProviderError{Kind: KindUnknownProviderMethod, Code: code, Message: message}
}

func NewNotFoundError(message string) *ProviderError {
	return &ProviderError{Kind: KindNotFound, Code: "404", Message: message}
}

func NewNotCancellableError(message string) *ProviderError {
	return &ProviderError{Kind: KindNotCancellable, Code: "400", Message: message}
}

// AsProviderError extracts a ProviderError from err's chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsRetryableCandidateFailure reports whether the next fallback candidate should
// be attempted: only "offer not found" (404) and "no free requisite" (400).
func IsRetryableCandidateFailure(err error) bool {
	pe, ok := AsProviderError(err)
	if !ok || pe.Kind != KindUpstreamHTTP {
		return false
	}
	return pe.Code == "404" || pe.Code == "400"
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
	// Fields is set only when more than one field failed.
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
