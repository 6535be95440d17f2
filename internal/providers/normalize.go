package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/sony/gobreaker/v2"
	domainErrors "github.com/zxcfrost1k/PaymentGatewayAPI/internal/domain/errors"
)

// Transport failures always surface as service-unavailable toward the merchant.
const transportFailureCode = "503"

const (
	labelConnectTimeout = "connect timeout"
	labelReadTimeout    = "read timeout"
	labelWriteTimeout   = "write timeout"
	labelRequestTimeout = "request timeout"
	labelConnectError   = "connection error"
	labelReadError      = "read error"
	labelWriteError     = "write error"
	labelNetworkError   = "network error"
	labelCircuitOpen    = "circuit breaker open"
)

const unknownFailureMessage = "unknown provider error"

// Normalize converts any failure from a provider call into a ProviderError.
// It returns nil only for a nil error.
func Normalize(err error) *domainErrors.ProviderError {
	if err == nil {
		return nil
	}

	if pe, ok := domainErrors.AsProviderError(err); ok {
		return pe
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return domainErrors.NewUpstreamHTTPError(statusErr.StatusCode, failureMessage(statusErr.Body))
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return transportFailure(domainErrors.KindConnection, labelCircuitOpen, err)
	}

	if kind, label, ok := classifyTransport(err); ok {
		return transportFailure(kind, label, err)
	}

	msg := err.Error()
	if msg == "" {
		msg = unknownFailureMessage
	}
	return domainErrors.NewProviderError(domainErrors.KindUnknown, "500", msg, err)
}

// failureMessage prefers a JSON "message" field and falls back to the raw body.
func failureMessage(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}

func transportFailure(kind domainErrors.Kind, label string, err error) *domainErrors.ProviderError {
	return domainErrors.NewProviderError(kind, transportFailureCode, fmt.Sprintf("%s while calling provider", label), err)
}

func classifyTransport(err error) (domainErrors.Kind, string, bool) {
	var opErr *net.OpError
	hasOp := errors.As(err, &opErr)

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		if hasOp {
			switch opErr.Op {
			case "dial":
				return domainErrors.KindTimeout, labelConnectTimeout, true
			case "read":
				return domainErrors.KindTimeout, labelReadTimeout, true
			case "write":
				return domainErrors.KindTimeout, labelWriteTimeout, true
			}
		}
		return domainErrors.KindTimeout, labelRequestTimeout, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domainErrors.KindTimeout, labelRequestTimeout, true
	}

	if hasOp {
		switch opErr.Op {
		case "dial":
			return domainErrors.KindConnection, labelConnectError, true
		case "read":
			return domainErrors.KindConnection, labelReadError, true
		case "write":
			return domainErrors.KindConnection, labelWriteError, true
		default:
			return domainErrors.KindConnection, labelNetworkError, true
		}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return domainErrors.KindConnection, labelConnectError, true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return domainErrors.KindConnection, labelReadError, true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return domainErrors.KindConnection, labelNetworkError, true
	}
	return "", "", false
}
