package client

import (
	"context"
	"errors"
	"net"
)

// FailureCategory is a stable label for adapter failures in metrics and logs.
type FailureCategory string

const (
	FailureNotConfigured FailureCategory = "not_configured"
	FailureHTTPStatus    FailureCategory = "http_status"
	FailureTransport     FailureCategory = "transport"
	FailureTimeout       FailureCategory = "timeout"
	FailureSemantic      FailureCategory = "semantic"
	FailureParsing       FailureCategory = "parsing"
)

// categorizeTransportError separates timeouts and cancellations from other
// connection-level faults. Both surface to callers as "Failed to connect".
func categorizeTransportError(err error) FailureCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureTransport
}
