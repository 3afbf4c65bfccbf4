package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestCategorizeTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureCategory
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, FailureTimeout},
		{"canceled", context.Canceled, FailureTimeout},
		{"wrapped deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), FailureTimeout},
		{"net timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, FailureTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), FailureTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := categorizeTransportError(tt.err); got != tt.want {
				t.Errorf("categorizeTransportError() = %q, want %q", got, tt.want)
			}
		})
	}
}
