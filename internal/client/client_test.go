package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// countingTransport records how many requests reached the network layer.
type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	if t.next == nil {
		return nil, errors.New("unexpected network call")
	}
	return t.next.RoundTrip(r)
}

// failingTransport simulates a connection-level fault.
type failingTransport struct {
	err error
}

func (t failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, t.err
}

func jsonServer(t *testing.T, status int, body string, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// adapterCase runs one adapter operation and reports (ok, message).
type adapterCase struct {
	name string
	call func(ctx context.Context, apiKey, url string, timeout time.Duration, rt http.RoundTripper) (bool, string)
}

var adapterCases = []adapterCase{
	{
		name: "weather",
		call: func(ctx context.Context, apiKey, url string, timeout time.Duration, rt http.RoundTripper) (bool, string) {
			c := NewWeatherClient(apiKey, url, timeout)
			if rt != nil {
				c.SetTransport(rt)
			}
			r := c.GetWeather(ctx, "Tokyo")
			return r.OK(), r.Message()
		},
	},
	{
		name: "news",
		call: func(ctx context.Context, apiKey, url string, timeout time.Duration, rt http.RoundTripper) (bool, string) {
			c := NewNewsClient(apiKey, url, timeout)
			if rt != nil {
				c.SetTransport(rt)
			}
			r := c.SearchNews(ctx, "tokyo", "en", 5)
			return r.OK(), r.Message()
		},
	},
	{
		name: "exchange",
		call: func(ctx context.Context, apiKey, url string, timeout time.Duration, rt http.RoundTripper) (bool, string) {
			c := NewExchangeClient(apiKey, url, timeout)
			if rt != nil {
				c.SetTransport(rt)
			}
			r := c.GetExchangeRate(ctx, "USD", "JPY")
			return r.OK(), r.Message()
		},
	},
}

// TestAdapters_MissingKey_NoNetwork verifies that a missing credential fails fast
// with the service name in the message and never touches the transport.
func TestAdapters_MissingKey_NoNetwork(t *testing.T) {
	want := map[string]string{
		"weather":  "OpenWeather API key not configured",
		"news":     "News API key not configured",
		"exchange": "Exchange Rate API key not configured",
	}
	for _, tc := range adapterCases {
		t.Run(tc.name, func(t *testing.T) {
			rt := &countingTransport{}
			ok, msg := tc.call(context.Background(), "   ", "http://upstream.invalid", time.Second, rt)

			assert.False(t, ok)
			assert.Equal(t, want[tc.name], msg)
			assert.Equal(t, int32(0), rt.calls.Load(), "no request may be sent without a credential")
		})
	}
}

// TestAdapters_Non2xx verifies the exact upstream status code is embedded in the failure.
func TestAdapters_Non2xx(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}
	for _, tc := range adapterCases {
		for _, status := range statuses {
			t.Run(tc.name+"/"+http.StatusText(status), func(t *testing.T) {
				server := jsonServer(t, status, `{"message":"nope"}`, nil)
				ok, msg := tc.call(context.Background(), "test-api-key-12345", server.URL, time.Second, nil)

				assert.False(t, ok)
				assert.Equal(t, "API returned error: "+strconv.Itoa(status), msg)
			})
		}
	}
}

// TestAdapters_ConnectionRefused verifies transport faults become failures, not panics or errors.
func TestAdapters_ConnectionRefused(t *testing.T) {
	for _, tc := range adapterCases {
		t.Run(tc.name, func(t *testing.T) {
			rt := failingTransport{err: errors.New("dial tcp 127.0.0.1:1: connect: connection refused")}
			ok, msg := tc.call(context.Background(), "test-api-key-12345", "http://127.0.0.1:1", time.Second, rt)

			assert.False(t, ok)
			assert.True(t, strings.HasPrefix(msg, "Failed to connect: "), "message = %q", msg)
			assert.Contains(t, msg, "connection refused")
		})
	}
}

// TestAdapters_Timeout verifies an upstream slower than the per-call timeout yields a failure.
func TestAdapters_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	for _, tc := range adapterCases {
		t.Run(tc.name, func(t *testing.T) {
			start := time.Now()
			ok, msg := tc.call(context.Background(), "test-api-key-12345", server.URL, 50*time.Millisecond, nil)

			assert.False(t, ok)
			assert.True(t, strings.HasPrefix(msg, "Failed to connect: "), "message = %q", msg)
			assert.Less(t, time.Since(start), time.Second, "call must stop at its own timeout")
		})
	}
}

// TestAdapters_CanceledContext verifies caller cancellation propagates into the outbound call.
func TestAdapters_CanceledContext(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{}`, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, tc := range adapterCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, msg := tc.call(ctx, "test-api-key-12345", server.URL, time.Second, nil)
			assert.False(t, ok)
			assert.True(t, strings.HasPrefix(msg, "Failed to connect: "), "message = %q", msg)
		})
	}
}

// TestAdapters_UnparsableBody verifies that a 2xx reply that does not decode as
// JSON is a parsing failure whatever Content-Type the upstream declares.
func TestAdapters_UnparsableBody(t *testing.T) {
	bodies := []struct {
		name        string
		contentType string
		body        string
	}{
		{"malformed json", "application/json", `{"name":`},
		{"html page", "text/html; charset=utf-8", `<html>maintenance</html>`},
		{"plain text", "text/plain", `service temporarily unavailable`},
		{"empty body", "application/json", ``},
		{"null body", "application/json", `null`},
	}
	for _, tc := range adapterCases {
		for _, b := range bodies {
			t.Run(tc.name+"/"+b.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", b.contentType)
					w.WriteHeader(http.StatusOK)
					_, _ = w.Write([]byte(b.body))
				}))
				defer server.Close()

				ok, msg := tc.call(context.Background(), "test-api-key-12345", server.URL, time.Second, nil)

				assert.False(t, ok)
				assert.True(t, strings.HasPrefix(msg, "Failed to parse response: "), "message = %q", msg)
			})
		}
	}
}

// TestUpstream_Redact verifies raw and URL-escaped credentials are masked while
// keys too short to match safely leave the message intact.
func TestUpstream_Redact(t *testing.T) {
	u := newUpstream(ServiceExchange, "Exchange Rate", "abc/def+ghi j", "http://upstream.invalid", time.Second)
	tests := []struct {
		in   string
		want string
	}{
		{"raw abc/def+ghi j here", "raw *** here"},
		{"GET /v6/abc%2Fdef+ghi%20j/latest/USD", "GET /v6/***/latest/USD"},
		{"GET /weather?appid=abc%2Fdef%2Bghi+j&q=Tokyo", "GET /weather?appid=***&q=Tokyo"},
		{"no credential", "no credential"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, u.redact(tc.in))
	}

	short := newUpstream(ServiceWeather, "OpenWeather", "k", "http://upstream.invalid", time.Second)
	msg := "looking for beginning of object key"
	assert.Equal(t, msg, short.redact(msg))
}

func TestUpstream_Configured(t *testing.T) {
	assert.False(t, NewWeatherClient("", "", 0).Configured())
	assert.False(t, NewWeatherClient("  ", "", 0).Configured())
	assert.True(t, NewWeatherClient("k", "", 0).Configured())
}
