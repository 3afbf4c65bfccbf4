// Package client holds the adapters for the three third-party REST services.
// Each adapter issues exactly one GET per operation and reports the outcome as a
// models.Result; no adapter error escapes as a Go error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/kjstillabower/travel-research-service/internal/models"
	"github.com/kjstillabower/travel-research-service/internal/observability"
	"github.com/kjstillabower/travel-research-service/internal/traffic"
)

// DefaultTimeout is the per-call deadline for every outbound request.
const DefaultTimeout = 10 * time.Second

// Service labels used in metrics, logs and /health.
const (
	ServiceWeather  = "weather"
	ServiceNews     = "news"
	ServiceExchange = "exchange"
)

// failure is an adapter failure before it is folded into a models.Result.
type failure struct {
	category FailureCategory
	message  string
}

// upstream is the state shared by all adapters: immutable credential and a
// resty client, which is safe for concurrent use.
type upstream struct {
	service     string
	displayName string
	apiKey      string
	http        *resty.Client
}

func newUpstream(service, displayName, apiKey, baseURL string, timeout time.Duration) upstream {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return upstream{
		service:     service,
		displayName: displayName,
		apiKey:      strings.TrimSpace(apiKey),
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Configured reports whether a credential is present.
func (u *upstream) Configured() bool {
	return u.apiKey != ""
}

// SetTransport replaces the underlying round tripper. Used by tests to stub the network.
func (u *upstream) SetTransport(rt http.RoundTripper) {
	u.http.SetTransport(rt)
}

// SetLogger routes resty's internal warnings through zap.
func (u *upstream) SetLogger(logger *zap.Logger) {
	if logger != nil {
		u.http.SetLogger(logger.Named(u.service).Sugar())
	}
}

// Close releases idle connections held by the client.
func (u *upstream) Close() error {
	return u.http.Close()
}

// checkConfigured fails fast, before any request is built, when the credential is absent.
func (u *upstream) checkConfigured() *failure {
	if u.Configured() {
		return nil
	}
	return &failure{
		category: FailureNotConfigured,
		message:  u.displayName + " API key not configured",
	}
}

// get issues req against path and decodes a 2xx body into out. The body is
// decoded as JSON whatever Content-Type the upstream declares, so an HTML,
// plain-text or empty 2xx reply is a parsing failure rather than an empty payload.
func (u *upstream) get(ctx context.Context, req *resty.Request, path string, out any) *failure {
	logger := observability.LoggerFromContext(ctx)
	logger.Debug("upstream call", zap.String("service", u.service), zap.String("path", path))

	var raw json.RawMessage
	req.SetContext(ctx).
		SetResult(&raw).
		SetForceResponseContentType("application/json")
	if corrID := observability.CorrelationID(ctx); corrID != "" {
		req.SetHeader("X-Correlation-ID", corrID)
	}

	start := time.Now()
	resp, err := req.Get(path)
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode()
	}
	status := observability.StatusLabel(statusCode)
	observability.UpstreamCallsTotal.WithLabelValues(u.service, status).Inc()
	observability.UpstreamDuration.WithLabelValues(u.service, status).Observe(time.Since(start).Seconds())

	if err != nil && statusCode == 0 {
		return &failure{
			category: categorizeTransportError(err),
			message:  "Failed to connect: " + u.redact(err.Error()),
		}
	}
	if statusCode < 200 || statusCode >= 300 {
		return &failure{
			category: FailureHTTPStatus,
			message:  fmt.Sprintf("API returned error: %d", statusCode),
		}
	}
	if err == nil {
		err = decodeBody(raw, out)
	}
	if err != nil {
		return &failure{
			category: FailureParsing,
			message:  "Failed to parse response: " + u.redact(err.Error()),
		}
	}
	return nil
}

var errEmptyBody = errors.New("empty response body")

func decodeBody(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errEmptyBody
	}
	return json.Unmarshal(trimmed, out)
}

// settle records the outcome of one adapter operation for metrics, /health and logs.
func (u *upstream) settle(ctx context.Context, f *failure) {
	logger := observability.LoggerFromContext(ctx)
	if f == nil {
		traffic.RecordSuccess(u.service)
		logger.Debug("upstream call succeeded", zap.String("service", u.service))
		return
	}
	observability.UpstreamFailuresTotal.WithLabelValues(u.service, string(f.category)).Inc()
	if f.category == FailureNotConfigured {
		logger.Debug("upstream not configured", zap.String("service", u.service))
		return
	}
	traffic.RecordFailure(u.service)
	logger.Warn("upstream call failed",
		zap.String("service", u.service),
		zap.String("category", string(f.category)),
		zap.String("message", f.message))
}

// minRedactLength is the shortest key redacted; shorter keys would mangle
// ordinary words in the message.
const minRedactLength = 8

// redact strips the credential from error detail, in raw and URL-escaped form.
// The exchange API carries it in the URL path, the others in the query.
func (u *upstream) redact(s string) string {
	if len(u.apiKey) < minRedactLength {
		return s
	}
	for _, form := range []string{u.apiKey, url.PathEscape(u.apiKey), url.QueryEscape(u.apiKey)} {
		s = strings.ReplaceAll(s, form, "***")
	}
	return s
}

// resultOf folds an adapter outcome into a Result after settling it.
func resultOf[T any](ctx context.Context, u *upstream, v T, f *failure) models.Result[T] {
	u.settle(ctx, f)
	if f != nil {
		return models.Failure[T](f.message)
	}
	return models.Success(v)
}
