package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exchangeSuccessBody = `{
	"result": "success",
	"documentation": "https://www.exchangerate-api.com/docs",
	"time_last_update_utc": "Mon, 19 Oct 2026 00:00:01 +0000",
	"base_code": "USD",
	"conversion_rates": {"USD": 1, "JPY": 150.2, "EUR": 0.92, "GBP": 0.79}
}`

func TestExchangeClient_GetExchangeRate_Success(t *testing.T) {
	server := jsonServer(t, http.StatusOK, exchangeSuccessBody, func(r *http.Request) {
		assert.Equal(t, "/test-api-key-12345/latest/USD", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
	})
	c := NewExchangeClient("test-api-key-12345", server.URL, time.Second)

	r := c.GetExchangeRate(context.Background(), "USD", "JPY")
	require.True(t, r.OK(), "message = %q", r.Message())
	got, _ := r.Value()

	assert.Equal(t, "USD", got.Base)
	assert.Equal(t, "JPY", got.Target)
	require.NotNil(t, got.Rate)
	assert.Equal(t, 150.2, *got.Rate)
	assert.Equal(t, "Mon, 19 Oct 2026 00:00:01 +0000", got.LastUpdate)
	assert.Len(t, got.AllRates, 4)
	for _, code := range []string{"USD", "JPY", "EUR", "GBP"} {
		assert.Contains(t, got.AllRates, code)
	}
}

// TestExchangeClient_GetExchangeRate_MissingTarget verifies an unknown target yields
// a nil rate inside a success, not a failure.
func TestExchangeClient_GetExchangeRate_MissingTarget(t *testing.T) {
	server := jsonServer(t, http.StatusOK, exchangeSuccessBody, nil)
	c := NewExchangeClient("test-api-key-12345", server.URL, time.Second)

	r := c.GetExchangeRate(context.Background(), "USD", "XYZ")
	require.True(t, r.OK(), "message = %q", r.Message())
	got, _ := r.Value()
	assert.Nil(t, got.Rate)
	assert.Equal(t, "XYZ", got.Target)
	assert.Len(t, got.AllRates, 4)
}

func TestExchangeClient_GetExchangeRate_NonSuccessMarker(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"result": "error", "error-type": "unsupported-code"}`, nil)
	c := NewExchangeClient("test-api-key-12345", server.URL, time.Second)

	r := c.GetExchangeRate(context.Background(), "ZZZ", "EUR")
	assert.False(t, r.OK())
	assert.Equal(t, "Failed to fetch exchange rates", r.Message())
}

func TestExchangeClient_GetExchangeRate_Defaults(t *testing.T) {
	server := jsonServer(t, http.StatusOK, exchangeSuccessBody, func(r *http.Request) {
		assert.Equal(t, "/test-api-key-12345/latest/USD", r.URL.Path)
	})
	c := NewExchangeClient("test-api-key-12345", server.URL, time.Second)

	got, ok := c.GetExchangeRate(context.Background(), "", "").Value()
	require.True(t, ok)
	assert.Equal(t, DefaultBaseCurrency, got.Base)
	assert.Equal(t, DefaultTargetCurrency, got.Target)
	require.NotNil(t, got.Rate)
	assert.Equal(t, 0.92, *got.Rate)
}

// TestExchangeClient_RedactsKeyFromConnectError verifies the path-embedded credential
// never leaks into the failure message returned to callers.
func TestExchangeClient_RedactsKeyFromConnectError(t *testing.T) {
	c := NewExchangeClient("secret-key-98765", "http://127.0.0.1:1/v6", time.Second)
	c.SetTransport(failingTransport{err: errors.New("connect: connection refused")})

	r := c.GetExchangeRate(context.Background(), "USD", "EUR")
	assert.False(t, r.OK())
	assert.NotContains(t, r.Message(), "secret-key-98765")
	assert.Contains(t, r.Message(), "Failed to connect: ")
}
