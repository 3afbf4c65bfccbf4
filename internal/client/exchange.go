package client

import (
	"context"
	"time"

	"github.com/kjstillabower/travel-research-service/internal/models"
)

const (
	// DefaultExchangeURL is the ExchangeRate-API v6 root. The credential is a path segment.
	DefaultExchangeURL = "https://v6.exchangerate-api.com/v6"

	DefaultBaseCurrency   = "USD"
	DefaultTargetCurrency = "EUR"

	exchangeFailedMessage = "Failed to fetch exchange rates"
)

// ExchangeClient looks up the latest rates for a base currency on ExchangeRate-API.
type ExchangeClient struct {
	upstream
}

// NewExchangeClient returns an adapter for apiURL. An empty apiKey is allowed:
// every call then fails with "Exchange Rate API key not configured".
func NewExchangeClient(apiKey, apiURL string, timeout time.Duration) *ExchangeClient {
	if apiURL == "" {
		apiURL = DefaultExchangeURL
	}
	return &ExchangeClient{upstream: newUpstream(ServiceExchange, "Exchange Rate", apiKey, apiURL, timeout)}
}

type exchangeRateResponse struct {
	Result            string             `json:"result"`
	TimeLastUpdateUTC string             `json:"time_last_update_utc"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
}

// GetExchangeRate returns the from→to rate along with every rate for from.
// A target missing from the upstream rates yields a nil Rate, not a failure.
func (c *ExchangeClient) GetExchangeRate(ctx context.Context, from, to string) models.Result[models.ExchangePayload] {
	if f := c.checkConfigured(); f != nil {
		return resultOf(ctx, &c.upstream, models.ExchangePayload{}, f)
	}
	if from == "" {
		from = DefaultBaseCurrency
	}
	if to == "" {
		to = DefaultTargetCurrency
	}

	var body exchangeRateResponse
	req := c.http.R().SetPathParams(map[string]string{
		"apiKey": c.apiKey,
		"base":   from,
	})
	if f := c.get(ctx, req, "/{apiKey}/latest/{base}", &body); f != nil {
		return resultOf(ctx, &c.upstream, models.ExchangePayload{}, f)
	}
	if body.Result != "success" {
		return resultOf(ctx, &c.upstream, models.ExchangePayload{}, &failure{
			category: FailureSemantic,
			message:  exchangeFailedMessage,
		})
	}

	rates := body.ConversionRates
	if rates == nil {
		rates = map[string]float64{}
	}
	payload := models.ExchangePayload{
		Base:       from,
		Target:     to,
		LastUpdate: body.TimeLastUpdateUTC,
		AllRates:   rates,
	}
	if rate, ok := rates[to]; ok {
		payload.Rate = &rate
	}
	return resultOf(ctx, &c.upstream, payload, nil)
}
