//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/travel-research-service/internal/client"
	"github.com/kjstillabower/travel-research-service/internal/service"
)

// IntegrationTestConfig holds live credentials for integration tests.
type IntegrationTestConfig struct {
	WeatherAPIKey  string
	NewsAPIKey     string
	ExchangeAPIKey string
	Timeout        time.Duration
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test unless at least one API key is set; unset keys leave that
// adapter unconfigured.
func GetIntegrationConfig(t *testing.T) IntegrationTestConfig {
	t.Helper()
	cfg := IntegrationTestConfig{
		WeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		NewsAPIKey:     os.Getenv("NEWS_API_KEY"),
		ExchangeAPIKey: os.Getenv("EXCHANGE_RATE_API_KEY"),
		Timeout:        client.DefaultTimeout,
	}
	if cfg.WeatherAPIKey == "" && cfg.NewsAPIKey == "" && cfg.ExchangeAPIKey == "" {
		t.Skip("no API keys set, skipping integration test")
	}
	return cfg
}

// RequireKey skips the test when key is empty.
func RequireKey(t *testing.T, key, name string) {
	t.Helper()
	if key == "" {
		t.Skip(name + " not set, skipping integration test")
	}
}

// Clients holds live adapters against the production endpoints.
type Clients struct {
	Weather  *client.WeatherClient
	News     *client.NewsClient
	Exchange *client.ExchangeClient
}

// SetupIntegrationClients creates the three adapters and closes them on test cleanup.
func SetupIntegrationClients(t *testing.T, cfg IntegrationTestConfig) Clients {
	t.Helper()
	c := Clients{
		Weather:  client.NewWeatherClient(cfg.WeatherAPIKey, "", cfg.Timeout),
		News:     client.NewNewsClient(cfg.NewsAPIKey, "", cfg.Timeout),
		Exchange: client.NewExchangeClient(cfg.ExchangeAPIKey, "", cfg.Timeout),
	}
	t.Cleanup(func() {
		_ = c.Weather.Close()
		_ = c.News.Close()
		_ = c.Exchange.Close()
	})
	return c
}

// SetupIntegrationService creates a research service over live adapters.
func SetupIntegrationService(t *testing.T, cfg IntegrationTestConfig) (*service.ResearchService, Clients) {
	t.Helper()
	c := SetupIntegrationClients(t, cfg)
	return service.NewResearchService(c.Weather, c.News, c.Exchange), c
}
