package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-research-service/internal/models"
	"github.com/kjstillabower/travel-research-service/internal/observability"
)

// ErrCityRequired is returned by Research before any upstream call when the city is blank.
var ErrCityRequired = errors.New("city is required")

const (
	// DefaultBudgetCurrency is the target currency when the caller does not name one.
	DefaultBudgetCurrency = "USD"

	researchBaseCurrency = "USD"
	researchNewsLanguage = "en"
	researchNewsPageSize = 3
)

// WeatherSource fetches current weather for a city.
type WeatherSource interface {
	GetWeather(ctx context.Context, city string) models.Result[models.WeatherPayload]
}

// NewsSource searches news articles.
type NewsSource interface {
	SearchNews(ctx context.Context, query, language string, pageSize int) models.Result[models.NewsPayload]
}

// ExchangeSource looks up currency exchange rates.
type ExchangeSource interface {
	GetExchangeRate(ctx context.Context, from, to string) models.Result[models.ExchangePayload]
}

// ResearchService fans one destination out to the weather, news and exchange
// sources and joins their outcomes into a single summary. It holds no per-request
// state and is safe for concurrent use.
type ResearchService struct {
	weather  WeatherSource
	news     NewsSource
	exchange ExchangeSource
	now      func() time.Time
}

// NewResearchService creates a ResearchService over the three sources.
func NewResearchService(weather WeatherSource, news NewsSource, exchange ExchangeSource) *ResearchService {
	return &ResearchService{
		weather:  weather,
		news:     news,
		exchange: exchange,
		now:      time.Now,
	}
}

// Research runs the three lookups for city concurrently and waits for all of them.
// Individual failures are carried inside the summary; the only error is
// ErrCityRequired. Cancelling ctx cancels every in-flight lookup, while a failing
// lookup never cancels its siblings.
func (s *ResearchService) Research(ctx context.Context, city, currency string) (models.ResearchSummary, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.ResearchSummary{}, ErrCityRequired
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = DefaultBudgetCurrency
	}

	start := time.Now()
	logger := observability.LoggerFromContext(ctx).With(zap.String("destination", city))
	observability.ResearchRequestsTotal.Inc()
	logger.Debug("research started", zap.String("currency", currency))

	// Each branch writes only its own field.
	summary := models.ResearchSummary{Destination: city}
	var wg conc.WaitGroup
	wg.Go(func() {
		summary.Weather = guard(logger, "weather", func() models.Result[models.WeatherPayload] {
			return s.weather.GetWeather(ctx, city)
		})
	})
	wg.Go(func() {
		summary.LatestNews = guard(logger, "news", func() models.Result[models.NewsPayload] {
			return s.news.SearchNews(ctx, city+" travel OR tourism", researchNewsLanguage, researchNewsPageSize)
		})
	})
	wg.Go(func() {
		summary.CurrencyInfo = guard(logger, "exchange", func() models.Result[models.ExchangePayload] {
			return s.exchange.GetExchangeRate(ctx, researchBaseCurrency, currency)
		})
	})
	wg.Wait()
	summary.ResearchTimestamp = s.now()

	failed := make([]string, 0, 3)
	if !summary.Weather.OK() {
		failed = append(failed, "weather")
	}
	if !summary.LatestNews.OK() {
		failed = append(failed, "news")
	}
	if !summary.CurrencyInfo.OK() {
		failed = append(failed, "exchange")
	}
	for _, domain := range failed {
		observability.ResearchBranchFailuresTotal.WithLabelValues(domain).Inc()
	}

	duration := time.Since(start)
	observability.ResearchDuration.Observe(duration.Seconds())
	logger.Info("research completed",
		zap.Strings("failed", failed),
		zap.Duration("duration", duration))
	return summary, nil
}

// guard runs one branch and turns a panic into that branch's failure.
func guard[T any](logger *zap.Logger, domain string, fn func() models.Result[T]) (result models.Result[T]) {
	if recovered := panics.Try(func() { result = fn() }); recovered != nil {
		logger.Error("research branch panicked",
			zap.String("domain", domain),
			zap.String("panic", fmt.Sprint(recovered.Value)),
			zap.ByteString("stack", recovered.Stack))
		return models.Failure[T](fmt.Sprintf("internal error: %v", recovered.Value))
	}
	return result
}
