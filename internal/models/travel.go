package models

import "time"

// WeatherPayload is the normalized current-weather observation for a city.
// Numeric fields are nil when the upstream body omits them.
type WeatherPayload struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature *float64  `json:"temperature"`
	FeelsLike   *float64  `json:"feels_like"`
	Humidity    *int      `json:"humidity"`
	Description string    `json:"description"`
	WindSpeed   *float64  `json:"wind_speed"`
	Timestamp   time.Time `json:"timestamp"`
}

// Article is one news search hit.
type Article struct {
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	Author      *string `json:"author"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"published_at"`
}

// NewsPayload holds at most page-size articles in upstream order.
type NewsPayload struct {
	TotalResults *int      `json:"total_results"`
	Articles     []Article `json:"articles"`
	Query        string    `json:"query"`
}

// ExchangePayload holds the base→target rate and every rate the upstream reported.
// Rate is nil when the target code is missing from the upstream rates.
type ExchangePayload struct {
	Base       string             `json:"base"`
	Target     string             `json:"target"`
	Rate       *float64           `json:"rate"`
	LastUpdate string             `json:"last_update"`
	AllRates   map[string]float64 `json:"all_rates"`
}

// ResearchSummary combines the three upstream outcomes for one destination.
type ResearchSummary struct {
	Destination       string                  `json:"destination"`
	Weather           Result[WeatherPayload]  `json:"weather"`
	LatestNews        Result[NewsPayload]     `json:"latest_news"`
	CurrencyInfo      Result[ExchangePayload] `json:"currency_info"`
	ResearchTimestamp time.Time               `json:"research_timestamp"`
}
