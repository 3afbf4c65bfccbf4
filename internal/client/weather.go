package client

import (
	"context"
	"time"

	"github.com/kjstillabower/travel-research-service/internal/models"
)

// DefaultWeatherURL is the OpenWeatherMap API root; the adapter appends /weather.
const DefaultWeatherURL = "https://api.openweathermap.org/data/2.5"

// WeatherClient fetches current conditions from OpenWeatherMap.
type WeatherClient struct {
	upstream
	now func() time.Time
}

// NewWeatherClient returns an adapter for apiURL. An empty apiKey is allowed:
// every call then fails with "OpenWeather API key not configured".
func NewWeatherClient(apiKey, apiURL string, timeout time.Duration) *WeatherClient {
	if apiURL == "" {
		apiURL = DefaultWeatherURL
	}
	return &WeatherClient{
		upstream: newUpstream(ServiceWeather, "OpenWeather", apiKey, apiURL, timeout),
		now:      time.Now,
	}
}

type openWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// GetWeather returns current metric-unit weather for city.
func (c *WeatherClient) GetWeather(ctx context.Context, city string) models.Result[models.WeatherPayload] {
	if f := c.checkConfigured(); f != nil {
		return resultOf(ctx, &c.upstream, models.WeatherPayload{}, f)
	}

	var body openWeatherResponse
	req := c.http.R().SetQueryParams(map[string]string{
		"q":     city,
		"appid": c.apiKey,
		"units": "metric",
	})
	if f := c.get(ctx, req, "/weather", &body); f != nil {
		return resultOf(ctx, &c.upstream, models.WeatherPayload{}, f)
	}
	return resultOf(ctx, &c.upstream, c.mapResponse(body), nil)
}

func (c *WeatherClient) mapResponse(body openWeatherResponse) models.WeatherPayload {
	description := ""
	if len(body.Weather) > 0 {
		description = body.Weather[0].Description
	}
	return models.WeatherPayload{
		City:        body.Name,
		Country:     body.Sys.Country,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Description: description,
		WindSpeed:   body.Wind.Speed,
		Timestamp:   c.now(),
	}
}
