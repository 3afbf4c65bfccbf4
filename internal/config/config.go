package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerHost string
	ServerPort string

	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration

	WeatherAPIKey  string
	WeatherAPIURL  string
	NewsAPIKey     string
	NewsAPIURL     string
	ExchangeAPIKey string
	ExchangeAPIURL string

	CityMinLength int
	CityMaxLength int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration

	HealthWindow   time.Duration
	HealthErrorPct int
}

type secretsFile struct {
	OpenWeatherAPIKey  string `yaml:"openweather_api_key"`
	NewsAPIKey         string `yaml:"news_api_key"`
	ExchangeRateAPIKey string `yaml:"exchange_rate_api_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev, optional) and
// config/secrets.yaml. Environment variables override file values: nested keys map
// to upper-case names with dots replaced by underscores (server.port -> SERVER_PORT).
// API keys come from OPENWEATHER_API_KEY, NEWS_API_KEY and EXCHANGE_RATE_API_KEY or
// the secrets file. A missing key is not an error; the matching adapter reports it
// per call. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("weather_api.key", "OPENWEATHER_API_KEY")
	_ = v.BindEnv("news_api.key", "NEWS_API_KEY")
	_ = v.BindEnv("exchange_api.key", "EXCHANGE_RATE_API_KEY")

	configPath := filepath.Join(cwd, "config", env+".yaml")
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{
		ServerHost:     strings.TrimSpace(v.GetString("server.host")),
		ServerPort:     strings.TrimSpace(v.GetString("server.port")),
		WeatherAPIKey:  strings.TrimSpace(v.GetString("weather_api.key")),
		WeatherAPIURL:  strings.TrimSpace(v.GetString("weather_api.url")),
		NewsAPIKey:     strings.TrimSpace(v.GetString("news_api.key")),
		NewsAPIURL:     strings.TrimSpace(v.GetString("news_api.url")),
		ExchangeAPIKey: strings.TrimSpace(v.GetString("exchange_api.key")),
		ExchangeAPIURL: strings.TrimSpace(v.GetString("exchange_api.url")),
		CityMinLength:  v.GetInt("validation.city_min_length"),
		CityMaxLength:  v.GetInt("validation.city_max_length"),
		HealthErrorPct: v.GetInt("health.error_pct"),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8000"
	}

	cfg.UpstreamTimeout = durationOrDefault(v, "upstream.timeout", 10*time.Second)
	cfg.RequestTimeout = durationOrDefault(v, "request.timeout", 15*time.Second)
	cfg.ShutdownTimeout = durationOrDefault(v, "shutdown.timeout", 30*time.Second)
	cfg.ShutdownInFlightTimeout = durationOrDefault(v, "shutdown.in_flight_timeout", 15*time.Second)
	cfg.ShutdownInFlightCheckInterval = durationOrDefault(v, "shutdown.in_flight_check_interval", 100*time.Millisecond)
	cfg.HealthWindow = durationOrDefault(v, "health.window", 60*time.Second)

	if err := loadSecrets(filepath.Join(cwd, "config", "secrets.yaml"), cfg); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("weather_api.url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("news_api.url", "https://newsapi.org/v2")
	v.SetDefault("exchange_api.url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("validation.city_min_length", 1)
	v.SetDefault("validation.city_max_length", 100)
	v.SetDefault("health.error_pct", 50)
}

// durationOrDefault returns defaultVal when the key is unset, unparsable or not positive.
func durationOrDefault(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	if !v.IsSet(key) {
		return defaultVal
	}
	d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// loadSecrets fills any API key still empty from the secrets file, when present.
func loadSecrets(path string, cfg *Config) error {
	if cfg.WeatherAPIKey != "" && cfg.NewsAPIKey != "" && cfg.ExchangeAPIKey != "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return fmt.Errorf("parse secrets file: %w", err)
	}
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey = strings.TrimSpace(sec.OpenWeatherAPIKey)
	}
	if cfg.NewsAPIKey == "" {
		cfg.NewsAPIKey = strings.TrimSpace(sec.NewsAPIKey)
	}
	if cfg.ExchangeAPIKey == "" {
		cfg.ExchangeAPIKey = strings.TrimSpace(sec.ExchangeRateAPIKey)
	}
	return nil
}

// MissingKeys lists the environment variable names of unset API keys.
func (c *Config) MissingKeys() []string {
	var missing []string
	if c.WeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	if c.NewsAPIKey == "" {
		missing = append(missing, "NEWS_API_KEY")
	}
	if c.ExchangeAPIKey == "" {
		missing = append(missing, "EXCHANGE_RATE_API_KEY")
	}
	return missing
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// validate performs post-load validation of configuration values.
// Auto-adjusts RequestTimeout so a request outlives its slowest upstream call.
func validate(cfg *Config) error {
	if cfg.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}
	if cfg.RequestTimeout <= cfg.UpstreamTimeout {
		cfg.RequestTimeout = cfg.UpstreamTimeout + time.Second
	}
	if cfg.CityMinLength < 1 {
		cfg.CityMinLength = 1
	}
	if cfg.CityMaxLength < cfg.CityMinLength {
		return fmt.Errorf("validation.city_max_length (%d) must be >= city_min_length (%d)", cfg.CityMaxLength, cfg.CityMinLength)
	}
	if cfg.HealthWindow > 5*time.Minute {
		return fmt.Errorf("health.window must not exceed 5m, got %v", cfg.HealthWindow)
	}
	if cfg.HealthErrorPct < 1 || cfg.HealthErrorPct > 100 {
		return fmt.Errorf("health.error_pct must be between 1 and 100, got %d", cfg.HealthErrorPct)
	}
	return nil
}
