package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/travel-research-service/internal/client"
	"github.com/kjstillabower/travel-research-service/internal/lifecycle"
	"github.com/kjstillabower/travel-research-service/internal/models"
	"github.com/kjstillabower/travel-research-service/internal/service"
	"github.com/kjstillabower/travel-research-service/internal/traffic"
	"github.com/kjstillabower/travel-research-service/internal/validation"
)

const (
	apiOpenWeatherMap = "OpenWeatherMap"
	apiNewsAPI        = "NewsAPI"
	apiExchangeRate   = "ExchangeRate-API"

	serviceName    = "travel-research-service"
	serviceVersion = "1.0.0"
)

// HealthConfig holds the inputs of the health handler.
type HealthConfig struct {
	// Window and ErrorPct decide when an upstream counts as unhealthy: at least
	// ErrorPct percent of its calls in the last Window failed.
	Window   time.Duration
	ErrorPct int
	// ConfiguredAPIs reports, per upstream, whether a credential is present.
	// Keys: client.ServiceWeather, client.ServiceNews, client.ServiceExchange.
	ConfiguredAPIs map[string]bool
}

// Sources groups the three upstream adapters served directly.
type Sources struct {
	Weather  service.WeatherSource
	News     service.NewsSource
	Exchange service.ExchangeSource
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	sources          Sources
	research         *service.ResearchService
	healthConfig     *HealthConfig
	logger           *zap.Logger
	cityMaxLength    int
	cityMinLength    int
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	sources Sources,
	research *service.ResearchService,
	healthConfig *HealthConfig,
	logger *zap.Logger,
	cityMaxLength, cityMinLength int,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sources:       sources,
		research:      research,
		healthConfig:  healthConfig,
		logger:        logger,
		cityMaxLength: cityMaxLength,
		cityMinLength: cityMinLength,
	}
}

// Routes registers every endpoint on router. requestTimeout bounds the upstream-backed routes.
func (h *Handler) Routes(router *mux.Router, requestTimeout time.Duration) {
	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/api-explanation", h.APIExplanation).Methods(http.MethodGet)

	api := router.NewRoute().Subrouter()
	api.Use(TimeoutMiddleware(requestTimeout))
	api.HandleFunc("/weather/{city}", h.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/news", h.SearchNews).Methods(http.MethodGet)
	api.HandleFunc("/exchange", h.GetExchangeRate).Methods(http.MethodGet)
	api.HandleFunc("/research", h.Research).Methods(http.MethodPost)
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Welcome to the Travel Research API",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"health":          "/health",
			"metrics":         "/metrics",
			"api_explanation": "/api-explanation",
			"weather":         "/weather/{city}",
			"news":            "/news",
			"exchange":        "/exchange",
			"research":        "/research",
		},
	})
}

// GetWeather handles GET /weather/{city}.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(mux.Vars(r)["city"], h.cityMinLength, h.cityMaxLength)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	writeResult(w, r, h.sources.Weather.GetWeather(r.Context(), city), apiOpenWeatherMap)
}

// SearchNews handles GET /news?query=&language=&page_size=.
func (h *Handler) SearchNews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query, err := validation.ValidateQuery(q.Get("query"))
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	language, err := validation.ValidateLanguage(q.Get("language"), client.DefaultLanguage)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	pageSize := client.DefaultPageSize
	if raw := strings.TrimSpace(q.Get("page_size")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeValidationError(w, r, validation.ErrPageSizeRange)
			return
		}
		if pageSize, err = validation.ValidatePageSize(n); err != nil {
			writeValidationError(w, r, err)
			return
		}
	}
	writeResult(w, r, h.sources.News.SearchNews(r.Context(), query, language, pageSize), apiNewsAPI)
}

// GetExchangeRate handles GET /exchange?from_currency=&to_currency=.
func (h *Handler) GetExchangeRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := validation.ValidateCurrency(q.Get("from_currency"), client.DefaultBaseCurrency)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	to, err := validation.ValidateCurrency(q.Get("to_currency"), client.DefaultTargetCurrency)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	writeResult(w, r, h.sources.Exchange.GetExchangeRate(r.Context(), from, to), apiExchangeRate)
}

type researchRequest struct {
	City     string `json:"city"`
	Currency string `json:"currency"`
}

// Research handles POST /research. Upstream failures stay inside the summary;
// the response is 200 whenever the request itself is valid.
func (h *Handler) Research(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	city, err := validation.ValidateCity(req.City, h.cityMinLength, h.cityMaxLength)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	currency, err := validation.ValidateCurrency(req.Currency, service.DefaultBudgetCurrency)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	summary, err := h.research.Research(r.Context(), city, currency)
	if err != nil {
		if errors.Is(err, service.ErrCityRequired) {
			writeValidationError(w, r, err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"data":            summary,
		"apis_used":       []string{apiOpenWeatherMap, apiNewsAPI, apiExchangeRate},
		"processing_type": "parallel_async",
	})
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
	checks     map[string]string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	configured := map[string]bool{"weather": false, "news": false, "exchange_rate": false}
	if h.healthConfig != nil {
		configured["weather"] = h.healthConfig.ConfiguredAPIs[client.ServiceWeather]
		configured["news"] = h.healthConfig.ConfiguredAPIs[client.ServiceNews]
		configured["exchange_rate"] = h.healthConfig.ConfiguredAPIs[client.ServiceExchange]
	}
	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":          result.status,
		"service":         serviceName,
		"version":         serviceVersion,
		"configured_apis": configured,
		"checks":          result.checks,
		"uptime_seconds":  int64(lifecycle.Uptime().Seconds()),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates conditions in priority order:
// shutting-down > degraded (an upstream unconfigured or failing) > healthy.
// Degraded stays 200 because the service still answers with per-domain failures.
func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{status: "shutting-down", statusCode: http.StatusServiceUnavailable, reason: "signal"}
	}

	checks := make(map[string]string, 3)
	reason := ""
	for _, svc := range []string{client.ServiceWeather, client.ServiceNews, client.ServiceExchange} {
		check := h.checkUpstream(svc)
		checks[svc] = check
		if check != "healthy" && reason == "" {
			reason = svc + "_" + check
		}
	}
	if reason != "" {
		return healthResult{status: "degraded", statusCode: http.StatusOK, reason: reason, checks: checks}
	}
	return healthResult{status: "healthy", statusCode: http.StatusOK, checks: checks}
}

func (h *Handler) checkUpstream(svc string) string {
	if h.healthConfig == nil {
		return "healthy"
	}
	if !h.healthConfig.ConfiguredAPIs[svc] {
		return "not_configured"
	}
	if h.healthConfig.Window > 0 && h.healthConfig.ErrorPct > 0 {
		failures, total := traffic.FailureRate(svc, h.healthConfig.Window)
		if total > 0 && failures*100 >= h.healthConfig.ErrorPct*total {
			return "unhealthy"
		}
	}
	return "healthy"
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeResult writes 200 with the payload on success and 500 with the failure
// message otherwise.
func writeResult[T any](w http.ResponseWriter, r *http.Request, result models.Result[T], apiUsed string) {
	payload, ok := result.Value()
	if !ok {
		writeError(w, r, http.StatusInternalServerError, result.Message())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"data":     payload,
		"api_used": apiUsed,
	})
}

// writeError writes the failure envelope {success:false, error, status_code}.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if status >= http.StatusInternalServerError {
		requestLogger(r).Debug("request failed", zap.Int("status_code", status), zap.String("error", message))
	}
	writeJSON(w, status, map[string]interface{}{
		"success":     false,
		"error":       message,
		"status_code": status,
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusUnprocessableEntity, err.Error())
}
