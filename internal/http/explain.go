package http

import "net/http"

// apiExplanation is the static body served by GET /api-explanation.
var apiExplanation = map[string]interface{}{
	"what_is_an_api": map[string]interface{}{
		"definition": "API (Application Programming Interface) is a way for different software applications to communicate over the internet",
		"analogy":    "Like a restaurant menu and waiter: you order (request), the kitchen prepares it (processing), the waiter delivers it (response)",
		"key_components": map[string]string{
			"endpoint":    "URL where you send requests (e.g., /weather/Tokyo)",
			"http_method": "Type of request: GET fetches, POST creates, PUT updates, DELETE removes",
			"headers":     "Metadata like authentication and content type",
			"parameters":  "Additional data in the query string (?query=AI) or the request body",
			"response":    "Data returned from the API, usually JSON",
			"status_code": "200 (success), 404 (not found), 500 (server error)",
		},
	},
	"demonstrated_concepts": map[string]interface{}{
		"simple_get_request": map[string]string{
			"endpoint":    "/weather/{city}",
			"explanation": "Fetches data using a path parameter",
			"example":     "GET /weather/Tokyo",
		},
		"query_parameters": map[string]string{
			"endpoint":    "/news?query=AI&language=en&page_size=5",
			"explanation": "Multiple parameters for filtering and pagination",
			"example":     "GET /news?query=AI&page_size=3",
		},
		"authentication": map[string]string{
			"explanation": "API keys are sent in headers or query params to verify access",
			"security":    "Keys stay on the server and never appear in responses",
		},
		"parallel_requests": map[string]string{
			"endpoint":    "/research",
			"explanation": "Calls all three upstream APIs at once",
			"benefit":     "Total latency follows the slowest API instead of the sum of all three",
		},
		"error_handling": map[string]interface{}{
			"explanation": "Upstream failures, rate limits and timeouts become structured error responses",
			"http_codes": map[string]string{
				"200-299": "Success",
				"400-499": "Client errors (bad request, validation)",
				"500-599": "Server errors",
			},
		},
	},
	"real_world_usage": map[string]string{
		"ai_agents":  "Agents use APIs to fetch real-time data and act on external services",
		"this_demo":  "A research assistant combines weather, news and currency APIs for travel planning",
		"next_steps": "Add flight or hotel APIs and summarize the combined data",
	},
}

// APIExplanation handles GET /api-explanation.
func (h *Handler) APIExplanation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiExplanation)
}
