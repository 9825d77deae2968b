// Package api implements the HTTP surface of the admission control service.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yourusername/floodgate/service"
)

// ServiceVersion is reported by the health and root endpoints.
const ServiceVersion = "1.0.0"

// Handler serves the admission-facing endpoints.
type Handler struct {
	service *service.RateLimiterService
	logger  *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(svc *service.RateLimiterService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: svc, logger: logger}
}

// UpdateRequest represents the incoming configuration update.
// Both fields are required.
type UpdateRequest struct {
	Capacity   *float64 `json:"capacity"`
	RefillRate *float64 `json:"refill_rate"`
}

// UpdateResponse confirms an applied configuration update.
type UpdateResponse struct {
	Message   string        `json:"message"`
	NewConfig ConfigPayload `json:"new_config"`
}

// ConfigPayload is the wire form of a bucket policy.
type ConfigPayload struct {
	Capacity   float64 `json:"capacity"`
	RefillRate float64 `json:"refill_rate"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Admitted handles requests that passed the rate limit middleware.
// Every admitted request has already consumed one token. The router only
// sends the exact root path here.
func (h *Handler) Admitted(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Rate Limiter Code Challenge!",
	})
}

// UpdateRateLimit handles POST /update requests.
func (h *Handler) UpdateRateLimit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST requests are allowed")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("rejected update request", zap.Error(err))
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Capacity == nil || req.RefillRate == nil {
		h.sendError(w, http.StatusBadRequest, "missing_fields", "capacity and refill_rate are required")
		return
	}

	applied, err := h.service.UpdateConfig(*req.Capacity, *req.RefillRate)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UpdateResponse{
		Message: "Rate limit updated",
		NewConfig: ConfigPayload{
			Capacity:   applied.Capacity,
			RefillRate: applied.RefillRate,
		},
	})
}

// Health handles GET /health requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "floodgate",
		"version": ServiceVersion,
	})
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
