package api

import (
	"encoding/json"
	"net/http"

	"github.com/cristobalvch/ratelimiter-code-challenge/bucket"
)

// Handler serves the guarded application route and the administrative
// configuration endpoint for one token bucket.
type Handler struct {
	bucket *bucket.TokenBucket
}

// NewHandler creates a handler bound to the given bucket.
func NewHandler(b *bucket.TokenBucket) *Handler {
	return &Handler{bucket: b}
}

// UpdateRequest is the administrative reconfiguration payload.
// Pointers distinguish a missing field from an explicit zero.
type UpdateRequest struct {
	Capacity   *int64   `json:"capacity"`
	RefillRate *float64 `json:"refill_rate"`
}

// UpdateResponse confirms a configuration change.
type UpdateResponse struct {
	Message   string    `json:"message"`
	NewConfig NewConfig `json:"new_config"`
}

// NewConfig echoes the applied configuration.
type NewConfig struct {
	Capacity   int64   `json:"capacity"`
	RefillRate float64 `json:"refill_rate"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Limited is the rate-limited application route. The admission check itself
// lives in the gate middleware wrapped around this handler; by the time it
// runs, the request has already been admitted.
func (h *Handler) Limited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Rate Limiter Code Challenge!",
	})
}

// UpdateConfig handles POST /update requests. It validates the payload and
// applies the new capacity and refill rate to the bucket. Zero values are
// accepted (capacity 0 admits nothing, rate 0 stops refills); negative
// values are rejected here at the boundary, the bucket itself never fails.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST requests are allowed")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if req.Capacity == nil {
		h.sendError(w, http.StatusBadRequest, "missing_capacity", "capacity is required")
		return
	}
	if req.RefillRate == nil {
		h.sendError(w, http.StatusBadRequest, "missing_refill_rate", "refill_rate is required")
		return
	}
	if *req.Capacity < 0 {
		h.sendError(w, http.StatusBadRequest, "invalid_capacity", "capacity must not be negative")
		return
	}
	if *req.RefillRate < 0 {
		h.sendError(w, http.StatusBadRequest, "invalid_refill_rate", "refill_rate must not be negative")
		return
	}

	h.bucket.UpdateConfig(*req.Capacity, *req.RefillRate)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UpdateResponse{
		Message: "Rate limit updated",
		NewConfig: NewConfig{
			Capacity:   *req.Capacity,
			RefillRate: *req.RefillRate,
		},
	})
}

// Health handles GET /health requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "ratelimiter",
	})
}

func (h *Handler) sendError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
