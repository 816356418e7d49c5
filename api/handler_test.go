package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cristobalvch/ratelimiter-code-challenge/bucket"
	"github.com/cristobalvch/ratelimiter-code-challenge/metrics"
)

func TestLimited_ReturnsMessage(t *testing.T) {
	handler := NewHandler(bucket.New(5, 0.5))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.Limited(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["message"] != "Rate Limiter Code Challenge!" {
		t.Errorf("message = %q, want %q", resp["message"], "Rate Limiter Code Challenge!")
	}
}

func TestUpdateConfig_AppliesNewConfig(t *testing.T) {
	b := bucket.New(5, 0.5)
	handler := NewHandler(b)

	body := []byte(`{"capacity": 10, "refill_rate": 2.0}`)
	req := httptest.NewRequest(http.MethodPost, "/update", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	handler.UpdateConfig(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var resp UpdateResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if resp.Message != "Rate limit updated" {
		t.Errorf("Message = %q, want %q", resp.Message, "Rate limit updated")
	}
	if resp.NewConfig.Capacity != 10 {
		t.Errorf("NewConfig.Capacity = %d, want 10", resp.NewConfig.Capacity)
	}
	if resp.NewConfig.RefillRate != 2.0 {
		t.Errorf("NewConfig.RefillRate = %f, want 2.0", resp.NewConfig.RefillRate)
	}

	snap := b.Snapshot()
	if snap.Capacity != 10 || snap.RefillRate != 2.0 {
		t.Errorf("bucket config = (%d, %f), want (10, 2.0)", snap.Capacity, snap.RefillRate)
	}
}

func TestUpdateConfig_ShrinkClampsBucket(t *testing.T) {
	b := bucket.New(5, 1) // full: 5 tokens
	handler := NewHandler(b)

	body := []byte(`{"capacity": 3, "refill_rate": 1.0}`)
	req := httptest.NewRequest(http.MethodPost, "/update", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	handler.UpdateConfig(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if snap := b.Snapshot(); snap.Tokens > 3 {
		t.Errorf("Tokens = %f, want <= 3 after shrink", snap.Tokens)
	}
}

func TestUpdateConfig_Validation(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "rejects GET",
			method:     http.MethodGet,
			body:       `{"capacity": 10, "refill_rate": 2.0}`,
			wantStatus: http.StatusMethodNotAllowed,
			wantError:  "method_not_allowed",
		},
		{
			name:       "rejects invalid JSON",
			method:     http.MethodPost,
			body:       `{"capacity": `,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
		{
			name:       "rejects non-numeric capacity",
			method:     http.MethodPost,
			body:       `{"capacity": "lots", "refill_rate": 2.0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
		{
			name:       "rejects missing capacity",
			method:     http.MethodPost,
			body:       `{"refill_rate": 2.0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_capacity",
		},
		{
			name:       "rejects missing refill rate",
			method:     http.MethodPost,
			body:       `{"capacity": 10}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_refill_rate",
		},
		{
			name:       "rejects negative capacity",
			method:     http.MethodPost,
			body:       `{"capacity": -1, "refill_rate": 2.0}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_capacity",
		},
		{
			name:       "rejects negative refill rate",
			method:     http.MethodPost,
			body:       `{"capacity": 10, "refill_rate": -0.5}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_refill_rate",
		},
		{
			name:       "accepts zero values",
			method:     http.MethodPost,
			body:       `{"capacity": 0, "refill_rate": 0}`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bucket.New(5, 0.5)
			handler := NewHandler(b)

			req := httptest.NewRequest(tt.method, "/update", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.UpdateConfig(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantError == "" {
				return
			}

			var resp ErrorResponse
			json.NewDecoder(w.Body).Decode(&resp)
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}

			// Rejected updates must not touch the bucket
			if snap := b.Snapshot(); snap.Capacity != 5 || snap.RefillRate != 0.5 {
				t.Errorf("bucket config changed to (%d, %f) on rejected update", snap.Capacity, snap.RefillRate)
			}
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	m := metrics.NewMetrics()
	m.RecordRequest(true)
	m.RecordRequest(false)

	handler := NewMetricsHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var snap metrics.Snapshot
	json.NewDecoder(w.Body).Decode(&snap)
	if snap.TotalRequests != 2 || snap.AllowedRequests != 1 || snap.DeniedRequests != 1 {
		t.Errorf("snapshot = %+v, want totals (2, 1, 1)", snap)
	}

	// Non-GET is rejected
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestHealth(t *testing.T) {
	handler := NewHandler(bucket.New(5, 0.5))

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["status"] != "healthy" {
		t.Errorf("status = %q, want %q", resp["status"], "healthy")
	}
}
