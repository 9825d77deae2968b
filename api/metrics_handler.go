package api

import (
	"net/http"

	"github.com/yourusername/floodgate/core"
	"github.com/yourusername/floodgate/metrics"
)

// MetricsProvider defines the interface for getting counter snapshots
type MetricsProvider interface {
	GetSnapshot() *metrics.Snapshot
}

// BucketStatusProvider reports the live state of the bucket
type BucketStatusProvider interface {
	Snapshot() core.Status
}

// MetricsHandler handles GET /metrics requests
type MetricsHandler struct {
	provider MetricsProvider
	bucket   BucketStatusProvider
}

// MetricsResponse combines counters with the live bucket state.
type MetricsResponse struct {
	*metrics.Snapshot
	Bucket BucketPayload `json:"bucket"`
}

// BucketPayload is the wire form of the bucket state.
type BucketPayload struct {
	Tokens     float64 `json:"tokens"`
	Capacity   float64 `json:"capacity"`
	RefillRate float64 `json:"refill_rate"`
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(provider MetricsProvider, bucket BucketStatusProvider) *MetricsHandler {
	return &MetricsHandler{provider: provider, bucket: bucket}
}

// ServeHTTP handles the metrics endpoint
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*") // Allow dashboard to fetch
	writeJSON(w, http.StatusOK, buildMetricsResponse(h.provider, h.bucket))
}

func buildMetricsResponse(provider MetricsProvider, bucket BucketStatusProvider) MetricsResponse {
	status := bucket.Snapshot()
	return MetricsResponse{
		Snapshot: provider.GetSnapshot(),
		Bucket: BucketPayload{
			Tokens:     status.Tokens,
			Capacity:   status.Capacity,
			RefillRate: status.RefillRate,
		},
	}
}
