package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultStreamInterval = time.Second
	streamWriteTimeout    = 10 * time.Second
)

// StreamHandler pushes metrics snapshots over a WebSocket so the dashboard
// gets live updates without polling.
type StreamHandler struct {
	provider MetricsProvider
	bucket   BucketStatusProvider
	logger   *zap.Logger
	interval time.Duration
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a WebSocket handler streaming one snapshot per second.
func NewStreamHandler(provider MetricsProvider, bucket BucketStatusProvider, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		provider: provider,
		bucket:   bucket,
		logger:   logger,
		interval: defaultStreamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The stream carries no sensitive state; the dashboard may be
			// served from another origin during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and streams snapshots until the client
// disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain incoming frames so close messages are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if err := h.writeSnapshot(conn); err != nil {
			h.logger.Debug("metrics stream closed", zap.Error(err))
			return
		}
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}

func (h *StreamHandler) writeSnapshot(conn *websocket.Conn) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(buildMetricsResponse(h.provider, h.bucket))
}
