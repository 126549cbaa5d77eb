package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FOURIER-Inc/mocopi-parser/internal/config"
	"github.com/FOURIER-Inc/mocopi-parser/internal/metrics"
	"github.com/FOURIER-Inc/mocopi-parser/internal/session"
)

// HTTPServer provides HTTP API endpoints for monitoring and management
type HTTPServer struct {
	server     *http.Server
	logger     *slog.Logger
	config     *config.Config
	sessionMgr *session.Manager
	udpServer  *UDPServer
	metrics    *metrics.Metrics

	// Server state
	startTime time.Time
	mu        sync.RWMutex
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, sessionMgr *session.Manager, udpServer *UDPServer, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:     logger,
		config:     appConfig,
		sessionMgr: sessionMgr,
		udpServer:  udpServer,
		metrics:    m,
		startTime:  time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Session monitoring endpoints
	mux.HandleFunc("/sessions", h.withMetrics("/sessions", h.handleSessions))
	mux.HandleFunc("/sessions/", h.withMetrics("/sessions/{source}", h.handleSessionDetail))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Response writer wrapper to capture the status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	udpStats := h.udpServer.GetStatistics()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "mocopi-parser",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"udp_server": map[string]interface{}{
				"status":           "running",
				"packets_received": udpStats.PacketsReceived,
				"packets_decoded":  udpStats.PacketsDecoded,
				"decode_errors":    udpStats.DecodeErrors,
				"queue_size":       udpStats.QueueSize,
			},
			"session_manager": map[string]interface{}{
				"status":          "running",
				"active_sessions": udpStats.ActiveSessions,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleSessions implements the /sessions endpoint
func (h *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions := h.sessionMgr.GetAllSessions()
	sessionInfos := make([]session.SessionInfo, 0, len(sessions))

	for _, s := range sessions {
		sessionInfos = append(sessionInfos, s.GetSessionInfo())
	}

	response := map[string]interface{}{
		"total_sessions": len(sessionInfos),
		"timestamp":      time.Now().UTC(),
		"sessions":       sessionInfos,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleSessionDetail implements the /sessions/{source} endpoint. The source
// is the sender's UDP address as reported by /sessions.
func (h *HTTPServer) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := r.URL.Path[len("/sessions/"):]
	if source == "" {
		http.Error(w, "Session source required", http.StatusBadRequest)
		return
	}

	s, exists := h.sessionMgr.GetSession(source)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.GetSessionInfo())
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"server": map[string]interface{}{
			"udp_port":     h.config.Server.UDPPort,
			"bind_address": h.config.Server.BindAddress,
			"buffer_size":  h.config.Server.BufferSize,
			"workers":      h.config.Server.Workers,
			"queue_size":   h.config.Server.QueueSize,
		},
		"decoder": map[string]interface{}{
			"skeleton_address": h.config.Decoder.SkeletonAddress,
			"frame_address":    h.config.Decoder.FrameAddress,
			"max_bundle_depth": h.config.Decoder.MaxBundleDepth,
		},
		"session": map[string]interface{}{
			"timeout":       h.config.Session.Timeout,
			"frame_history": h.config.Session.FrameHistory,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	udpStats := h.udpServer.GetStatistics()
	uptime := time.Since(h.startTime)

	stats := map[string]interface{}{
		"uptime":    uptime.String(),
		"timestamp": time.Now().UTC(),
		"udp": map[string]interface{}{
			"packets_received": udpStats.PacketsReceived,
			"packets_decoded":  udpStats.PacketsDecoded,
			"decode_errors":    udpStats.DecodeErrors,
			"queue_size":       udpStats.QueueSize,
			"queue_capacity":   udpStats.QueueCapacity,
		},
		"sessions": map[string]interface{}{
			"active_count": h.sessionMgr.GetActiveSessionCount(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "mocopi Motion Capture Parser",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":                  "API documentation",
			"GET /health":            "Service health check",
			"GET /sessions":          "List all active capture sessions",
			"GET /sessions/{source}": "Get detailed session information",
			"GET /config":            "Get service configuration",
			"GET /stats":             "Get service statistics",
			"GET /metrics":           "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
