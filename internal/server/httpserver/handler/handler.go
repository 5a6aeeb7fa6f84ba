package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

// RESPServer is the view of the RESP server used by the admin API.
type RESPServer interface {
	ConnectedClients() int
	TotalConnections() uint64
	Processed() uint64
}

// Config holds the handler dependencies.
type Config struct {
	Store  *memory.Store
	Server RESPServer
	// Ready reports readiness; nil means always ready.
	Ready func() bool
	// Settings is served by GET /admin/v1/config. It must already be
	// sanitized.
	Settings any
	// SweepSample is passed to Store.Sweep by the expire trigger.
	SweepSample int
	Logger      logger.Logger
}

// Handler serves the admin endpoints.
type Handler struct {
	cfg     Config
	started time.Time
	mux     *http.ServeMux
}

// New creates a Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.SweepSample <= 0 {
		cfg.SweepSample = 20
	}
	h := &Handler{
		cfg:     cfg,
		started: time.Now(),
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/expire/trigger", h.handleExpireTrigger)
	h.mux.HandleFunc("GET /admin/v1/config", h.handleConfig)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.write(w, status, NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	h.write(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message))
}

func (h *Handler) write(w http.ResponseWriter, status int, body *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.cfg.Logger.Error("failed to encode response", "error", err)
	}
}
