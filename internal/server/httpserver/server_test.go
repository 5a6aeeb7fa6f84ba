package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/server/httpserver/handler"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

func TestServer_StartShutdown(t *testing.T) {
	s := New("127.0.0.1:0", okHandler, logger.Discard())
	if s.Addr() != nil {
		t.Fatal("Addr() should be nil before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	if _, err := http.Get("http://" + s.Addr().String() + "/"); err == nil {
		t.Error("expected request after shutdown to fail")
	}
}

func TestServer_StartBadAddr(t *testing.T) {
	s := New("256.0.0.1:0", okHandler, logger.Discard())
	if err := s.Start(); err == nil {
		t.Fatal("expected listen error")
	}
}

func newTestRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.Handler.Store == nil {
		cfg.Handler.Store = memory.New(memory.WithShardCount(4))
	}
	return NewRouter(&cfg)
}

func serve(h http.Handler, method, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_Routes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "respkv_commands_total 1\n")
	})
	r := newTestRouter(RouterConfig{Metrics: metrics})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/admin/v1/status/summary", http.StatusOK},
		{http.MethodPost, "/admin/v1/expire/trigger", http.StatusOK},
		{http.MethodGet, "/admin/v1/config", http.StatusOK},
		{http.MethodGet, "/admin/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/sessions", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(r, tt.method, tt.path, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewRouter_NoMetrics(t *testing.T) {
	r := newTestRouter(RouterConfig{})
	if rec := serve(r, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestNewRouter_AdminACL(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	r := newTestRouter(RouterConfig{
		Metrics:        metrics,
		AdminAllowList: []string{"127.0.0.1"},
	})

	tests := []struct {
		path   string
		remote string
		want   int
	}{
		{"/health", "203.0.113.5:1", http.StatusOK},
		{"/metrics", "203.0.113.5:1", http.StatusForbidden},
		{"/admin/v1/config", "203.0.113.5:1", http.StatusForbidden},
		{"/metrics", "127.0.0.1:1", http.StatusOK},
		{"/admin/v1/config", "127.0.0.1:1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path+" from "+tt.remote, func(t *testing.T) {
			rec := serve(r, http.MethodGet, tt.path, tt.remote)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewRouter_AdminACLForwardedFor(t *testing.T) {
	r := newTestRouter(RouterConfig{
		AdminAllowList: []string{"10.0.0.1"},
		TrustedProxies: []string{"127.0.0.1"},
	})

	tests := []struct {
		name   string
		remote string
		want   int
	}{
		{"direct client header ignored", "203.0.113.9:5555", http.StatusForbidden},
		{"trusted proxy header honored", "127.0.0.1:5555", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/v1/expire/trigger", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "10.0.0.1")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNewRouter_AdminRateLimit(t *testing.T) {
	r := newTestRouter(RouterConfig{AdminRateLimit: 1})

	if rec := serve(r, http.MethodGet, "/admin/v1/config", ""); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/admin/v1/config", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
	if rec := serve(r, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestNewRouter_RequestIDInEnvelope(t *testing.T) {
	r := newTestRouter(RouterConfig{})
	rec := serve(r, http.MethodGet, "/admin/v1/status/summary", "")

	var body handler.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.RequestID == "" || body.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header = %q", body.RequestID, rec.Header().Get("X-Request-ID"))
	}
}
