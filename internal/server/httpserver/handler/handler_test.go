package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
)

type fakeServer struct {
	clients   int
	total     uint64
	processed uint64
}

func (f fakeServer) ConnectedClients() int    { return f.clients }
func (f fakeServer) TotalConnections() uint64 { return f.total }
func (f fakeServer) Processed() uint64        { return f.processed }

// decode unmarshals the envelope and its data into data.
func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return raw.Response
}

func TestHandler_Health(t *testing.T) {
	h := New(Config{Logger: logger.Discard()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var data map[string]string
	resp := decode(t, rec, &data)
	if resp.Code != "OK" {
		t.Errorf("code = %q, want OK", resp.Code)
	}
	if data["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", data["status"])
	}
}

func TestHandler_Ready(t *testing.T) {
	tests := []struct {
		name  string
		ready func() bool
		want  int
	}{
		{"nil func", nil, http.StatusOK},
		{"ready", func() bool { return true }, http.StatusOK},
		{"not ready", func() bool { return false }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(Config{Ready: tt.ready, Logger: logger.Discard()})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				resp := decode(t, rec, nil)
				if resp.Code != CodeNotReady {
					t.Errorf("code = %q, want %q", resp.Code, CodeNotReady)
				}
				if got := rec.Header().Get("X-Error-Code"); got != CodeNotReady {
					t.Errorf("X-Error-Code = %q", got)
				}
			}
		})
	}
}

func TestHandler_AdminStatus(t *testing.T) {
	store := memory.New(memory.WithShardCount(4))
	if _, err := store.Set("a", domain.String("1"), memory.SetOptions{}); err != nil {
		t.Fatal(err)
	}
	exp := time.Now().Add(time.Hour).UnixMilli()
	if _, err := store.Set("b", domain.String("2"), memory.SetOptions{ExpireAt: exp}); err != nil {
		t.Fatal(err)
	}
	h := New(Config{
		Store:  store,
		Server: fakeServer{clients: 2, total: 7, processed: 42},
		Logger: logger.Discard(),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/v1/status/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var sum StatusSummary
	decode(t, rec, &sum)
	if sum.Keys != 2 || sum.VolatileKeys != 1 {
		t.Errorf("keys = %d volatile = %d, want 2 and 1", sum.Keys, sum.VolatileKeys)
	}
	if sum.ConnectedClients != 2 || sum.TotalConnections != 7 || sum.CommandsTotal != 42 {
		t.Errorf("server counters = %+v", sum)
	}
	if sum.Version == "" {
		t.Error("version is empty")
	}
}

func TestHandler_ExpireTrigger(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := memory.New(memory.WithClock(clock), memory.WithShardCount(4))
	for _, k := range []string{"x", "y", "z"} {
		if _, err := store.Set(k, domain.String("v"), memory.SetOptions{ExpireAt: now.UnixMilli() + 10}); err != nil {
			t.Fatal(err)
		}
	}
	now = now.Add(time.Second)

	h := New(Config{Store: store, Logger: logger.Discard()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/v1/expire/trigger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var res ExpireTriggerResult
	decode(t, rec, &res)
	if res.Removed != 3 {
		t.Errorf("removed = %d, want 3", res.Removed)
	}
	if st := store.Stats(); st.Expired != 3 {
		t.Errorf("expired counter = %d, want 3", st.Expired)
	}
}

func TestHandler_ExpireTriggerMethod(t *testing.T) {
	h := New(Config{Store: memory.New(), Logger: logger.Discard()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/v1/expire/trigger", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandler_ExpireTriggerNoStore(t *testing.T) {
	h := New(Config{Logger: logger.Discard()})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/v1/expire/trigger", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandler_Config(t *testing.T) {
	h := New(Config{
		Settings: map[string]string{"password": "***"},
		Logger:   logger.Discard(),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/v1/config", nil))
	var data map[string]string
	decode(t, rec, &data)
	if data["password"] != "***" {
		t.Errorf("password = %q", data["password"])
	}
}

func TestResponse_RequestID(t *testing.T) {
	h := New(Config{Logger: logger.Discard()})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req = req.WithContext(logger.WithRequestID(req.Context(), "req-123"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := decode(t, rec, nil)
	if resp.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", resp.RequestID)
	}
	if resp.Timestamp == 0 {
		t.Error("timestamp is zero")
	}
}
