package connection

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewHTTPClient(t *testing.T) {
	tests := []struct {
		name   string
		server string
		want   string
	}{
		{"with http prefix", "http://localhost:9180", "http://localhost:9180"},
		{"with https prefix", "https://localhost:9180", "https://localhost:9180"},
		{"without prefix", "localhost:9180", "http://localhost:9180"},
		{"trailing slash", "localhost:9180/", "http://localhost:9180"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewHTTPClient(tt.server, 0).BaseURL(); got != tt.want {
				t.Errorf("BaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPClient_GetPost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "respkv-cli" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/v1/status/summary":
			w.Write([]byte(`{"code":"OK","message":"Success","data":{"keys":3}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/admin/v1/expire/trigger":
			w.Write([]byte(`{"code":"OK","message":"Success","data":{"removed":2}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second)

	resp, err := c.Get(context.Background(), "/admin/v1/status/summary")
	if err != nil {
		t.Fatal(err)
	}
	var status struct {
		Keys int `json:"keys"`
	}
	if err := ParseResponse(resp, &status); err != nil {
		t.Fatal(err)
	}
	if status.Keys != 3 {
		t.Errorf("keys = %d, want 3", status.Keys)
	}

	resp, err = c.Post(context.Background(), "/admin/v1/expire/trigger", nil)
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Removed int `json:"removed"`
	}
	if err := ParseResponse(resp, &result); err != nil {
		t.Fatal(err)
	}
	if result.Removed != 2 {
		t.Errorf("removed = %d, want 2", result.Removed)
	}
}

func TestParseResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"envelope error", http.StatusForbidden, `{"code":"FORBIDDEN","message":"IP not in allowlist"}`, "[FORBIDDEN] IP not in allowlist"},
		{"plain error", http.StatusNotFound, `404 page not found`, "status 404"},
		{"bad json", http.StatusOK, `{`, "parse response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := NewHTTPClient(server.URL, time.Second).Get(context.Background(), "/")
			if err != nil {
				t.Fatal(err)
			}
			err = ParseResponse(resp, nil)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
