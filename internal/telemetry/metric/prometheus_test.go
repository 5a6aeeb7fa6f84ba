package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.registry == nil {
		t.Fatal("registry field is nil")
	}
	if r.CommandsTotal == nil || r.CommandErrors == nil || r.CommandDuration == nil {
		t.Error("command metrics not initialized")
	}

	body := scrape(t, r)
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestRegistry_Observe(t *testing.T) {
	r := NewRegistry()

	r.Observe("get", "", time.Millisecond)
	r.Observe("get", "", 2*time.Millisecond)
	r.Observe("incr", domain.KindNotAnInteger.String(), time.Microsecond)
	r.Observe("unknown", domain.KindUnknownCommand.String(), time.Microsecond)

	body := scrape(t, r)
	for _, want := range []string{
		`respkv_commands_total{cmd="get"} 2`,
		`respkv_commands_total{cmd="incr"} 1`,
		`respkv_command_errors_total{cmd="incr",kind="not_an_integer"} 1`,
		`respkv_command_errors_total{cmd="unknown",kind="unknown_command"} 1`,
		`respkv_command_duration_seconds_count{cmd="get"} 2`,
		"respkv_command_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
	if strings.Contains(body, `respkv_command_errors_total{cmd="get"`) {
		t.Error("successful command counted as error")
	}
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()

	r.ConnOpened()
	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()
	r.ConnRejected("max_clients")

	body := scrape(t, r)
	for _, want := range []string{
		"respkv_connected_clients 2",
		"respkv_connections_received_total 3",
		`respkv_connections_rejected_total{reason="max_clients"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestRegistry_Keyspace(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := memory.New(memory.WithClock(clock))

	if _, err := store.Set("a", domain.String("1"), memory.SetOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Set("b", domain.String("2"), memory.SetOptions{ExpireAt: store.Now() + 1000}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Set("c", domain.String("3"), memory.SetOptions{ExpireAt: store.Now() + 10}); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.RegisterKeyspace(store); err != nil {
		t.Fatalf("RegisterKeyspace() error = %v", err)
	}

	mu.Lock()
	now = now.Add(100 * time.Millisecond)
	mu.Unlock()
	store.Get("c")

	body := scrape(t, r)
	for _, want := range []string{
		"respkv_keyspace_keys 2",
		"respkv_keyspace_volatile_keys 1",
		"respkv_keyspace_expired_keys_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in\n%s", want, body)
		}
	}

	if err := r.RegisterKeyspace(store); err == nil {
		t.Error("registering the keyspace collector twice should fail")
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ConnOpened()
				r.Observe("set", "", time.Microsecond)
				r.ConnClosed()
			}
		}()
	}
	wg.Wait()

	body := scrape(t, r)
	if !strings.Contains(body, `respkv_commands_total{cmd="set"} 1000`) {
		t.Error("expected 1000 set commands")
	}
	if !strings.Contains(body, "respkv_connected_clients 0") {
		t.Error("expected 0 connected clients")
	}
}
