package shutdown

import (
	"context"
	"errors"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/telemetry/logger"
)

type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) hook(name string, err error) Hook {
	return func(context.Context) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.order = append(r.order, name)
		return err
	}
}

func (r *recorder) calls() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.order, ",")
}

func TestNewHandler(t *testing.T) {
	h := NewHandler(5 * time.Second)
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if len(h.signals) != 2 {
		t.Errorf("signals = %v", h.signals)
	}
	if h.done == nil {
		t.Error("done channel should be initialized")
	}
}

func TestHandler_Wait_WithSignal(t *testing.T) {
	h := NewHandler(5*time.Second, WithLogger(logger.Discard()), WithSignals(syscall.SIGUSR1))
	rec := &recorder{}
	h.OnShutdown("store", rec.hook("store", nil))
	h.OnShutdown("redis", rec.hook("redis", nil))
	h.OnShutdown("http", rec.hook("http", nil))

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(context.Background()) }()

	// Give Wait time to set up the signal handler.
	time.Sleep(50 * time.Millisecond)
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatal(err)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not complete in time")
	}

	if got := rec.calls(); got != "http,redis,store" {
		t.Errorf("hooks called in order %s, want http,redis,store", got)
	}
	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Wait_ContextCancel(t *testing.T) {
	h := NewHandler(time.Second, WithLogger(logger.Discard()))
	rec := &recorder{}
	h.OnShutdown("only", rec.hook("only", nil))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after cancel")
	}
	if rec.calls() != "only" {
		t.Errorf("calls = %q", rec.calls())
	}
}

func TestHandler_Shutdown_HookErrors(t *testing.T) {
	h := NewHandler(time.Second, WithLogger(logger.Discard()))
	rec := &recorder{}
	errA := errors.New("a failed")
	errC := errors.New("c failed")
	h.OnShutdown("a", rec.hook("a", errA))
	h.OnShutdown("b", rec.hook("b", nil))
	h.OnShutdown("c", rec.hook("c", errC))

	err := h.Shutdown()
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Fatalf("Shutdown() error = %v, want both hook errors", err)
	}
	if !strings.Contains(err.Error(), "c: c failed") {
		t.Errorf("error %q does not name the hook", err)
	}
	if rec.calls() != "c,b,a" {
		t.Errorf("every hook should run despite errors, got %s", rec.calls())
	}

	// A second call does not rerun hooks.
	if err2 := h.Shutdown(); err2 != err {
		t.Errorf("second Shutdown() = %v", err2)
	}
	if rec.calls() != "c,b,a" {
		t.Errorf("hooks ran twice: %s", rec.calls())
	}
}

func TestHandler_Shutdown_Timeout(t *testing.T) {
	h := NewHandler(20*time.Millisecond, WithLogger(logger.Discard()))
	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := h.Shutdown()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() error = %v, want deadline exceeded", err)
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(time.Second, WithLogger(logger.Discard()))
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("n", func(context.Context) error {
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if err := h.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if count != 100 {
		t.Errorf("count = %d, want 100", count)
	}
}
