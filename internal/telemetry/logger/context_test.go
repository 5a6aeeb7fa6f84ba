package logger

import (
	"bytes"
	"context"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("from ctx")
	if buf.Len() == 0 {
		t.Fatal("logger from context did not write")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("FromContext without logger should return Default()")
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if ConnIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" {
		t.Fatal("empty context returned IDs")
	}

	ctx = WithConnID(ctx, "01J0CONN")
	ctx = WithRequestID(ctx, "req-1")
	if got := ConnIDFromContext(ctx); got != "01J0CONN" {
		t.Errorf("ConnIDFromContext() = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q", got)
	}
}

func TestL(t *testing.T) {
	tests := []struct {
		name     string
		connID   string
		reqID    string
		wantConn bool
		wantReq  bool
	}{
		{name: "no ids"},
		{name: "conn id", connID: "c1", wantConn: true},
		{name: "request id", reqID: "r1", wantReq: true},
		{name: "both", connID: "c1", reqID: "r1", wantConn: true, wantReq: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

			ctx := WithLogger(context.Background(), l)
			if tt.connID != "" {
				ctx = WithConnID(ctx, tt.connID)
			}
			if tt.reqID != "" {
				ctx = WithRequestID(ctx, tt.reqID)
			}
			L(ctx).Info("msg")

			line := decodeLines(t, &buf)[0]
			if _, ok := line["conn_id"]; ok != tt.wantConn {
				t.Errorf("conn_id present = %v, want %v", ok, tt.wantConn)
			}
			if _, ok := line["request_id"]; ok != tt.wantReq {
				t.Errorf("request_id present = %v, want %v", ok, tt.wantReq)
			}
		})
	}
}

func TestContextKeyCollision(t *testing.T) {
	// Plain string keys with the same text must not collide with ours.
	ctx := context.WithValue(context.Background(), "respkv.conn_id", "foreign") //nolint:staticcheck
	if got := ConnIDFromContext(ctx); got != "" {
		t.Errorf("ConnIDFromContext() = %q, want empty", got)
	}
}
