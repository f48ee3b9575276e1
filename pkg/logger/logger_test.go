package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := context.WithValue(context.Background(), RequestIdKey, "req-1")
	ctx = WithUserID(ctx, "user-7")
	l.InfoCtx(ctx, "message sent")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" {
		t.Errorf("request_id = %v", fields["request_id"])
	}
	if fields["user_id"] != "user-7" {
		t.Errorf("user_id = %v", fields["user_id"])
	}
}

func TestOrNopFallsBack(t *testing.T) {
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(nil)
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}

	global := NewNop()
	SetGlobalLogger(global)
	if OrNop(nil) != global {
		t.Fatal("OrNop should prefer the global logger")
	}
}
