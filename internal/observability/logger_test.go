package observability

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		level        string
		wantErr      bool
		debugEnabled bool
	}{
		{name: "debug enables debug entries", level: "debug", debugEnabled: true},
		{name: "info suppresses debug entries", level: "info"},
		{name: "warn suppresses debug entries", level: "warn"},
		{name: "empty level defaults to info", level: ""},
		{name: "unknown level is rejected", level: "loud", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger, err := NewLogger(tc.level)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if logger != nil {
					t.Fatal("expected nil logger on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.debugEnabled {
				t.Fatalf("debug enabled=%v, want=%v", got, tc.debugEnabled)
			}
		})
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithCorrelationID(context.Background(), "req-7f3a")

	got, ok := CorrelationIDFromContext(ctx)
	if !ok {
		t.Fatal("expected correlation id to be present")
	}
	if got != "req-7f3a" {
		t.Fatalf("correlation id=%q, want=%q", got, "req-7f3a")
	}

	if _, ok := CorrelationIDFromContext(context.Background()); ok {
		t.Fatal("expected no correlation id on a fresh context")
	}
}

func TestWithContextLogger(t *testing.T) {
	t.Parallel()

	t.Run("attaches correlation field", func(t *testing.T) {
		t.Parallel()

		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := WithCorrelationID(context.Background(), "req-11d9")

		WithContextLogger(zap.New(core), ctx).Info("status committed")

		entries := recorded.All()
		if len(entries) != 1 {
			t.Fatalf("entries=%d, want=1", len(entries))
		}
		if got := entries[0].ContextMap()["correlationId"]; got != "req-11d9" {
			t.Fatalf("correlationId=%v, want=%q", got, "req-11d9")
		}
	})

	t.Run("no correlation id adds no field", func(t *testing.T) {
		t.Parallel()

		core, recorded := observer.New(zapcore.InfoLevel)

		WithContextLogger(zap.New(core), context.Background()).Info("status committed")

		entries := recorded.All()
		if len(entries) != 1 {
			t.Fatalf("entries=%d, want=1", len(entries))
		}
		if _, ok := entries[0].ContextMap()["correlationId"]; ok {
			t.Fatal("expected no correlationId field")
		}
	})

	t.Run("nil logger stays nil", func(t *testing.T) {
		t.Parallel()

		if got := WithContextLogger(nil, context.Background()); got != nil {
			t.Fatal("expected nil logger")
		}
	})
}
