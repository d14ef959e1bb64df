package ipmatch

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type loggerTestContextKey string

type capturedLogEntry struct {
	ctx   context.Context
	msg   string
	attrs map[string]any
}

type capturedLogger struct {
	mu      sync.Mutex
	entries []capturedLogEntry
}

func (l *capturedLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, capturedLogEntry{
		ctx:   ctx,
		msg:   msg,
		attrs: attrsToMap(args),
	})
}

func (l *capturedLogger) snapshot() []capturedLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]capturedLogEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

func attrsToMap(args []any) map[string]any {
	attrs := make(map[string]any)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		attrs[key] = args[i+1]
	}
	return attrs
}

func assertAttr(t *testing.T, attrs map[string]any, key string, want any) {
	t.Helper()

	got, ok := attrs[key]
	if !ok {
		t.Fatalf("missing %q attr", key)
	}

	if got != want {
		t.Fatalf("%s attr = %v, want %v", key, got, want)
	}
}

func TestLogging_InvalidCandidate_WarnsWithContext(t *testing.T) {
	logger := &capturedLogger{}

	matcher, err := NewMatcher(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	ctx := context.WithValue(context.Background(), loggerTestContextKey("trace_id"), "trace-123")
	if matcher.Contains(ctx, "fake.ip", "10.") {
		t.Fatal("Contains() = true for malformed candidate")
	}

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("logged entries = %d, want 1", len(entries))
	}

	entry := entries[0]
	if got := entry.ctx.Value(loggerTestContextKey("trace_id")); got != "trace-123" {
		t.Fatalf("trace_id = %v, want trace-123", got)
	}
	assertAttr(t, entry.attrs, "event", securityEventInvalidIP)
	assertAttr(t, entry.attrs, "ip", "fake.ip")
}

func TestLogging_UnspecifiedCandidate(t *testing.T) {
	logger := &capturedLogger{}

	matcher, err := NewMatcher(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	matcher.Contains(context.Background(), "::", "::/0")

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("logged entries = %d, want 1", len(entries))
	}
	assertAttr(t, entries[0].attrs, "event", securityEventUnspecifiedIP)
}

func TestLogging_EmptyCandidateIsSilent(t *testing.T) {
	logger := &capturedLogger{}

	matcher, err := NewMatcher(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	matcher.Contains(context.Background(), "  ", "10.")

	if entries := logger.snapshot(); len(entries) != 0 {
		t.Fatalf("logged entries = %d, want 0", len(entries))
	}
}

func TestLogging_MalformedRange(t *testing.T) {
	logger := &capturedLogger{}

	matcher, err := NewMatcher(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	matcher.Contains(context.Background(), "10.0.0.1", "10., 10.0.0.0/99")

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("logged entries = %d, want 1", len(entries))
	}
	assertAttr(t, entries[0].attrs, "event", securityEventMalformedRange)
	assertAttr(t, entries[0].attrs, "range", "10.0.0.0/99")
}

func TestLogging_ChainTooLong(t *testing.T) {
	logger := &capturedLogger{}

	resolver, err := NewResolver(WithLogger(logger), WithMaxChainLength(2))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	ip := resolver.Resolve(context.Background(), []Candidate{
		{Source: SourceXForwardedFor, Value: "1.1.1.1, 2.2.2.2, 3.3.3.3"},
	}, true)
	if ip != "" {
		t.Fatalf("Resolve() = %q, want empty", ip)
	}

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("logged entries = %d, want 1", len(entries))
	}
	assertAttr(t, entries[0].attrs, "event", securityEventChainTooLong)
	assertAttr(t, entries[0].attrs, "source", SourceXForwardedFor)
	assertAttr(t, entries[0].attrs, "max_length", 2)
}

func TestLogging_InvalidChainEntries(t *testing.T) {
	logger := &capturedLogger{}

	resolver, err := NewResolver(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	ip := resolver.Resolve(context.Background(), []Candidate{
		{Source: SourceClientIP, Value: "unknown, 75.184.124.93, junk"},
	}, true)
	if ip != "75.184.124.93" {
		t.Fatalf("Resolve() = %q, want 75.184.124.93", ip)
	}

	entries := logger.snapshot()
	if len(entries) != 1 {
		t.Fatalf("logged entries = %d, want 1", len(entries))
	}
	assertAttr(t, entries[0].attrs, "event", securityEventInvalidIP)
	assertAttr(t, entries[0].attrs, "source", SourceClientIP)
	assertAttr(t, entries[0].attrs, "invalid_count", 2)
}

func TestLogging_SlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	matcher, err := NewMatcher(WithLogger(logger))
	if err != nil {
		t.Fatalf("NewMatcher() error = %v", err)
	}

	matcher.Contains(context.Background(), "10.0.0.1", "not-a-range, 10.")

	out := buf.String()
	for _, want := range []string{"level=WARN", "event=malformed_range", "range=not-a-range"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
