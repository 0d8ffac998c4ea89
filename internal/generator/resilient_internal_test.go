package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

const fallbackText = "fallback post"

type stubGenerator struct {
	mu        sync.Mutex
	calls     int
	responses []stubResponse
}

type stubResponse struct {
	text  string
	err   error
	delay time.Duration
	panic bool
}

func (s *stubGenerator) Generate(ctx context.Context, _ string) (string, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()

	resp := s.responses[min(i, len(s.responses)-1)]

	if resp.panic {
		panic("boom")
	}

	if resp.delay > 0 {
		select {
		case <-time.After(resp.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return resp.text, resp.err
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func staticFallback(time.Time) string {
	return fallbackText
}

func newTestResilient(g Generator, cfg ResilientConfig) *Resilient {
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Millisecond
		cfg.MaxRetryDelay = time.Millisecond
	}

	return NewResilient(g, cfg, staticFallback, slog.Default())
}

func TestResilientReturnsTrimmedText(t *testing.T) {
	stub := &stubGenerator{responses: []stubResponse{{text: "  generated post \n"}}}
	r := newTestResilient(stub, ResilientConfig{})

	text, fallback := r.Generate(context.Background(), "prompt", time.Now())
	if fallback {
		t.Fatalf("expected generated text")
	}

	if text != "generated post" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestResilientFallsBack(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		cfg  ResilientConfig
	}{
		{
			"Error",
			&stubGenerator{responses: []stubResponse{{err: errors.New("quota exceeded")}}},
			ResilientConfig{},
		},
		{
			"Empty output",
			&stubGenerator{responses: []stubResponse{{text: "   "}}},
			ResilientConfig{},
		},
		{
			"Panic",
			&stubGenerator{responses: []stubResponse{{panic: true}}},
			ResilientConfig{},
		},
		{
			"Timeout",
			&stubGenerator{responses: []stubResponse{{text: "late", delay: time.Second}}},
			ResilientConfig{Timeout: 10 * time.Millisecond},
		},
		{
			"Nil generator",
			nil,
			ResilientConfig{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := newTestResilient(test.gen, test.cfg)

			text, fallback := r.Generate(context.Background(), "prompt", time.Now())
			if !fallback {
				t.Fatalf("expected fallback, got %q", text)
			}

			if text != fallbackText {
				t.Fatalf("unexpected fallback text: %q", text)
			}
		})
	}
}

func TestResilientRetriesBeforeFallback(t *testing.T) {
	stub := &stubGenerator{responses: []stubResponse{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{text: "third time lucky"},
	}}
	r := newTestResilient(stub, ResilientConfig{MaxRetries: 2})

	text, fallback := r.Generate(context.Background(), "prompt", time.Now())
	if fallback || text != "third time lucky" {
		t.Fatalf("expected generated text after retries, got %q (fallback = %v)", text, fallback)
	}

	if got := stub.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestResilientSingleAttemptByDefault(t *testing.T) {
	stub := &stubGenerator{responses: []stubResponse{{err: errors.New("unavailable")}}}
	r := newTestResilient(stub, ResilientConfig{})

	if _, fallback := r.Generate(context.Background(), "prompt", time.Now()); !fallback {
		t.Fatalf("expected fallback")
	}

	if got := stub.callCount(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestResilientEmptyFallbackStillNonEmpty(t *testing.T) {
	r := NewResilient(
		GeneratorFunc(func(context.Context, string) (string, error) { return "", errors.New("down") }),
		ResilientConfig{},
		func(time.Time) string { return "" },
		slog.Default(),
	)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	text, fallback := r.Generate(context.Background(), "prompt", now)
	if !fallback || strings.TrimSpace(text) == "" {
		t.Fatalf("expected non-empty fallback, got %q", text)
	}
}
