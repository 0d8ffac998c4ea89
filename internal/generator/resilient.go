package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/failsafe-go/failsafe-go/timeout"
)

const (
	defaultRetryDelay    = 2 * time.Second
	defaultMaxRetryDelay = 30 * time.Second
)

var errEmptyOutput = errors.New("generator returned empty text")

// FallbackFunc returns substitute text for now. It must never return an
// empty string.
type FallbackFunc func(now time.Time) string

type ResilientConfig struct {
	// Timeout bounds every attempt. Zero disables it.
	Timeout       time.Duration
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// Resilient runs a Generator under a timeout and retry policy and replaces
// any failure with fallback content.
type Resilient struct {
	generator Generator
	executor  failsafe.Executor[string]
	fallback  FallbackFunc
	log       *slog.Logger
}

func NewResilient(
	g Generator,
	cfg ResilientConfig,
	fallback FallbackFunc,
	log *slog.Logger,
) *Resilient {
	return &Resilient{
		generator: g,
		executor:  failsafe.With(policies(cfg)...),
		fallback:  fallback,
		log:       log,
	}
}

func policies(cfg ResilientConfig) []failsafe.Policy[string] {
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = max(defaultMaxRetryDelay, cfg.RetryDelay)
	}

	retry := retrypolicy.NewBuilder[string]().
		WithMaxRetries(max(cfg.MaxRetries, 0)).
		WithBackoff(cfg.RetryDelay, cfg.MaxRetryDelay).
		AbortOnErrors(context.Canceled).
		Build()

	if cfg.Timeout <= 0 {
		return []failsafe.Policy[string]{retry}
	}

	// Retry is outermost so every attempt gets its own time limit.
	return []failsafe.Policy[string]{retry, timeout.New[string](cfg.Timeout)}
}

// Generate returns generated text, or fallback text with fallback set to
// true. The returned text is never empty.
func (r *Resilient) Generate(ctx context.Context, prompt string, now time.Time) (string, bool) {
	start := time.Now()

	text, err := r.executor.WithContext(ctx).GetWithExecution(func(exec failsafe.Execution[string]) (string, error) {
		return r.attempt(exec.Context(), prompt)
	})
	if err == nil {
		r.log.InfoContext(ctx, "Post is generated",
			"length", len(text),
			"durationSeconds", time.Since(start).Seconds())

		return text, false
	}

	r.log.ErrorContext(ctx, "Failed to generate post so fallback will be used",
		"error", err,
		"durationSeconds", time.Since(start).Seconds())

	return r.fallbackText(now), true
}

func (r *Resilient) attempt(ctx context.Context, prompt string) (text string, err error) {
	if r.generator == nil {
		return "", errors.New("generator is not configured")
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("generator panicked: %v", p)
		}
	}()

	text, err = r.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyOutput
	}

	return text, nil
}

func (r *Resilient) fallbackText(now time.Time) string {
	if r.fallback != nil {
		if text := strings.TrimSpace(r.fallback(now)); text != "" {
			return text
		}
	}

	return "💻 " + now.Format("15:04")
}
