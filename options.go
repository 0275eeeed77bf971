package chefbot

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zoobzio/pipz"
)

// Option wraps the model pipeline shared by every stage of a Chef.
// Each stage issues at most one logical model call per invocation; options
// decide how that call is attempted. With no options a call is one attempt
// bounded only by the provider's HTTP timeout.
type Option func(pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest]

// WithRetry repeats a failed stage call immediately, up to maxAttempts in
// total. Each attempt re-sends the same rendered prompt.
func WithRetry(maxAttempts int) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewRetry("retry", pipeline, maxAttempts)
	}
}

// WithBackoff is WithRetry with a pause between attempts that starts at
// baseDelay and doubles, suited to a local model server that is still loading.
func WithBackoff(maxAttempts int, baseDelay time.Duration) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewBackoff("backoff", pipeline, maxAttempts, baseDelay)
	}
}

// WithTimeout bounds each stage call. The deadline applies per call, so an
// ingredient invocation may spend up to three times duration in total.
func WithTimeout(duration time.Duration) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewTimeout("timeout", pipeline, duration)
	}
}

// WithCircuitBreaker stops calling the model after failures consecutive
// failed stage calls and fails fast until recovery has elapsed. The breaker
// is shared by every invocation on the Chef.
func WithCircuitBreaker(failures int, recovery time.Duration) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewCircuitBreaker("circuit-breaker", pipeline, failures, recovery)
	}
}

// WithRateLimit caps stage calls across all invocations at rps per second
// with the given burst, keeping a single local model from being flooded.
func WithRateLimit(rps float64, burst int) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		rateLimiter := pipz.NewRateLimiter[*ModelRequest]("rate-limit", rps, burst)
		return pipz.NewSequence("rate-limited", rateLimiter, pipeline)
	}
}

// WithErrorHandler passes failed stage calls to handler for observation.
// The failure still aborts the invocation.
func WithErrorHandler(handler pipz.Chainable[*pipz.Error[*ModelRequest]]) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewHandle("error-handler", pipeline, handler)
	}
}

// PipelineProvider exposes a model pipeline for composition. *Model implements it.
type PipelineProvider interface {
	GetPipeline() pipz.Chainable[*ModelRequest]
}

// WithFallback sends a failed stage call to a second model, typically a
// smaller one on the same server. The stage sees whichever reply succeeds.
func WithFallback(fallback PipelineProvider) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.NewFallback("with-fallback", pipeline, fallback.GetPipeline())
	}
}

// WithDebug writes each stage's rendered prompt and the untrimmed model reply
// to w.
func WithDebug(w io.Writer) Option {
	return func(pipeline pipz.Chainable[*ModelRequest]) pipz.Chainable[*ModelRequest] {
		return pipz.Apply("debug", func(ctx context.Context, req *ModelRequest) (*ModelRequest, error) {
			fmt.Fprintf(w, "\n=== DEBUG: Prompt (%s) ===\n%s\n", req.Stage, req.Prompt)

			processed, err := pipeline.Process(ctx, req)
			if err != nil {
				fmt.Fprintf(w, "\n=== DEBUG: Error ===\n%v\n", err)
				return processed, err
			}

			fmt.Fprintf(w, "\n=== DEBUG: Raw Response ===\n%s\n", processed.Response)
			return processed, nil
		})
	}
}
