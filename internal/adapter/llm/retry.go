package llm

import (
	"context"
	"time"

	"docgen/internal/domain"
	"docgen/internal/port"
)

// Retrying wraps a Generator with bounded retry and exponential backoff.
// Only transient failures are retried; auth and other permanent errors
// return immediately.
type Retrying struct {
	next  port.Generator
	max   int
	base  time.Duration
	cap   time.Duration
	sleep func(time.Duration)
}

// WithRetry wraps next so each Generate runs up to maxRetries+1 attempts
// with delays base, 2*base, 4*base, ... capped at limit.
func WithRetry(next port.Generator, maxRetries int, base, limit time.Duration) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if base <= 0 {
		base = time.Second
	}
	if limit <= 0 {
		limit = 8 * time.Second
	}
	return &Retrying{next: next, max: maxRetries, base: base, cap: limit, sleep: time.Sleep}
}

func (r *Retrying) Provider() string  { return r.next.Provider() }
func (r *Retrying) ModelName() string { return r.next.ModelName() }

func (r *Retrying) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResponse, error) {
	var last error
	for attempt := 0; attempt <= r.max; attempt++ {
		if attempt > 0 {
			delay := r.base << (attempt - 1)
			if delay > r.cap {
				delay = r.cap
			}
			r.sleep(delay)
		}

		resp, err := r.next.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !domain.IsTransient(err) {
			return domain.GenerationResponse{}, err
		}
		last = err

		select {
		case <-ctx.Done():
			return domain.GenerationResponse{}, ctx.Err()
		default:
		}
	}
	return domain.GenerationResponse{}, last
}
