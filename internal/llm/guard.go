package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"radreport-ai/internal/contextutil"
)

// GuardConfig configures a Guard.
type GuardConfig struct {
	Name       string
	Timeout    time.Duration // per attempt
	MaxRetries int           // additional attempts after the first
	RateLimit  float64       // calls per second; 0 disables limiting
}

// Guard wraps a Completer with a per-call deadline, bounded retries,
// a circuit breaker and a rate limiter. Failures surface as ErrTimeout or ErrUnavailable.
type Guard struct {
	next    Completer
	cfg     GuardConfig
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuard creates a Guard around next.
func NewGuard(next Completer, cfg GuardConfig) *Guard {
	if cfg.Name == "" {
		cfg.Name = "llm"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			// Client-side rejections say nothing about endpoint health.
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.Code < 500 && statusErr.Code != http.StatusTooManyRequests
			}
			return err == nil
		},
	}

	return &Guard{
		next:    next,
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Complete calls the wrapped Completer, retrying transient failures.
func (g *Guard) Complete(ctx context.Context, system, user string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		out, err := g.attempt(ctx, system, user)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			break
		}
		logger.WarnContext(ctx, "llm call failed, retrying", "guard", g.cfg.Name, "attempt", attempt+1, "error", err)
	}

	return "", g.classify(ctx, lastErr)
}

func (g *Guard) attempt(ctx context.Context, system, user string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	result, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Complete(callCtx, system, user)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (g *Guard) classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", g.cfg.Name, ErrTimeout)
	}
	return fmt.Errorf("%s: %w: %w", g.cfg.Name, ErrUnavailable, err)
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	return true
}

// State reports the circuit breaker state: "closed", "half-open" or "open".
func (g *Guard) State() string {
	return g.breaker.State().String()
}
