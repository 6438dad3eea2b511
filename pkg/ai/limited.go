package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// LimitConfig throttles and retries oracle calls.
type LimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	BaseDelay         time.Duration
	Timeout           time.Duration
}

type limitedOracle struct {
	next    Oracle
	limiter *rate.Limiter
	cfg     LimitConfig
}

// NewLimited wraps an Oracle with a shared rate limit, a per-call timeout and
// retries with exponential backoff. Malformed responses are not retried.
func NewLimited(next Oracle, cfg LimitConfig) Oracle {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &limitedOracle{
		next:    next,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		cfg:     cfg,
	}
}

func (l *limitedOracle) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	return withRetry(ctx, l, func(callCtx context.Context) ([]GeneratedQuestion, error) {
		return l.next.GenerateQuestions(callCtx, req)
	})
}

func (l *limitedOracle) ScoreAnswer(ctx context.Context, req ScoreRequest) (AnswerScore, error) {
	return withRetry(ctx, l, func(callCtx context.Context) (AnswerScore, error) {
		return l.next.ScoreAnswer(callCtx, req)
	})
}

func (l *limitedOracle) SynthesizeReport(ctx context.Context, req ReportRequest) (Report, error) {
	return withRetry(ctx, l, func(callCtx context.Context) (Report, error) {
		return l.next.SynthesizeReport(callCtx, req)
	})
}

func withRetry[T any](ctx context.Context, l *limitedOracle, call func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := l.cfg.BaseDelay << (attempt - 1)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		if err := l.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		callCtx, cancel := ctx, context.CancelFunc(func() {})
		if l.cfg.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		}
		value, err := call(callCtx)
		cancel()
		if err == nil {
			return value, nil
		}

		lastErr = err
		if errors.Is(err, ErrMalformedResponse) || ctx.Err() != nil {
			break
		}
	}

	return zero, lastErr
}
