package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/models"
	"github.com/noah-isme/interview-agent-api/internal/observability"
)

// DispatcherConfig sizes the evaluation worker pool.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// EvaluationDispatcher runs evaluations in the background for completed interviews.
type EvaluationDispatcher struct {
	evaluations EvaluationService
	events      EventPublisher
	cfg         DispatcherConfig
	logger      zerolog.Logger

	queue   chan string
	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewEvaluationDispatcher constructs a dispatcher. Call Start before enqueueing.
func NewEvaluationDispatcher(evaluations EvaluationService, events EventPublisher, cfg DispatcherConfig, logger zerolog.Logger) *EvaluationDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if events == nil {
		events = noopPublisher{}
	}

	return &EvaluationDispatcher{
		evaluations: evaluations,
		events:      events,
		cfg:         cfg,
		logger:      logger.With().Str("component", "evaluation_dispatcher").Logger(),
		queue:       make(chan string, cfg.QueueSize),
	}
}

// Start launches the workers. Jobs keep running after ctx is cancelled; use Stop to drain.
func (d *EvaluationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	base := context.WithoutCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work(base, i)
	}
	d.logger.Info().Int("workers", d.cfg.Workers).Int("queue_size", d.cfg.QueueSize).Msg("evaluation dispatcher started")
}

// Enqueue schedules an evaluation. It returns false when the queue is full or closed.
func (d *EvaluationDispatcher) Enqueue(interviewID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.queue <- interviewID:
		observability.EvaluationQueueDepth().Inc()
		return true
	default:
		return false
	}
}

// Stop refuses new jobs and waits for queued ones to finish or ctx to expire.
func (d *EvaluationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *EvaluationDispatcher) work(ctx context.Context, worker int) {
	defer d.wg.Done()
	for interviewID := range d.queue {
		observability.EvaluationQueueDepth().Dec()
		d.process(ctx, worker, interviewID)
	}
}

func (d *EvaluationDispatcher) process(ctx context.Context, worker int, interviewID string) {
	jobCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	logger := d.logger.With().Int("worker", worker).Str("interview_id", interviewID).Logger()

	result, created, err := d.evaluations.Generate(jobCtx, interviewID)
	if err != nil {
		if errors.Is(err, ErrEvaluationInProgress) {
			logger.Info().Msg("evaluation already running elsewhere")
			return
		}
		logger.Error().Err(err).Msg("background evaluation failed")
		d.events.Publish(ctx, InterviewEvent{
			Type:        EventEvaluationFailed,
			InterviewID: interviewID,
			Status:      models.InterviewStatusCompleted,
			Message:     publicMessage(err),
		})
		return
	}

	logger.Info().Bool("created", created).Float64("overall_score", result.OverallScore).Msg("background evaluation finished")
}

// publicMessage is the client-safe text of err.
func publicMessage(err error) string {
	var serviceErr *Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	return "evaluation failed"
}
