package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/interview-agent-api/internal/observability"
)

// Completer sends one prompt to a model and returns its raw text.
type Completer interface {
	Provider() string
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

type promptOracle struct {
	completer Completer
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewOracle builds an Oracle that renders prompts, calls the completer and parses strictly.
func NewOracle(completer Completer, logger zerolog.Logger) Oracle {
	return &promptOracle{
		completer: completer,
		tracer:    otel.Tracer("github.com/noah-isme/interview-agent-api/pkg/ai"),
		logger:    logger.With().Str("component", "oracle").Str("provider", completer.Provider()).Logger(),
	}
}

func (o *promptOracle) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("question count must be positive")
	}

	prompt := questionPrompt(req)
	content, err := o.complete(ctx, prompt, attribute.String("ai.round", req.Round), attribute.Int("ai.count", req.Count))
	if err != nil {
		return nil, err
	}

	questions, err := parseQuestions(content, req.Count)
	if err != nil {
		o.recordFailure(prompt.Operation, "parse")
		o.logger.Warn().Err(err).Str("round", req.Round).Msg("discarding malformed question response")
		return nil, err
	}

	return questions, nil
}

func (o *promptOracle) ScoreAnswer(ctx context.Context, req ScoreRequest) (AnswerScore, error) {
	prompt := scorePrompt(req)
	content, err := o.complete(ctx, prompt)
	if err != nil {
		return AnswerScore{}, err
	}

	score, err := parseScore(content)
	if err != nil {
		o.recordFailure(prompt.Operation, "parse")
		o.logger.Warn().Err(err).Msg("discarding malformed score response")
		return AnswerScore{}, err
	}

	return score, nil
}

func (o *promptOracle) SynthesizeReport(ctx context.Context, req ReportRequest) (Report, error) {
	prompt := reportPrompt(req)
	content, err := o.complete(ctx, prompt, attribute.Int("ai.evaluations", len(req.Evaluations)))
	if err != nil {
		return Report{}, err
	}

	report := parseReport(content)
	if report.Fallback {
		observability.OracleReportFallbacks().WithLabelValues(o.completer.Provider()).Inc()
		o.logger.Warn().Msg("report response unreadable, falling back to manual review")
	}

	return report, nil
}

func (o *promptOracle) complete(parent context.Context, prompt Prompt, attrs ...attribute.KeyValue) (string, error) {
	attrs = append(attrs,
		attribute.String("ai.provider", o.completer.Provider()),
		attribute.String("ai.operation", prompt.Operation),
	)
	ctx, span := o.tracer.Start(parent, "ai."+prompt.Operation, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	content, err := o.completer.Complete(ctx, prompt)
	observability.OracleDuration().WithLabelValues(o.completer.Provider(), prompt.Operation).Observe(time.Since(start).Seconds())
	if err != nil {
		reason := "transport"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		o.recordFailure(prompt.Operation, reason)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("%s %s: %w", o.completer.Provider(), prompt.Operation, err)
	}

	return content, nil
}

func (o *promptOracle) recordFailure(operation, reason string) {
	observability.OracleFailures().WithLabelValues(o.completer.Provider(), operation, reason).Inc()
}
