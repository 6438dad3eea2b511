package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/observability"
)

// Interview event types.
const (
	EventInterviewStarted  = "interview.started"
	EventAnswerSubmitted   = "interview.answer_submitted"
	EventInterviewComplete = "interview.completed"
	EventInterviewCanceled = "interview.cancelled"
	EventEvaluationReady   = "evaluation.ready"
	EventEvaluationFailed  = "evaluation.failed"
)

const eventBufferSize = 16

// InterviewEvent describes a progress change of one interview.
type InterviewEvent struct {
	Type           string    `json:"type"`
	InterviewID    string    `json:"interview_id"`
	CompanyID      string    `json:"company_id"`
	CandidateID    string    `json:"candidate_id"`
	Status         string    `json:"status,omitempty"`
	QuestionIndex  int       `json:"question_index"`
	TotalQuestions int       `json:"total_questions"`
	Round          string    `json:"round,omitempty"`
	Message        string    `json:"message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// EventPublisher delivers interview events. Publishing never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event InterviewEvent)
}

// EventStream fans interview events out to local subscribers and, when a broker is
// configured, to the other API nodes.
type EventStream interface {
	EventPublisher
	Subscribe(interviewID string) (<-chan InterviewEvent, func())
	Start(ctx context.Context)
}

type eventStream struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *eventBroker
	nodeID       string
}

type eventEnvelope struct {
	Source string         `json:"source"`
	Event  InterviewEvent `json:"event"`
	SentAt time.Time      `json:"sent_at"`
}

type eventBroker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan InterviewEvent]struct{}
}

// NewEventStream constructs the interview event hub. Redis and NATS are optional.
func NewEventStream(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) EventStream {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}
	// NATS takes precedence over Redis pub/sub when both are configured.
	if natsConn != nil {
		channel = ""
	}

	return &eventStream{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_stream").Logger(),
		broker: &eventBroker{
			subscribers: make(map[string]map[chan InterviewEvent]struct{}),
		},
		nodeID: uuid.NewString(),
	}
}

func (s *eventStream) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *eventStream) Publish(ctx context.Context, event InterviewEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	s.deliver(event)
	if err := s.forward(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("interview_id", event.InterviewID).Str("type", event.Type).Msg("failed to forward interview event")
	}
}

func (s *eventStream) Subscribe(interviewID string) (<-chan InterviewEvent, func()) {
	channel := make(chan InterviewEvent, eventBufferSize)

	s.broker.subscribe(interviewID, channel)
	observability.LiveClientsActive().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			s.broker.unsubscribe(interviewID, channel)
			observability.LiveClientsActive().Dec()
		})
	}

	return channel, cleanup
}

func (s *eventStream) deliver(event InterviewEvent) {
	observability.EventsPublished().WithLabelValues(event.Type).Inc()
	s.broker.broadcast(event.InterviewID, event)
}

func (s *eventStream) forward(ctx context.Context, event InterviewEvent) error {
	if (s.redis == nil || s.redisChannel == "") && (s.nats == nil || s.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(eventEnvelope{
		Source: s.nodeID,
		Event:  event,
		SentAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *eventStream) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *eventStream) consumeNATS(ctx context.Context) {
	// Every node needs every event for its own websocket clients, so no queue group.
	sub, err := s.nats.Subscribe(s.natsSubject, func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain events nats subscription")
		}
	}()
}

func (s *eventStream) handleEnvelope(payload []byte) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid interview event payload")
		return
	}

	if envelope.Source == s.nodeID || envelope.Event.InterviewID == "" {
		return
	}

	s.deliver(envelope.Event)
}

func (b *eventBroker) subscribe(interviewID string, ch chan InterviewEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[interviewID]; !exists {
		b.subscribers[interviewID] = make(map[chan InterviewEvent]struct{})
	}
	b.subscribers[interviewID][ch] = struct{}{}
}

func (b *eventBroker) unsubscribe(interviewID string, ch chan InterviewEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[interviewID]; ok {
		delete(subscribers, ch)
		close(ch)
		if len(subscribers) == 0 {
			delete(b.subscribers, interviewID)
		}
	}
}

// broadcast drops the event for subscribers whose buffer is full.
func (b *eventBroker) broadcast(interviewID string, event InterviewEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[interviewID] {
		select {
		case ch <- event:
		default:
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, InterviewEvent) {}
