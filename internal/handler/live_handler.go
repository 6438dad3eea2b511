package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/interview-agent-api/internal/dto"
	"github.com/noah-isme/interview-agent-api/internal/service"
)

const (
	liveSnapshotEvent = "interview.snapshot"
	livePingInterval  = 30 * time.Second
	liveWriteTimeout  = 10 * time.Second
	localLiveSnapshot = "live_snapshot"
)

// EventSubscriber delivers interview events to a live client.
type EventSubscriber interface {
	Subscribe(interviewID string) (<-chan service.InterviewEvent, func())
}

// LiveHandler streams interview progress over a websocket.
type LiveHandler struct {
	interviews service.InterviewService
	events     EventSubscriber
	logger     zerolog.Logger
}

// NewLiveHandler constructs a live progress handler.
func NewLiveHandler(interviews service.InterviewService, events EventSubscriber, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		interviews: interviews,
		events:     events,
		logger:     logger.With().Str("component", "live_handler").Logger(),
	}
}

// Register wires the websocket route.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Get("/interviews/:id/live", h.authorize, websocket.New(h.serve))
}

// authorize runs before the upgrade so access errors still get a JSON envelope.
func (h *LiveHandler) authorize(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	progress, err := h.interviews.Progress(requestContext(c), principalFromContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.Locals(localLiveSnapshot, progress)
	return c.Next()
}

func (h *LiveHandler) serve(conn *websocket.Conn) {
	interviewID := conn.Params("id")
	logger := h.logger.With().Str("interview_id", interviewID).Logger()

	events, unsubscribe := h.events.Subscribe(interviewID)
	defer unsubscribe()

	if progress, ok := conn.Locals(localLiveSnapshot).(dto.InterviewProgressResponse); ok {
		snapshot := service.InterviewEvent{
			Type:           liveSnapshotEvent,
			InterviewID:    interviewID,
			Status:         progress.Status,
			QuestionIndex:  progress.CurrentQuestionIndex,
			TotalQuestions: progress.TotalQuestions,
			Round:          progress.CurrentRound,
			OccurredAt:     time.Now().UTC(),
		}
		if err := h.write(conn, snapshot); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePingInterval)
	defer ticker.Stop()

	logger.Info().Msg("live client connected")
	defer logger.Info().Msg("live client disconnected")

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.write(conn, event); err != nil {
				logger.Debug().Err(err).Msg("live write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *LiveHandler) write(conn *websocket.Conn, event service.InterviewEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}
