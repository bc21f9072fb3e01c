package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"trade-service/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	logger      *zap.Logger
	now         func() time.Time
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level   string        `json:"level"`
	Text    string        `json:"text"`
	Session *SessionAudit `json:"session,omitempty"`
}

// SessionAudit snapshots a trade session at the moment of a transition.
type SessionAudit struct {
	SessionID     int    `json:"session_id"`
	User1ID       int    `json:"user1_id"`
	User2ID       int    `json:"user2_id"`
	Status        string `json:"status"`
	PointsAwarded *int   `json:"points_awarded,omitempty"`
}

type requestIDKey struct{}

// WithRequestID stores the request id so audit events can be correlated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFrom returns the request id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, logger *zap.Logger) *AuditEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		logger:      logger,
		now:         time.Now,
	}
}

func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, userID *string) {
	e.publish(ctx, "audit_log", AuditPayload{Level: level, Text: text}, requestID, userID)
}

// EmitSessionEvent records a trade session transition performed by actorID.
func (e *AuditEmitter) EmitSessionEvent(ctx context.Context, event string, match models.TradeMatch, actorID int) {
	actor := strconv.Itoa(actorID)
	payload := AuditPayload{
		Level: "INFO",
		Text:  event,
		Session: &SessionAudit{
			SessionID:     match.ID,
			User1ID:       match.User1ID,
			User2ID:       match.User2ID,
			Status:        string(match.Status),
			PointsAwarded: match.PointsAwarded,
		},
	}
	e.publish(ctx, "trade_session", payload, RequestIDFrom(ctx), &actor)
}

func (e *AuditEmitter) publish(ctx context.Context, eventType string, payload AuditPayload, requestID string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		e.logger.Warn("audit publish failed", zap.String("event_type", eventType), zap.String("text", payload.Text), zap.Error(err))
	}
}
