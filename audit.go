package shamy

import (
	"crypto/rand"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventKeygen            AuditEventType = "keygen"
	AuditEventSessionStarted    AuditEventType = "session_started"
	AuditEventSessionFinalized  AuditEventType = "session_finalized"
	AuditEventValidationFailure AuditEventType = "validation_failure"
	AuditEventError             AuditEventType = "error"
)

// AuditEventReason represents why an event occurred
type AuditEventReason string

const (
	ReasonDealerSetup     AuditEventReason = "dealer_setup"
	ReasonSigningRequest  AuditEventReason = "signing_request"
	ReasonValidationError AuditEventReason = "validation_error"
	ReasonProtocolError   AuditEventReason = "protocol_error"
)

// AuditEvent is a single audit record. It only ever carries public data:
// ids, curve names, session ids and encoded public points.
type AuditEvent struct {
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	EventType AuditEventType   `json:"event_type"`
	Reason    AuditEventReason `json:"reason"`

	CurveName string `json:"curve_name,omitempty"`
	SessionID string `json:"session_id,omitempty"`

	Threshold    int             `json:"threshold,omitempty"`
	Participants []ParticipantID `json:"participants,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// KeygenEvent describes a completed dealer key generation
type KeygenEvent struct {
	AuditEvent

	PublicKey    string        `json:"public_key"`
	SharesIssued int           `json:"shares_issued"`
	Duration     time.Duration `json:"duration"`
}

// SessionFinalizedEvent describes the terminal state of a signing session
type SessionFinalizedEvent struct {
	AuditEvent

	FinalState SessionState  `json:"final_state"`
	NoncePoint string        `json:"nonce_point,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ValidationFailureEvent contains details about validation failures
type ValidationFailureEvent struct {
	AuditEvent

	ValidationType string                 `json:"validation_type"` // "threshold", "participant", "state"
	FailureReason  string                 `json:"failure_reason"`
	InputValues    map[string]interface{} `json:"input_values,omitempty"`
}

// AuditEventHandler receives audit events.
// Handlers must not block; they run on the signing path.
type AuditEventHandler interface {
	OnKeygen(event *KeygenEvent)
	OnSessionStarted(event *AuditEvent)
	OnSessionFinalized(event *SessionFinalizedEvent)
	OnValidationFailure(event *ValidationFailureEvent)
	OnError(event *AuditEvent)
}

// NullAuditHandler drops every event.
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnKeygen(event *KeygenEvent)                       {}
func (n *NullAuditHandler) OnSessionStarted(event *AuditEvent)                {}
func (n *NullAuditHandler) OnSessionFinalized(event *SessionFinalizedEvent)   {}
func (n *NullAuditHandler) OnValidationFailure(event *ValidationFailureEvent) {}
func (n *NullAuditHandler) OnError(event *AuditEvent)                         {}

// ZapAuditHandler writes every event as a structured log line.
type ZapAuditHandler struct {
	logger *zap.Logger
}

// NewZapAuditHandler creates a handler logging under the "audit" name.
func NewZapAuditHandler(logger *zap.Logger) *ZapAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAuditHandler{logger: logger.Named("audit")}
}

func (h *ZapAuditHandler) baseFields(event *AuditEvent) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.EventType)),
		zap.String("reason", string(event.Reason)),
		zap.Bool("success", event.Success),
	}
	if event.CurveName != "" {
		fields = append(fields, zap.String("curve", event.CurveName))
	}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.Threshold != 0 {
		fields = append(fields, zap.Int("threshold", event.Threshold))
	}
	if len(event.Participants) > 0 {
		fields = append(fields, zap.Stringers("participants", event.Participants))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}
	return fields
}

func (h *ZapAuditHandler) OnKeygen(event *KeygenEvent) {
	h.logger.Info("keygen", append(h.baseFields(&event.AuditEvent),
		zap.String("public_key", event.PublicKey),
		zap.Int("shares_issued", event.SharesIssued),
		zap.Duration("duration", event.Duration),
	)...)
}

func (h *ZapAuditHandler) OnSessionStarted(event *AuditEvent) {
	h.logger.Info("signing session started", h.baseFields(event)...)
}

func (h *ZapAuditHandler) OnSessionFinalized(event *SessionFinalizedEvent) {
	fields := append(h.baseFields(&event.AuditEvent),
		zap.Stringer("final_state", event.FinalState),
		zap.Duration("duration", event.Duration),
	)
	if event.NoncePoint != "" {
		fields = append(fields, zap.String("nonce_point", event.NoncePoint))
	}
	if event.Success {
		h.logger.Info("signing session finalized", fields...)
		return
	}
	h.logger.Warn("signing session rejected", fields...)
}

func (h *ZapAuditHandler) OnValidationFailure(event *ValidationFailureEvent) {
	h.logger.Warn("validation failure", append(h.baseFields(&event.AuditEvent),
		zap.String("validation_type", event.ValidationType),
		zap.String("failure_reason", event.FailureReason),
	)...)
}

func (h *ZapAuditHandler) OnError(event *AuditEvent) {
	h.logger.Error("audit error", h.baseFields(event)...)
}

// AuditEventBuilder fills the common AuditEvent fields for every event kind.
type AuditEventBuilder struct {
	event *AuditEvent
}

// NewAuditEventBuilder starts a successful event stamped with the current time.
func NewAuditEventBuilder(eventType AuditEventType, reason AuditEventReason) *AuditEventBuilder {
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Reason:    reason,
			Success:   true,
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithCurve sets the curve name for the event
func (b *AuditEventBuilder) WithCurve(curveName string) *AuditEventBuilder {
	b.event.CurveName = curveName
	return b
}

// WithSession sets the session id for the event
func (b *AuditEventBuilder) WithSession(sessionID string) *AuditEventBuilder {
	b.event.SessionID = sessionID
	return b
}

// WithThreshold sets the threshold for the event
func (b *AuditEventBuilder) WithThreshold(threshold int) *AuditEventBuilder {
	b.event.Threshold = threshold
	return b
}

// WithParticipants copies ids into the event.
func (b *AuditEventBuilder) WithParticipants(ids []ParticipantID) *AuditEventBuilder {
	b.event.Participants = append([]ParticipantID(nil), ids...)
	return b
}

// WithError marks the event as failed.
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed audit event
func (b *AuditEventBuilder) Build() *AuditEvent {
	return b.event
}

// BuildKeygen returns a KeygenEvent
func (b *AuditEventBuilder) BuildKeygen(publicKey Point, sharesIssued int, duration time.Duration) *KeygenEvent {
	return &KeygenEvent{
		AuditEvent:   *b.event,
		PublicKey:    PointToHex(publicKey),
		SharesIssued: sharesIssued,
		Duration:     duration,
	}
}

// BuildSessionFinalized returns a SessionFinalizedEvent
func (b *AuditEventBuilder) BuildSessionFinalized(state SessionState, nonce Point, duration time.Duration) *SessionFinalizedEvent {
	event := &SessionFinalizedEvent{
		AuditEvent: *b.event,
		FinalState: state,
		Duration:   duration,
	}
	if nonce != nil {
		event.NoncePoint = PointToHex(nonce)
	}
	return event
}

// BuildValidationFailure returns a ValidationFailureEvent
func (b *AuditEventBuilder) BuildValidationFailure(validationType, failureReason string, inputValues map[string]interface{}) *ValidationFailureEvent {
	return &ValidationFailureEvent{
		AuditEvent:     *b.event,
		ValidationType: validationType,
		FailureReason:  failureReason,
		InputValues:    inputValues,
	}
}

// generateEventID combines a timestamp with random bytes so events created
// in the same microsecond still get distinct ids.
func generateEventID() string {
	timestamp := time.Now().Format("20060102150405.000000")

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%s.%d", timestamp, time.Now().UnixNano()%10000)
	}

	return fmt.Sprintf("%s.%x", timestamp, randomBytes)
}
