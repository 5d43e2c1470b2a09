package accountd

import (
	"context"
	"io"

	internalaudit "github.com/thanhldev/accountd/internal/audit"
)

// AuditEvent is a structured audit record emitted by the engine, one per
// auth operation.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

const (
	auditEventRegister       = "register"
	auditEventOTPVerify      = "otp_verify"
	auditEventLogin          = "login"
	auditEventForgotPassword = "forgot_password"
	auditEventResetPassword  = "reset_password"
	auditEventProfileUpdate  = "profile_update"
	auditEventAvatarUpload   = "avatar_upload"
	auditEventAccountCreate  = "account_create"
	auditEventAccountUpdate  = "account_update"
	auditEventAccountDisable = "account_disable"
	auditEventAccountDelete  = "account_delete"
)

// emitAudit builds and dispatches an event. Metadata is built lazily so
// disabled auditing costs nothing beyond the nil check.
func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadata func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: e.now(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
