package authkit

import (
	"context"
	"io"
	"time"

	"github.com/skillswaphq/authkit/internal/audit"
)

// AuditEvent is the structured record emitted for every session-lifecycle
// operation.
type AuditEvent = audit.Event

// AuditSink receives emitted audit events.
type AuditSink = audit.Sink

// NoOpSink drops audit events.
type NoOpSink = audit.NoOpSink

// ChannelSink writes audit events into a buffered channel.
type ChannelSink = audit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = audit.JSONWriterSink

// NewChannelSink describes the newchannelsink operation and its observable behavior.
//
// NewChannelSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
//
// NewJSONWriterSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

const (
	// AuditRegister is an exported constant or variable used by the authentication engine.
	AuditRegister = "register"
	// AuditLogin is an exported constant or variable used by the authentication engine.
	AuditLogin = "login"
	// AuditRefresh is an exported constant or variable used by the authentication engine.
	AuditRefresh = "refresh"
	// AuditLogout is an exported constant or variable used by the authentication engine.
	AuditLogout = "logout"
	// AuditLogoutAll is an exported constant or variable used by the authentication engine.
	AuditLogoutAll = "logout_all"
	// AuditPasswordChange is an exported constant or variable used by the authentication engine.
	AuditPasswordChange = "password_change"
	// AuditSweep is an exported constant or variable used by the authentication engine.
	AuditSweep = "sweep"
)

func (m *Manager) emitAudit(ctx context.Context, eventType, userID, tokenID string, success bool, opErr error, metadata map[string]string) {
	if m.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		TokenID:   tokenID,
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}

	m.audit.Emit(ctx, event)
}
