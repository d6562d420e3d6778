package logger

import (
	"context"
	"log/slog"
	"time"
)

// Audit event types
const (
	EventLogin         = "login"
	EventLoginRejected = "login_rejected"
	EventDeviceChange  = "device_change"
	EventTokenRefresh  = "token_refresh"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	Subject       string
	SourceAddress string
	UserAgent     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes security events for forensic review. Secrets never reach it.
type AuditLogger struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
		now:    time.Now,
	}
}

// LogAuthEvent logs an authentication event. Failures are logged at warn level.
func (al *AuditLogger) LogAuthEvent(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	}

	if event.Subject != "" {
		attrs = append(attrs, slog.String("subject", event.Subject))
	}
	if event.SourceAddress != "" {
		attrs = append(attrs, slog.String("source_address", event.SourceAddress))
	}
	if event.UserAgent != "" {
		attrs = append(attrs, slog.String("user_agent", event.UserAgent))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogDeviceChange records that a subject logged in from a platform other than
// the one seen on its last successful login
func (al *AuditLogger) LogDeviceChange(subject, sourceAddress, osLabel string) {
	al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit",
		slog.String("audit_type", "device"),
		slog.String("event_type", EventDeviceChange),
		slog.String("subject", subject),
		slog.String("source_address", sourceAddress),
		slog.String("os_label", osLabel),
		slog.String("timestamp", al.now().UTC().Format(time.RFC3339)),
	)
}
