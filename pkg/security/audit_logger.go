package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of audit event
type EventType string

const (
	EventLoginSuccess       EventType = "login_success"
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUploadRejected     EventType = "upload_rejected"
	EventCandidateSubmitted EventType = "candidate_submitted"
	EventStatusChanged      EventType = "status_changed"
	EventResumeDownloaded   EventType = "resume_downloaded"
	EventDataExport         EventType = "data_export"
)

// eventLevels is fixed per event type, never caller supplied.
var eventLevels = map[EventType]zapcore.Level{
	EventLoginSuccess:       zapcore.InfoLevel,
	EventCandidateSubmitted: zapcore.InfoLevel,
	EventStatusChanged:      zapcore.InfoLevel,
	EventResumeDownloaded:   zapcore.InfoLevel,
	EventDataExport:         zapcore.InfoLevel,
	EventLoginFailed:        zapcore.WarnLevel,
	EventLoginBlocked:       zapcore.ErrorLevel,
	EventRateLimitTriggered: zapcore.WarnLevel,
	EventUploadRejected:     zapcore.WarnLevel,
	EventUnauthorizedAccess: zapcore.ErrorLevel,
}

// AuditEvent is one entry of the audit trail.
type AuditEvent struct {
	Timestamp    time.Time
	Event        EventType
	Actor        string // admin username, "applicant" or empty
	SubjectType  string // "candidate", "email", "ip", "username"
	SubjectValue string // masked or hashed when it is PII
	IP           string
	RequestID    string
	Details      map[string]interface{}
}

// AuditLogger writes structured audit events through zap. A nil *AuditLogger
// discards everything.
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// NewAuditLogger builds a production zap logger writing JSON to stdout.
func NewAuditLogger(serviceName, environment string) *AuditLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	if environment != "production" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build(zap.AddStacktrace(zapcore.DPanicLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewAuditLoggerWithZap(logger, serviceName, environment)
}

// NewAuditLoggerWithZap wraps an existing zap logger (tests use an observer core).
func NewAuditLoggerWithZap(logger *zap.Logger, serviceName, environment string) *AuditLogger {
	return &AuditLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// Log writes a single event.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if al == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	level, ok := eventLevels[event.Event]
	if !ok {
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", al.serviceName),
		zap.String("env", al.environment),
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	al.zapLogger.Log(level, string(event.Event), fields...)
}

func (al *AuditLogger) LogLoginSuccess(ctx context.Context, username, ip, requestID string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginSuccess,
		Actor:        username,
		SubjectType:  "username",
		SubjectValue: username,
		IP:           ip,
		RequestID:    requestID,
	})
}

func (al *AuditLogger) LogLoginFailed(ctx context.Context, username, ip, requestID, reason string) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginFailed,
		SubjectType:  "username",
		SubjectValue: HashValue(username),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (al *AuditLogger) LogLoginBlocked(ctx context.Context, username, ip, requestID string, minutes int) {
	al.Log(ctx, AuditEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "username",
		SubjectValue: HashValue(username),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"block_minutes": minutes},
	})
}

func (al *AuditLogger) LogUnauthorizedAccess(ctx context.Context, ip, requestID, path, reason string) {
	al.Log(ctx, AuditEvent{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"path": path, "reason": reason},
	})
}

func (al *AuditLogger) LogRateLimitTriggered(ctx context.Context, ip, requestID, endpoint string) {
	al.Log(ctx, AuditEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

func (al *AuditLogger) LogUploadRejected(ctx context.Context, email, filename, reason string) {
	al.Log(ctx, AuditEvent{
		Event:        EventUploadRejected,
		Actor:        "applicant",
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		Details:      map[string]interface{}{"filename": filename, "reason": reason},
	})
}

func (al *AuditLogger) LogCandidateSubmitted(ctx context.Context, candidateID, department string) {
	al.Log(ctx, AuditEvent{
		Event:        EventCandidateSubmitted,
		Actor:        "applicant",
		SubjectType:  "candidate",
		SubjectValue: candidateID,
		Details:      map[string]interface{}{"department": department},
	})
}

// LogStatusChanged records who moved a candidate between which statuses.
func (al *AuditLogger) LogStatusChanged(ctx context.Context, admin, candidateID, from, to string, version int64) {
	al.Log(ctx, AuditEvent{
		Event:        EventStatusChanged,
		Actor:        admin,
		SubjectType:  "candidate",
		SubjectValue: candidateID,
		Details:      map[string]interface{}{"from": from, "to": to, "version": version},
	})
}

func (al *AuditLogger) LogResumeDownloaded(ctx context.Context, admin, candidateID string) {
	al.Log(ctx, AuditEvent{
		Event:        EventResumeDownloaded,
		Actor:        admin,
		SubjectType:  "candidate",
		SubjectValue: candidateID,
	})
}

func (al *AuditLogger) LogDataExport(ctx context.Context, admin, format string, rows int) {
	al.Log(ctx, AuditEvent{
		Event:   EventDataExport,
		Actor:   admin,
		Details: map[string]interface{}{"format": format, "rows": rows},
	})
}

// Sync flushes any buffered log entries
func (al *AuditLogger) Sync() error {
	if al == nil {
		return nil
	}
	return al.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	switch {
	case len(email) < 3:
		return "***"
	case at < 0:
		return string(email[0]) + "***"
	case at <= 1:
		return "***" + email[at:]
	default:
		return string(email[0]) + "***" + email[at:]
	}
}

// HashValue creates a short SHA256 fingerprint of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
