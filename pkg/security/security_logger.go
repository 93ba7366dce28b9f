package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventHoneypotTriggered EventType = "honeypot_triggered"
	EventSubmissionTooFast EventType = "submission_too_fast"
	EventValidationFailed  EventType = "validation_failed"
	EventMailConfigMissing EventType = "mail_config_missing"
	EventMailAuthRejected  EventType = "mail_auth_rejected"
	EventUnexpectedFailure EventType = "unexpected_failure"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// InitSecurityLogger initializes the security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Containers collect stdout
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return NewSecurityLogger(logger, serviceName, environment)
}

// NewSecurityLogger wraps an existing zap logger. A nil logger discards events.
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if sl == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := zapcore.WarnLevel
	switch event.Event {
	case EventValidationFailed:
		level = zapcore.InfoLevel
	case EventHoneypotTriggered, EventSubmissionTooFast:
		level = zapcore.WarnLevel
	case EventMailConfigMissing, EventMailAuthRejected, EventUnexpectedFailure:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
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
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogSpamRejected logs a submission stopped by the anti-spam filter
func (sl *SecurityLogger) LogSpamRejected(ctx context.Context, verdict SpamVerdict, email string, elapsed time.Duration) {
	event := EventHoneypotTriggered
	if verdict == SpamTooFast {
		event = EventSubmissionTooFast
	}
	details := map[string]interface{}{"verdict": verdict.String()}
	if elapsed >= 0 {
		details["elapsed_ms"] = elapsed.Milliseconds()
	}
	sl.logSubmissionEvent(ctx, event, email, details)
}

// LogSubmissionEvent logs a contact submission event for the given sender email
func (sl *SecurityLogger) LogSubmissionEvent(ctx context.Context, event EventType, email string, details map[string]interface{}) {
	sl.logSubmissionEvent(ctx, event, email, details)
}

func (sl *SecurityLogger) logSubmissionEvent(ctx context.Context, event EventType, email string, details map[string]interface{}) {
	meta := RequestMetaFromContext(ctx)
	e := SecurityEvent{
		Event:     event,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
		Details:   details,
	}
	if email != "" {
		e.SubjectType = "email"
		e.SubjectValue = MaskEmail(email)
	}
	sl.Log(ctx, e)
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	if sl == nil {
		return nil
	}
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex < 0 {
		return HashValue(email)
	}
	if atIndex <= 1 {
		return "***" + email[atIndex:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8]) // First 16 chars of hex
}

// Environment derives the environment name from GIN_MODE
func Environment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
