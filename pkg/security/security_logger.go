package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type EventType string

const (
	EventLoginFailed          EventType = "login_failed"
	EventLoginSuccess         EventType = "login_success"
	EventRateLimitTriggered   EventType = "rate_limit_triggered"
	EventUnauthorizedAccess   EventType = "unauthorized_access"
	EventValidationFailed     EventType = "validation_failed"
	EventBotSuspected         EventType = "bot_suspected"
	EventBotBlocked           EventType = "bot_blocked"
	EventVerificationSent     EventType = "verification_sent"
	EventVerificationFailed   EventType = "verification_failed"
	EventVerificationExceeded EventType = "verification_exceeded"
	EventUploadRejected       EventType = "upload_rejected"
)

// SecurityEvent is one audit record. Empty string fields are omitted from the entry.
type SecurityEvent struct {
	Event        EventType
	SubjectType  string // email, ip or user_id
	SubjectValue string // never the raw email; see MaskEmail and HashValue
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

// SecurityLogger writes security events as structured zap entries.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
	defaultMu     sync.Mutex
)

// InitSecurityLogger builds the zap-backed logger and makes it the default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return SetDefaultLogger(NewSecurityLogger(logger, serviceName, environment))
}

// NewSecurityLogger wraps an existing zap logger; tests pass an observer core.
func NewSecurityLogger(zl *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   zl,
		serviceName: serviceName,
		environment: environment,
	}
}

func SetDefaultLogger(sl *SecurityLogger) *SecurityLogger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = sl
	return sl
}

// DefaultLogger returns the default security logger, creating one on first use.
func DefaultLogger() *SecurityLogger {
	defaultMu.Lock()
	sl := defaultLogger
	defaultMu.Unlock()
	if sl == nil {
		return InitSecurityLogger("interview-coach-api", getEnvironment())
	}
	return sl
}

func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventLoginSuccess, EventVerificationSent:
		return zapcore.InfoLevel
	case EventBotBlocked, EventVerificationExceeded, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// Log writes event at the level its type implies.
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	fields := make([]zap.Field, 0, 9)
	fields = append(fields,
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
	)
	for _, kv := range [...][2]string{
		{"subject_type", event.SubjectType},
		{"subject_value", event.SubjectValue},
		{"ip", event.IP},
		{"user_agent", event.UserAgent},
		{"request_id", event.RequestID},
	} {
		if kv[1] != "" {
			fields = append(fields, zap.String(kv[0], kv[1]))
		}
	}
	if len(event.Details) > 0 {
		// details is emitted as one JSON string field
		details, err := json.Marshal(event.Details)
		if err != nil {
			details = []byte(`{"marshal_error":true}`)
		}
		fields = append(fields, zap.ByteString("details", details))
	}

	if ce := sl.zapLogger.Check(levelFor(event.Event), string(event.Event)); ce != nil {
		ce.Write(fields...)
	}
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogBotDetection records a suspicious or blocked client with its score and reasons.
func (sl *SecurityLogger) LogBotDetection(ctx context.Context, blocked bool, ip, userAgent, requestID, path string, result BotDetectionResult) {
	event := EventBotSuspected
	if blocked {
		event = EventBotBlocked
	}
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details: map[string]interface{}{
			"path":    path,
			"score":   result.Score,
			"reasons": result.Reasons,
		},
	})
}

func (sl *SecurityLogger) LogVerification(ctx context.Context, event EventType, email, ip, requestID string, remaining int) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"attempts_remaining": remaining},
	})
}

func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue returns the first 16 hex chars of the SHA-256 of value.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
