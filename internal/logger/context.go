package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for an EPP session/command.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	SessionID string    // server-assigned session identifier
	ClID      string    // authenticated registrar client identifier
	Verb      string    // EPP verb (login, create, update, ...)
	Object    string    // object namespace (domain, contact, host)
	ClientIP  string    // client peer address (without port)
	ClTRID    string    // client transaction id echoed by the request
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a freshly accepted connection.
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		SessionID: lc.SessionID,
		ClID:      lc.ClID,
		Verb:      lc.Verb,
		Object:    lc.Object,
		ClientIP:  lc.ClientIP,
		ClTRID:    lc.ClTRID,
		StartTime: lc.StartTime,
	}
}

// WithCommand returns a copy with the verb/object/clTRID of the command in flight.
func (lc *LogContext) WithCommand(verb, object, clTRID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Verb = verb
		clone.Object = object
		clone.ClTRID = clTRID
	}
	return clone
}

// WithClient returns a copy with the authenticated registrar set.
func (lc *LogContext) WithClient(clID, sessionID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ClID = clID
		clone.SessionID = sessionID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
