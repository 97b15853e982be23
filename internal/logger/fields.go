package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the registry back office.
// Use these keys consistently so log lines from the EPP, RDAP and WHOIS front
// ends aggregate cleanly.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// ========================================================================
	// Protocol & Session
	// ========================================================================
	KeyProtocol  = "protocol"   // epp, rdap, whois
	KeySessionID = "session_id" // server-assigned connection/session id
	KeyClID      = "clid"       // authenticated registrar client identifier
	KeyVerb      = "verb"       // login, create, update, renew, transfer, ...
	KeyObject    = "object"     // domain, contact, host
	KeyClTRID    = "cltrid"     // client transaction id
	KeySvTRID    = "svtrid"     // server transaction id
	KeyResultCode = "result_code"

	// ========================================================================
	// Registry Objects
	// ========================================================================
	KeyDomain  = "domain"
	KeyContact = "contact"
	KeyHost    = "host"
	KeyROID    = "roid"

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP   = "client_ip"
	KeyClientPort = "client_port"

	// ========================================================================
	// Connection lifecycle
	// ========================================================================
	KeyConnectionID = "connection_id"
	KeyFrameLength  = "frame_length"

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeyComponent  = "component"
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr { return slog.String(KeyTraceID, id) }

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr { return slog.String(KeySpanID, id) }

// Protocol returns a slog.Attr for the front-end protocol (epp, rdap, whois)
func Protocol(proto string) slog.Attr { return slog.String(KeyProtocol, proto) }

// SessionID returns a slog.Attr for the session identifier
func SessionID(id string) slog.Attr { return slog.String(KeySessionID, id) }

// ClID returns a slog.Attr for the sponsoring/authenticated registrar
func ClID(id string) slog.Attr { return slog.String(KeyClID, id) }

// Verb returns a slog.Attr for the EPP command verb
func Verb(v string) slog.Attr { return slog.String(KeyVerb, v) }

// Object returns a slog.Attr for the object namespace (domain/contact/host)
func Object(o string) slog.Attr { return slog.String(KeyObject, o) }

// ClTRID returns a slog.Attr for the client transaction id
func ClTRID(id string) slog.Attr { return slog.String(KeyClTRID, id) }

// SvTRID returns a slog.Attr for the server transaction id
func SvTRID(id string) slog.Attr { return slog.String(KeySvTRID, id) }

// ResultCode returns a slog.Attr for the EPP result code
func ResultCode(code int) slog.Attr { return slog.Int(KeyResultCode, code) }

// Domain returns a slog.Attr for a domain name
func Domain(name string) slog.Attr { return slog.String(KeyDomain, name) }

// Contact returns a slog.Attr for a contact handle
func Contact(handle string) slog.Attr { return slog.String(KeyContact, handle) }

// Host returns a slog.Attr for a hostname
func Host(name string) slog.Attr { return slog.String(KeyHost, name) }

// ROID returns a slog.Attr for a repository object identifier
func ROID(id string) slog.Attr { return slog.String(KeyROID, id) }

// ClientIP returns a slog.Attr for the client peer address
func ClientIP(addr string) slog.Attr { return slog.String(KeyClientIP, addr) }

// ClientPort returns a slog.Attr for the client source port
func ClientPort(port int) slog.Attr { return slog.Int(KeyClientPort, port) }

// ConnectionID returns a slog.Attr for the connection identifier
func ConnectionID(id string) slog.Attr { return slog.String(KeyConnectionID, id) }

// FrameLength returns a slog.Attr for a decoded frame's total length
func FrameLength(n uint32) slog.Attr { return slog.Any(KeyFrameLength, n) }

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// Component returns a slog.Attr for the emitting component name
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }
