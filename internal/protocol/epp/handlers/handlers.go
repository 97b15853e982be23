// Package handlers implements the per-object command logic (C6-C8): domain,
// contact and host check/info/create/update/delete, plus domain renew and
// transfer. Every handler runs inside a single store transaction scoped to
// one command, closing the check-then-write window the store's isolation
// guarantee is relied on for.
package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/resultcode"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// Context carries the request-scoped values every handler needs:
// the authenticated sponsoring client, the server identifier for ROID
// construction, and a clock hook so tests can pin creation timestamps.
type Context struct {
	ClID     string
	ServerID string
	Now      func() time.Time
}

func (c Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

const timeFormat = time.RFC3339

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

// domainROID builds the server-assigned repository identifier for a domain:
// the uppercased FQDN with dots replaced by hyphens, joined to the server
// identifier.
func domainROID(name, serverID string) string {
	upper := strings.ToUpper(name)
	return strings.ReplaceAll(upper, ".", "-") + "-" + serverID
}

// contactROID and hostROID follow the same "-REP"/"-SERVERID" convention the
// specification calls for on their respective objects.
func contactROID(handle string) string {
	return strings.ToUpper(handle) + "-REP"
}

func hostROID(name, serverID string) string {
	return strings.ToUpper(strings.ReplaceAll(name, ".", "-")) + "-" + serverID
}

func addStatus(existing []string, add []string) []string {
	out := append([]string(nil), existing...)
	for _, a := range add {
		if !containsStr(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func removeStatus(existing []string, rem []string) []string {
	out := make([]string, 0, len(existing))
	for _, e := range existing {
		if !containsStr(rem, e) {
			out = append(out, e)
		}
	}
	return out
}

func containsStr(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func fail(code int) Result {
	return Result{Code: code, Message: resultcode.DefaultMessage(resultcode.Code(code))}
}

func failf(code int, format string, args ...any) Result {
	return Result{Code: code, Message: fmt.Sprintf(format, args...)}
}

// storeErrorResult maps a store.Error to the handler-level Result the
// taxonomy in the error-handling design calls for. notFoundCode and
// existsCode let each call site pick the protocol-specific code (2303/2302
// for most objects) while InUse always maps to 2305 with its detail and
// anything else falls through to 2400.
func storeErrorResult(err error, notFoundCode, existsCode int) (Result, bool) {
	se, ok := err.(*store.Error)
	if !ok {
		return Result{}, false
	}
	switch se.Code {
	case store.ErrNotFound:
		return fail(notFoundCode), true
	case store.ErrExists:
		return fail(existsCode), true
	case store.ErrInUse:
		msg := "Object association prohibits operation"
		if se.Detail != "" {
			msg = msg + " (" + se.Detail + ")"
		}
		return Result{Code: 2305, Message: msg}, true
	default:
		return fail(2400), true
	}
}

func periodDays(years int) int {
	if years <= 0 {
		years = 1
	}
	return years * 365
}
