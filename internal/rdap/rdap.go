// Package rdap implements the read-only RDAP lookup service (RFC 7480-7484)
// over the same store the EPP front end writes to. It introduces no
// registry semantics of its own: every response is a JSON projection of the
// store's domain, contact and host records.
package rdap

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// rdapConformance is echoed on every response per RFC 7483 section 4.1.
var rdapConformance = []string{"rdap_level_0"}

// Server serves RDAP lookups for domains, entities (contacts) and
// nameservers (hosts).
type Server struct {
	store store.Store
}

// NewServer constructs an RDAP server backed by st.
func NewServer(st store.Store) *Server {
	return &Server{store: st}
}

// Handler returns the chi router exposing the RDAP paths defined by
// RFC 7482: /domain/{name}, /entity/{handle}, /nameserver/{name}, plus a
// /help liveness endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/help", s.help)
	r.Get("/domain/{name}", s.lookupDomain)
	r.Get("/entity/{handle}", s.lookupEntity)
	r.Get("/nameserver/{name}", s.lookupNameserver)

	return r
}

func (s *Server) help(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rdapConformance": rdapConformance,
		"notices": []notice{{
			Title:       "Service Description",
			Description: []string{"read-only RDAP lookup over domain, entity and nameserver objects"},
		}},
	})
}

func (s *Server) withTxn(ctx context.Context, fn func(store.Txn) error) error {
	return s.store.WithTransaction(ctx, fn)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info("rdap request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
