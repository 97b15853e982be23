// Package server implements the TLS-terminated EPP front end: the listener,
// per-connection command loop, and graceful shutdown described by the
// protocol's concurrency and resource model.
package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/session"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/metrics"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// EPPConfig holds the listener parameters the adapter needs. pkg/config.EPPConfig
// is translated into this at wiring time so the server package stays free of
// a dependency on the root config package.
type EPPConfig struct {
	Port             int
	TLSCertFile      string
	TLSKeyFile       string
	TLSClientCAFile  string
	MaxConnections   int
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	ShutdownTimeout  time.Duration
	ServerID         string
}

// Greeting namespaces advertised by this profile.
var advertisedObjectURIs = []string{xmlcodec.NSDomain, xmlcodec.NSContact, xmlcodec.NSHost}

// EPPAdapter accepts TLS connections, runs one EPP session per connection,
// and supports graceful shutdown of in-flight sessions.
type EPPAdapter struct {
	config     EPPConfig
	dispatcher *epp.Dispatcher
	sessions   *session.Table
	metrics    metrics.EPPMetrics

	listenerMu sync.Mutex
	listener   net.Listener

	activeConns       sync.WaitGroup
	connCount         atomic.Int64
	activeConnections sync.Map // remoteAddr -> net.Conn

	connSemaphore chan struct{}

	shutdown     chan struct{}
	shutdownOnce sync.Once
	shutdownCtx  context.Context
	cancel       context.CancelFunc
}

// NewEPPAdapter constructs an adapter bound to st, building its Dispatcher
// from st and cfg.ServerID.
func NewEPPAdapter(cfg EPPConfig, st store.Store) *EPPAdapter {
	ctx, cancel := context.WithCancel(context.Background())
	a := &EPPAdapter{
		config:      cfg,
		dispatcher:  epp.NewDispatcher(st, cfg.ServerID),
		sessions:    session.NewTable(),
		shutdown:    make(chan struct{}),
		shutdownCtx: ctx,
		cancel:      cancel,
	}
	if cfg.MaxConnections > 0 {
		a.connSemaphore = make(chan struct{}, cfg.MaxConnections)
	}
	return a
}

// SetMetrics attaches a metrics sink; safe to call with nil to leave metrics
// disabled.
func (a *EPPAdapter) SetMetrics(m metrics.EPPMetrics) {
	a.metrics = m
}

func (a *EPPAdapter) tlsConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(a.config.TLSCertFile, a.config.TLSKeyFile)
	if err != nil {
		return nil, fmt.Errorf("epp: load server certificate: %w", err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if a.config.TLSClientCAFile != "" {
		pem, err := os.ReadFile(a.config.TLSClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("epp: read client CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("epp: client CA bundle contains no usable certificates")
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	return cfg, nil
}

// Serve accepts connections until ctx is cancelled, then drains in-flight
// sessions up to ShutdownTimeout before returning.
func (a *EPPAdapter) Serve(ctx context.Context) error {
	tlsCfg, err := a.tlsConfig()
	if err != nil {
		return err
	}

	raw, err := net.Listen("tcp", fmt.Sprintf(":%d", a.config.Port))
	if err != nil {
		return fmt.Errorf("epp: listen on port %d: %w", a.config.Port, err)
	}
	listener := tls.NewListener(raw, tlsCfg)

	a.listenerMu.Lock()
	a.listener = listener
	a.listenerMu.Unlock()

	logger.Info("EPP server listening", "port", a.config.Port)

	go func() {
		<-ctx.Done()
		a.initiateShutdown()
	}()

	for {
		if a.connSemaphore != nil {
			select {
			case a.connSemaphore <- struct{}{}:
			case <-a.shutdown:
				return a.gracefulShutdown()
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			if a.connSemaphore != nil {
				<-a.connSemaphore
			}
			select {
			case <-a.shutdown:
				return a.gracefulShutdown()
			default:
				logger.Debug("epp: accept error", "error", err)
				continue
			}
		}

		a.activeConns.Add(1)
		a.connCount.Add(1)
		addr := conn.RemoteAddr().String()
		a.activeConnections.Store(addr, conn)
		if a.metrics != nil {
			a.metrics.RecordConnectionAccepted()
			a.metrics.SetActiveSessions(int(a.connCount.Load()))
		}

		go func() {
			defer func() {
				a.activeConnections.Delete(addr)
				a.activeConns.Done()
				a.connCount.Add(-1)
				if a.connSemaphore != nil {
					<-a.connSemaphore
				}
				if a.metrics != nil {
					a.metrics.RecordConnectionClosed()
					a.metrics.SetActiveSessions(int(a.connCount.Load()))
				}
			}()
			a.handleConnection(a.shutdownCtx, conn)
		}()
	}
}

func (a *EPPAdapter) initiateShutdown() {
	a.shutdownOnce.Do(func() {
		close(a.shutdown)
		a.listenerMu.Lock()
		if a.listener != nil {
			_ = a.listener.Close()
		}
		a.listenerMu.Unlock()

		deadline := time.Now().Add(100 * time.Millisecond)
		a.activeConnections.Range(func(_, v any) bool {
			if c, ok := v.(net.Conn); ok {
				_ = c.SetReadDeadline(deadline)
			}
			return true
		})
		a.cancel()
	})
}

func (a *EPPAdapter) gracefulShutdown() error {
	active := a.connCount.Load()
	logger.Info("EPP graceful shutdown: waiting for active sessions", "active", active, "timeout", a.config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		a.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("EPP graceful shutdown complete")
		return nil
	case <-time.After(a.config.ShutdownTimeout):
		remaining := a.connCount.Load()
		logger.Warn("EPP shutdown timeout exceeded, forcing closure", "remaining", remaining)
		a.activeConnections.Range(func(_, v any) bool {
			if c, ok := v.(net.Conn); ok {
				_ = c.Close()
				if a.metrics != nil {
					a.metrics.RecordConnectionForceClosed()
				}
			}
			return true
		})
		return fmt.Errorf("epp: shutdown timeout: %d sessions force-closed", remaining)
	}
}

// ActiveSessions returns a snapshot of every session currently registered,
// used by shutdown logging and administrative introspection.
func (a *EPPAdapter) ActiveSessions() []session.Snapshot {
	return a.sessions.Snapshot()
}
