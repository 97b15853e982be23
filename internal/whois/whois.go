// Package whois implements the legacy WHOIS service (RFC 3912): accept a
// TCP connection, read a single line query, write a plain-text response,
// close. It carries no session state and queries the same store EPP writes
// to, through the normalized nameserver association table rather than any
// denormalized text column.
package whois

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// readTimeout bounds how long the server waits for the query line.
const readTimeout = 5 * time.Second

// Server accepts WHOIS connections and answers domain and nameserver
// lookups from st.
type Server struct {
	store    store.Store
	port     int
	listener net.Listener
	wg       sync.WaitGroup
	shutdown chan struct{}
	once     sync.Once
}

// NewServer constructs a WHOIS server bound to port, backed by st.
func NewServer(st store.Store, port int) *Server {
	return &Server{store: st, port: port, shutdown: make(chan struct{})}
}

// Serve accepts connections until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("whois: listen on port %d: %w", s.port, err)
	}
	s.listener = ln

	logger.Info("WHOIS server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		s.once.Do(func() {
			close(s.shutdown)
			_ = ln.Close()
		})
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				s.wg.Wait()
				return nil
			default:
				logger.Debug("whois: accept error", "error", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	query := strings.TrimSpace(line)
	if query == "" {
		return
	}

	_, _ = conn.Write([]byte(s.lookup(ctx, query)))
}

// lookup resolves a single WHOIS query, trying domain then nameserver by
// the convention most WHOIS clients rely on: bare name with no object type
// prefix. A leading "ns " (rare but some clients send it) forces a host
// lookup.
func (s *Server) lookup(ctx context.Context, query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if rest, ok := strings.CutPrefix(query, "ns "); ok {
		return s.lookupNameserver(ctx, strings.TrimSpace(rest))
	}

	var d *store.Domain
	var lookupErr error
	_ = s.store.WithTransaction(ctx, func(tx store.Txn) error {
		d, lookupErr = tx.GetDomain(ctx, query)
		return nil
	})
	if lookupErr == nil {
		return formatDomain(d)
	}
	return s.lookupNameserver(ctx, query)
}

func (s *Server) lookupNameserver(ctx context.Context, name string) string {
	var h *store.Host
	var lookupErr error
	_ = s.store.WithTransaction(ctx, func(tx store.Txn) error {
		h, lookupErr = tx.GetHost(ctx, name)
		return nil
	})
	if lookupErr != nil {
		return "% No match found\r\n"
	}
	return formatNameserver(h)
}

func formatDomain(d *store.Domain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Domain Name: %s\r\n", strings.ToUpper(d.Name))
	fmt.Fprintf(&b, "Registrar: %s\r\n", d.ClID)
	fmt.Fprintf(&b, "Creation Date: %s\r\n", d.CrDate.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Registry Expiry Date: %s\r\n", d.ExDate.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated Date: %s\r\n", d.UpDate.UTC().Format(time.RFC3339))
	for _, st := range d.Status {
		fmt.Fprintf(&b, "Domain Status: %s\r\n", st)
	}
	for _, ns := range d.Nameservers {
		fmt.Fprintf(&b, "Name Server: %s\r\n", strings.ToUpper(ns))
	}
	b.WriteString(">>> Last update of WHOIS database: " + time.Now().UTC().Format(time.RFC3339) + " <<<\r\n")
	return b.String()
}

func formatNameserver(h *store.Host) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Server Name: %s\r\n", strings.ToUpper(h.Name))
	for _, a := range h.Addrs {
		fmt.Fprintf(&b, "IP Address: %s\r\n", a.Addr)
	}
	fmt.Fprintf(&b, "Registrar: %s\r\n", h.ClID)
	return b.String()
}
