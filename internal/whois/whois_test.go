package whois

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func seededStore(t *testing.T) store.Store {
	t.Helper()
	st := memory.New(nil)
	now := time.Now().UTC()
	err := st.WithTransaction(context.Background(), func(tx store.Txn) error {
		if err := tx.PutHost(context.Background(), &store.Host{
			Name: "ns1.example.com", ClID: "registrar1", CrDate: now, UpDate: now,
			Addrs: []store.IPAddress{{Version: store.IPv4, Addr: "192.0.2.1"}},
		}); err != nil {
			return err
		}
		return tx.PutDomain(context.Background(), &store.Domain{
			Name: "example.com", ClID: "registrar1", CrDate: now, UpDate: now, ExDate: now.AddDate(1, 0, 0),
			Status:      []string{"ok"},
			Nameservers: []string{"ns1.example.com"},
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return st
}

func TestLookupDomainFound(t *testing.T) {
	s := NewServer(seededStore(t), 0)
	out := s.lookup(context.Background(), "example.com")
	if !strings.Contains(out, "Domain Name: EXAMPLE.COM") {
		t.Fatalf("expected domain name line, got: %s", out)
	}
	if !strings.Contains(out, "Name Server: NS1.EXAMPLE.COM") {
		t.Fatalf("expected nameserver line, got: %s", out)
	}
}

func TestLookupNameserverFound(t *testing.T) {
	s := NewServer(seededStore(t), 0)
	out := s.lookup(context.Background(), "ns ns1.example.com")
	if !strings.Contains(out, "IP Address: 192.0.2.1") {
		t.Fatalf("expected IP address line, got: %s", out)
	}
}

func TestLookupNoMatch(t *testing.T) {
	s := NewServer(seededStore(t), 0)
	out := s.lookup(context.Background(), "nothere.example")
	if !strings.Contains(out, "No match") {
		t.Fatalf("expected no-match response, got: %s", out)
	}
}
