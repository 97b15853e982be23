package rdap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func seededServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New(map[string]*store.Registrar{"registrar1": {ClID: "registrar1", PW: "secret"}})
	now := time.Now().UTC()
	err := st.WithTransaction(context.Background(), func(tx store.Txn) error {
		if err := tx.PutHost(context.Background(), &store.Host{
			Name: "ns1.example.com", ClID: "registrar1", CrDate: now, UpDate: now,
			Addrs: []store.IPAddress{{Version: store.IPv4, Addr: "192.0.2.1"}},
		}); err != nil {
			return err
		}
		if err := tx.PutContact(context.Background(), &store.Contact{
			Handle: "sh8013", ClID: "registrar1", CrDate: now, UpDate: now,
			Postal: store.PostalInfo{Type: "int", Name: "John Doe", Cc: "US"},
			Email:  "jdoe@example.com",
		}); err != nil {
			return err
		}
		if err := tx.PutDomain(context.Background(), &store.Domain{
			Name: "example.com", ClID: "registrar1", CrDate: now, UpDate: now, ExDate: now.AddDate(1, 0, 0),
			Status:      []string{"ok"},
			Registrant:  "sh8013",
			Contacts:    []store.DomainContact{{Role: store.RoleAdmin, Handle: "sh8013"}},
			Nameservers: []string{"ns1.example.com"},
		}); err != nil {
			return err
		}
		return tx.AddDomainNS(context.Background(), "example.com", "ns1.example.com")
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewServer(st)
}

func TestLookupDomainFound(t *testing.T) {
	s := seededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/domain/example.com", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLookupDomainNotFound(t *testing.T) {
	s := seededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/domain/missing.example", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLookupEntityFound(t *testing.T) {
	s := seededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/entity/sh8013", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLookupNameserverFound(t *testing.T) {
	s := seededServer(t)
	req := httptest.NewRequest(http.MethodGet, "/nameserver/ns1.example.com", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
