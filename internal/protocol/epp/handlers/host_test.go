package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func testHostContext() Context {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return Context{ClID: "registrar1", ServerID: "EPP", Now: func() time.Time { return fixed }}
}

func TestHostCheckInvalidHostname(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	var result Result
	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		r, err := HostCheck(ctx, txn, &xmlcodec.HostCheck{Names: []string{"not_a_hostname"}})
		result = r
		return err
	})
	if err != nil {
		t.Fatalf("HostCheck: %v", err)
	}
	data, ok := result.ResData.(hostChkData)
	if !ok || len(data.CD) != 1 {
		t.Fatalf("expected one check item, got %#v", result.ResData)
	}
	if data.CD[0].Name.Avail != "0" || data.CD[0].Reason != "Invalid hostname format" {
		t.Fatalf("expected invalid-form rejection, got %#v", data.CD[0])
	}
}

func TestHostCreateAndCheckInUse(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testHostContext()

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		_, err := HostCreate(ctx, txn, hc, &xmlcodec.HostCreate{
			Name:  "ns1.example.com",
			Addrs: []xmlcodec.HostAddr{{Version: "v4", Addr: "192.0.2.1"}},
		})
		return err
	})
	if err != nil {
		t.Fatalf("HostCreate: %v", err)
	}

	var result Result
	err = st.WithTransaction(ctx, func(txn store.Txn) error {
		r, err := HostCheck(ctx, txn, &xmlcodec.HostCheck{Names: []string{"ns1.example.com"}})
		result = r
		return err
	})
	if err != nil {
		t.Fatalf("HostCheck: %v", err)
	}
	data := result.ResData.(hostChkData)
	if data.CD[0].Name.Avail != "0" || data.CD[0].Reason != "In use" {
		t.Fatalf("expected in-use rejection, got %#v", data.CD[0])
	}
}

func TestHostCreateRejectsInvalidIP(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testHostContext()

	var result Result
	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		r, err := HostCreate(ctx, txn, hc, &xmlcodec.HostCreate{
			Name:  "ns1.example.com",
			Addrs: []xmlcodec.HostAddr{{Version: "v4", Addr: "999.0.0.1"}},
		})
		result = r
		return err
	})
	if err != nil {
		t.Fatalf("HostCreate: %v", err)
	}
	if result.Code != 2005 {
		t.Fatalf("expected 2005 for invalid IP, got %d", result.Code)
	}
}

func TestHostCreateDuplicateRejected(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testHostContext()

	create := func() (Result, error) {
		var result Result
		err := st.WithTransaction(ctx, func(txn store.Txn) error {
			r, err := HostCreate(ctx, txn, hc, &xmlcodec.HostCreate{Name: "ns1.example.com"})
			result = r
			return err
		})
		return result, err
	}

	if _, err := create(); err != nil {
		t.Fatalf("first create: %v", err)
	}
	result, err := create()
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if result.Code != 2302 {
		t.Fatalf("expected 2302 for duplicate host, got %d", result.Code)
	}
}

func TestHostUpdateAddRemAddrsAndStatus(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testHostContext()

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		_, err := HostCreate(ctx, txn, hc, &xmlcodec.HostCreate{
			Name:  "ns1.example.com",
			Addrs: []xmlcodec.HostAddr{{Version: "v4", Addr: "192.0.2.1"}},
		})
		return err
	})
	if err != nil {
		t.Fatalf("HostCreate: %v", err)
	}

	err = st.WithTransaction(ctx, func(txn store.Txn) error {
		_, err := HostUpdate(ctx, txn, hc, &xmlcodec.HostUpdate{
			Name:      "ns1.example.com",
			AddAddrs:  []xmlcodec.HostAddr{{Version: "v4", Addr: "192.0.2.1"}, {Version: "v6", Addr: "2001:db8::1"}},
			RemAddrs:  []xmlcodec.HostAddr{{Version: "v4", Addr: "203.0.113.9"}},
			AddStatus: []string{"clientUpdateProhibited"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("HostUpdate: %v", err)
	}

	var result Result
	err = st.WithTransaction(ctx, func(txn store.Txn) error {
		r, err := HostInfo(ctx, txn, hc, &xmlcodec.HostInfo{Name: "ns1.example.com"})
		result = r
		return err
	})
	if err != nil {
		t.Fatalf("HostInfo: %v", err)
	}
	info := result.ResData.(hostInfData)
	if len(info.Addr) != 2 {
		t.Fatalf("expected duplicate add to coalesce to 2 addrs, got %d: %#v", len(info.Addr), info.Addr)
	}
	foundStatus := false
	for _, s := range info.Status {
		if s.S == "clientUpdateProhibited" {
			foundStatus = true
		}
	}
	if !foundStatus {
		t.Fatalf("expected added status present, got %#v", info.Status)
	}
}

func TestHostDeleteFailsWhenReferenced(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testHostContext()

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := HostCreate(ctx, txn, hc, &xmlcodec.HostCreate{Name: "ns1.example.com"}); err != nil {
			return err
		}
		d := &store.Domain{Name: "example.com", ClID: hc.ClID, CrDate: hc.now(), Status: []string{"ok"}}
		if err := txn.PutDomain(ctx, d); err != nil {
			return err
		}
		return txn.AddDomainNS(ctx, "example.com", "ns1.example.com")
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	var result Result
	err = st.WithTransaction(ctx, func(txn store.Txn) error {
		r, err := HostDelete(ctx, txn, &xmlcodec.HostDelete{Name: "ns1.example.com"})
		result = r
		return err
	})
	if err != nil {
		t.Fatalf("HostDelete: %v", err)
	}
	if result.Code != 2305 {
		t.Fatalf("expected 2305 for referenced host, got %d", result.Code)
	}
}
