package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func testDomainContext(clID string, now time.Time) Context {
	return Context{ClID: clID, ServerID: "EPP", Now: func() time.Time { return now }}
}

func TestDomainCreateThenCheckReflectsInUse(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hc := testDomainContext("RG1", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		avail, err := DomainCheck(ctx, txn, &xmlcodec.DomainCheck{Names: []string{"example.test"}})
		if err != nil {
			return err
		}
		data := avail.ResData.(domainChkData)
		if data.CD[0].Name.Avail != "1" {
			t.Fatalf("expected example.test available before create")
		}

		create, err := DomainCreate(ctx, txn, hc, &xmlcodec.DomainCreate{
			Name:        "example.test",
			PeriodYears: 2,
			Registrant:  "C1",
			AuthInfo:    "pw1",
		})
		if err != nil {
			return err
		}
		if create.Code != 1000 {
			t.Fatalf("expected create to succeed, got code %d", create.Code)
		}
		cre := create.ResData.(domainCreData)
		if cre.ExDate != base.AddDate(0, 0, 730).Format(time.RFC3339) {
			t.Fatalf("expected exDate 730 days out, got %s", cre.ExDate)
		}

		recheck, err := DomainCheck(ctx, txn, &xmlcodec.DomainCheck{Names: []string{"example.test"}})
		if err != nil {
			return err
		}
		data = recheck.ResData.(domainChkData)
		if data.CD[0].Name.Avail != "0" {
			t.Fatalf("expected example.test unavailable after create")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDomainCreateRejectsDuplicateName(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := testDomainContext("RG1", base)
	other := testDomainContext("RG2", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		create, err := DomainCreate(ctx, txn, owner, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C1", AuthInfo: "pw1",
		})
		if err != nil {
			return err
		}
		if create.Code != 1000 {
			t.Fatalf("expected first create to succeed, got code %d", create.Code)
		}

		dup, err := DomainCreate(ctx, txn, other, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C2", AuthInfo: "pw2",
		})
		if err != nil {
			return err
		}
		if dup.Code != 2302 {
			t.Fatalf("expected 2302 for duplicate create, got %d", dup.Code)
		}

		d, err := txn.GetDomain(ctx, "example.test")
		if err != nil {
			return err
		}
		if d.ClID != "RG1" || d.Registrant != "C1" || d.AuthInfo != "pw1" {
			t.Fatalf("expected original domain untouched by rejected duplicate create, got %+v", d)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDomainUpdateRejectsNonSponsor(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := testDomainContext("RG1", base)
	other := testDomainContext("RG2", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := DomainCreate(ctx, txn, owner, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C1", AuthInfo: "pw1",
		}); err != nil {
			return err
		}

		result, err := DomainUpdate(ctx, txn, other, &xmlcodec.DomainUpdate{
			Name:           "example.test",
			AddNameservers: []string{"ns1.rg2.test"},
		})
		if err != nil {
			return err
		}
		if result.Code != 2201 {
			t.Fatalf("expected 2201 for non-sponsor update, got %d", result.Code)
		}

		d, err := txn.GetDomain(ctx, "example.test")
		if err != nil {
			return err
		}
		if len(d.Nameservers) != 0 {
			t.Fatalf("expected domain unchanged, got nameservers %v", d.Nameservers)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDomainRenewRequiresMatchingCurrentExpiry(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hc := testDomainContext("RG1", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := DomainCreate(ctx, txn, hc, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C1", AuthInfo: "pw1",
		}); err != nil {
			return err
		}

		result, err := DomainRenew(ctx, txn, hc, &xmlcodec.DomainRenew{
			Name:           "example.test",
			CurrentExpDate: "2020-01-01",
			PeriodYears:    1,
		})
		if err != nil {
			return err
		}
		if result.Code != 2306 {
			t.Fatalf("expected 2306 for stale expiry, got %d", result.Code)
		}

		result, err = DomainRenew(ctx, txn, hc, &xmlcodec.DomainRenew{
			Name:           "example.test",
			CurrentExpDate: "2027-01-01",
			PeriodYears:    1,
		})
		if err != nil {
			return err
		}
		if result.Code != 1000 {
			t.Fatalf("expected 1000 for matching expiry, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDomainTransferRequiresCorrectAuthInfo(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	owner := testDomainContext("RG1", base)
	gaining := testDomainContext("RG2", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := DomainCreate(ctx, txn, owner, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C1", AuthInfo: "pw1",
		}); err != nil {
			return err
		}

		result, err := DomainTransfer(ctx, txn, gaining, &xmlcodec.DomainTransfer{
			Name: "example.test", Op: xmlcodec.TransferOpRequest, AuthInfo: "wrong",
		})
		if err != nil {
			return err
		}
		if result.Code != 2202 {
			t.Fatalf("expected 2202 for bad auth info, got %d", result.Code)
		}

		result, err = DomainTransfer(ctx, txn, gaining, &xmlcodec.DomainTransfer{
			Name: "example.test", Op: xmlcodec.TransferOpRequest, AuthInfo: "pw1",
		})
		if err != nil {
			return err
		}
		if result.Code != 1001 {
			t.Fatalf("expected 1001 for valid transfer request, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDomainDeleteBlockedByClientDeleteProhibited(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	hc := testDomainContext("RG1", base)

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := DomainCreate(ctx, txn, hc, &xmlcodec.DomainCreate{
			Name: "example.test", Registrant: "C1", AuthInfo: "pw1",
		}); err != nil {
			return err
		}
		if _, err := DomainUpdate(ctx, txn, hc, &xmlcodec.DomainUpdate{
			Name: "example.test", AddStatus: []string{"clientDeleteProhibited"},
		}); err != nil {
			return err
		}

		result, err := DomainDelete(ctx, txn, hc, &xmlcodec.DomainDelete{Name: "example.test"})
		if err != nil {
			return err
		}
		if result.Code != 2304 {
			t.Fatalf("expected 2304 for prohibited delete, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}
