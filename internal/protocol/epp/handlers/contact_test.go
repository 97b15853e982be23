package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/xmlcodec"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
	"github.com/qenex-ai/epp-registry-platform/pkg/store/memory"
)

func validPostal() xmlcodec.ContactPostalInfo {
	return xmlcodec.ContactPostalInfo{
		Type:   "loc",
		Name:   "John Doe",
		Street: []string{"123 Main St"},
		City:   "Anytown",
		Pc:     "12345",
		Cc:     "US",
	}
}

func TestContactCreateThenCheckReflectsInUse(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		avail, err := ContactCheck(ctx, txn, &xmlcodec.ContactCheck{Handles: []string{"sh8013"}})
		if err != nil {
			return err
		}
		data := avail.ResData.(contactChkData)
		if data.CD[0].ID.Avail != "1" {
			t.Fatalf("expected sh8013 available before create")
		}

		create, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: validPostal(),
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		})
		if err != nil {
			return err
		}
		if create.Code != 1000 {
			t.Fatalf("expected create to succeed, got code %d", create.Code)
		}

		recheck, err := ContactCheck(ctx, txn, &xmlcodec.ContactCheck{Handles: []string{"sh8013"}})
		if err != nil {
			return err
		}
		data = recheck.ResData.(contactChkData)
		if data.CD[0].ID.Avail != "0" {
			t.Fatalf("expected sh8013 unavailable after create")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestContactCreateRejectsMissingMandatoryPostalField(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		postal := validPostal()
		postal.Cc = ""
		result, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: postal,
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		})
		if err != nil {
			return err
		}
		if result.Code != 2003 {
			t.Fatalf("expected 2003 for missing country code, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestContactUpdateRejectsPartialPostalReplacement(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: validPostal(),
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		}); err != nil {
			return err
		}

		result, err := ContactUpdate(ctx, txn, hc, &xmlcodec.ContactUpdate{
			Handle:       "sh8013",
			ChgPostalSet: true,
			ChgPostal:    xmlcodec.ContactPostalInfo{Cc: ""},
		})
		if err != nil {
			return err
		}
		if result.Code != 2005 {
			t.Fatalf("expected 2005 when chg postalInfo drops the country code, got %d", result.Code)
		}

		c, err := txn.GetContact(ctx, "sh8013")
		if err != nil {
			return err
		}
		if c.Postal.Cc != "US" {
			t.Fatalf("expected original postal info untouched, got cc=%q", c.Postal.Cc)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestContactUpdateMergesPartialPostalWhenStillComplete(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: validPostal(),
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		}); err != nil {
			return err
		}

		result, err := ContactUpdate(ctx, txn, hc, &xmlcodec.ContactUpdate{
			Handle:       "sh8013",
			ChgPostalSet: true,
			ChgPostal:    xmlcodec.ContactPostalInfo{City: "Newtown"},
		})
		if err != nil {
			return err
		}
		if result.Code != 1000 {
			t.Fatalf("expected 1000 for a merge that keeps all mandatory fields, got %d", result.Code)
		}

		c, err := txn.GetContact(ctx, "sh8013")
		if err != nil {
			return err
		}
		if c.Postal.City != "Newtown" || c.Postal.Cc != "US" {
			t.Fatalf("expected merged postal info, got %+v", c.Postal)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestContactDeleteBlockedWhenReferencedByDomain(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: validPostal(),
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		}); err != nil {
			return err
		}
		if _, err := DomainCreate(ctx, txn, hc, &xmlcodec.DomainCreate{
			Name:       "example.test",
			Registrant: "sh8013",
			AuthInfo:   "pw1",
		}); err != nil {
			return err
		}

		result, err := ContactDelete(ctx, txn, &xmlcodec.ContactDelete{Handle: "sh8013"})
		if err != nil {
			return err
		}
		if result.Code != 2305 {
			t.Fatalf("expected 2305 for a contact referenced by a domain, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestContactDeleteSucceedsWhenUnreferenced(t *testing.T) {
	st := memory.New(nil)
	ctx := context.Background()
	hc := testDomainContext("RG1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	err := st.WithTransaction(ctx, func(txn store.Txn) error {
		if _, err := ContactCreate(ctx, txn, hc, &xmlcodec.ContactCreate{
			Handle: "sh8013",
			Postal: validPostal(),
			Voice:  "+1.7035555555",
			Email:  "jdoe@example.test",
		}); err != nil {
			return err
		}

		result, err := ContactDelete(ctx, txn, &xmlcodec.ContactDelete{Handle: "sh8013"})
		if err != nil {
			return err
		}
		if result.Code != 1000 {
			t.Fatalf("expected 1000 for an unreferenced contact delete, got %d", result.Code)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}
