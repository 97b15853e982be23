package memory

import (
	"context"
	"time"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (tx *memTxn) GetLatestTransfer(_ context.Context, domain string) (*store.Transfer, error) {
	list := tx.s.transfers[domain]
	if len(list) == 0 {
		return nil, store.NewError(store.ErrNotFound, "no transfer record for domain")
	}
	latest := list[len(list)-1]
	cp := *latest
	return &cp, nil
}

func (tx *memTxn) PutTransfer(_ context.Context, t *store.Transfer) error {
	if t.ID == 0 {
		tx.s.nextTxfrID++
		t.ID = tx.s.nextTxfrID
		tx.s.transfers[t.Domain] = append(tx.s.transfers[t.Domain], t)
		return nil
	}
	list := tx.s.transfers[t.Domain]
	for i, existing := range list {
		if existing.ID == t.ID {
			list[i] = t
			return nil
		}
	}
	return store.NewError(store.ErrNotFound, "transfer record does not exist")
}

func (tx *memTxn) PendingTransfersOlderThan(_ context.Context, cutoffDays int) ([]*store.Transfer, error) {
	cutoff := time.Now().AddDate(0, 0, -cutoffDays)
	var out []*store.Transfer
	for _, list := range tx.s.transfers {
		if len(list) == 0 {
			continue
		}
		latest := list[len(list)-1]
		if latest.Status == store.TransferPending && latest.ReDate.Before(cutoff) {
			cp := *latest
			out = append(out, &cp)
		}
	}
	return out, nil
}
