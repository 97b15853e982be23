package memory

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (tx *memTxn) GetHost(_ context.Context, name string) (*store.Host, error) {
	h, ok := tx.s.hosts[name]
	if !ok {
		return nil, store.NewError(store.ErrNotFound, "host does not exist")
	}
	cp := *h
	cp.Status = cloneStrings(h.Status)
	cp.Addrs = append([]store.IPAddress(nil), h.Addrs...)
	return &cp, nil
}

func (tx *memTxn) PutHost(_ context.Context, h *store.Host) error {
	cp := *h
	cp.Status = cloneStrings(h.Status)
	cp.Addrs = append([]store.IPAddress(nil), h.Addrs...)
	tx.s.hosts[h.Name] = &cp
	return nil
}

func (tx *memTxn) DeleteHost(_ context.Context, name string) error {
	if _, ok := tx.s.hosts[name]; !ok {
		return store.NewError(store.ErrNotFound, "host does not exist")
	}
	delete(tx.s.hosts, name)
	return nil
}
