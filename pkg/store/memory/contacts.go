package memory

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (tx *memTxn) GetContact(_ context.Context, handle string) (*store.Contact, error) {
	c, ok := tx.s.contacts[handle]
	if !ok {
		return nil, store.NewError(store.ErrNotFound, "contact does not exist")
	}
	cp := *c
	cp.Status = cloneStrings(c.Status)
	cp.Postal.Street = cloneStrings(c.Postal.Street)
	return &cp, nil
}

func (tx *memTxn) PutContact(_ context.Context, c *store.Contact) error {
	cp := *c
	cp.Status = cloneStrings(c.Status)
	cp.Postal.Street = cloneStrings(c.Postal.Street)
	tx.s.contacts[c.Handle] = &cp
	return nil
}

func (tx *memTxn) DeleteContact(_ context.Context, handle string) error {
	if _, ok := tx.s.contacts[handle]; !ok {
		return store.NewError(store.ErrNotFound, "contact does not exist")
	}
	delete(tx.s.contacts, handle)
	return nil
}
