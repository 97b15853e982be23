package memory

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (tx *memTxn) GetDomain(_ context.Context, name string) (*store.Domain, error) {
	d, ok := tx.s.domains[name]
	if !ok {
		return nil, store.NewError(store.ErrNotFound, "domain does not exist")
	}
	cp := *d
	cp.Status = cloneStrings(d.Status)
	cp.Contacts = append([]store.DomainContact(nil), d.Contacts...)
	cp.Nameservers = nil
	for host := range tx.s.domainNS[name] {
		cp.Nameservers = append(cp.Nameservers, host)
	}
	return &cp, nil
}

func (tx *memTxn) PutDomain(_ context.Context, d *store.Domain) error {
	cp := *d
	cp.Status = cloneStrings(d.Status)
	cp.Contacts = append([]store.DomainContact(nil), d.Contacts...)
	nameservers := d.Nameservers
	cp.Nameservers = nil
	tx.s.domains[d.Name] = &cp
	set, ok := tx.s.domainNS[d.Name]
	if !ok {
		set = make(map[string]bool)
		tx.s.domainNS[d.Name] = set
	}
	for _, host := range nameservers {
		set[host] = true
	}
	return nil
}

func (tx *memTxn) DeleteDomain(_ context.Context, name string) error {
	if _, ok := tx.s.domains[name]; !ok {
		return store.NewError(store.ErrNotFound, "domain does not exist")
	}
	delete(tx.s.domains, name)
	delete(tx.s.domainNS, name)
	return nil
}

func (tx *memTxn) AddDomainNS(_ context.Context, domain, host string) error {
	set, ok := tx.s.domainNS[domain]
	if !ok {
		set = make(map[string]bool)
		tx.s.domainNS[domain] = set
	}
	set[host] = true
	return nil
}

func (tx *memTxn) RemoveDomainNS(_ context.Context, domain, host string) error {
	if set, ok := tx.s.domainNS[domain]; ok {
		delete(set, host)
	}
	return nil
}

func (tx *memTxn) CountDomainsReferencingContact(_ context.Context, handle string) (int, error) {
	count := 0
	for _, d := range tx.s.domains {
		if d.Registrant == handle {
			count++
			continue
		}
		for _, c := range d.Contacts {
			if c.Handle == handle {
				count++
				break
			}
		}
	}
	return count, nil
}

func (tx *memTxn) CountDomainsReferencingHost(_ context.Context, name string) (int, error) {
	count := 0
	for domain, set := range tx.s.domainNS {
		if _, ok := tx.s.domains[domain]; !ok {
			continue
		}
		if set[name] {
			count++
		}
	}
	return count, nil
}
