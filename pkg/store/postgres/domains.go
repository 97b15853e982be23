package postgres

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (t *txn) GetDomain(ctx context.Context, name string) (*store.Domain, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT name, clid, registrant, auth_info, status, cr_date, ex_date, up_date
		FROM domains WHERE name = $1`, name)

	var d store.Domain
	if err := row.Scan(&d.Name, &d.ClID, &d.Registrant, &d.AuthInfo, &d.Status, &d.CrDate, &d.ExDate, &d.UpDate); err != nil {
		return nil, mapPgError(err, "GetDomain", "")
	}

	rows, err := t.tx.Query(ctx, `SELECT role, handle FROM domain_contacts WHERE domain = $1`, name)
	if err != nil {
		return nil, mapPgError(err, "GetDomain", "")
	}
	defer rows.Close()
	for rows.Next() {
		var dc store.DomainContact
		var role string
		if err := rows.Scan(&role, &dc.Handle); err != nil {
			return nil, mapPgError(err, "GetDomain", "")
		}
		dc.Role = store.ContactRole(role)
		d.Contacts = append(d.Contacts, dc)
	}

	nsRows, err := t.tx.Query(ctx, `SELECT host FROM domain_nameservers WHERE domain = $1 ORDER BY host`, name)
	if err != nil {
		return nil, mapPgError(err, "GetDomain", "")
	}
	defer nsRows.Close()
	for nsRows.Next() {
		var host string
		if err := nsRows.Scan(&host); err != nil {
			return nil, mapPgError(err, "GetDomain", "")
		}
		d.Nameservers = append(d.Nameservers, host)
	}

	return &d, nil
}

func (t *txn) PutDomain(ctx context.Context, d *store.Domain) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO domains (name, clid, registrant, auth_info, status, cr_date, ex_date, up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			clid = EXCLUDED.clid,
			registrant = EXCLUDED.registrant,
			auth_info = EXCLUDED.auth_info,
			status = EXCLUDED.status,
			ex_date = EXCLUDED.ex_date,
			up_date = EXCLUDED.up_date`,
		d.Name, d.ClID, d.Registrant, d.AuthInfo, d.Status, d.CrDate, d.ExDate, d.UpDate)
	if err != nil {
		return mapPgError(err, "PutDomain", "")
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM domain_contacts WHERE domain = $1`, d.Name); err != nil {
		return mapPgError(err, "PutDomain", "")
	}
	for _, c := range d.Contacts {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO domain_contacts (domain, role, handle) VALUES ($1, $2, $3)`,
			d.Name, string(c.Role), c.Handle); err != nil {
			return mapPgError(err, "PutDomain", "")
		}
	}

	return nil
}

func (t *txn) DeleteDomain(ctx context.Context, name string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM domains WHERE name = $1`, name)
	if err != nil {
		return mapPgError(err, "DeleteDomain", "")
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, "domain does not exist")
	}
	return nil
}

func (t *txn) AddDomainNS(ctx context.Context, domain, host string) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO domain_nameservers (domain, host) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		domain, host)
	if err != nil {
		return mapPgError(err, "AddDomainNS", "")
	}
	return nil
}

func (t *txn) RemoveDomainNS(ctx context.Context, domain, host string) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM domain_nameservers WHERE domain = $1 AND host = $2`, domain, host)
	if err != nil {
		return mapPgError(err, "RemoveDomainNS", "")
	}
	return nil
}

func (t *txn) CountDomainsReferencingContact(ctx context.Context, handle string) (int, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT count(DISTINCT name) FROM (
			SELECT name FROM domains WHERE registrant = $1
			UNION
			SELECT domain AS name FROM domain_contacts WHERE handle = $1
		) refs`, handle)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, mapPgError(err, "CountDomainsReferencingContact", "")
	}
	return count, nil
}

func (t *txn) CountDomainsReferencingHost(ctx context.Context, name string) (int, error) {
	row := t.tx.QueryRow(ctx, `SELECT count(DISTINCT domain) FROM domain_nameservers WHERE host = $1`, name)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, mapPgError(err, "CountDomainsReferencingHost", "")
	}
	return count, nil
}
