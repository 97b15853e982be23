package postgres

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (t *txn) GetContact(ctx context.Context, handle string) (*store.Contact, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT handle, clid, postal_type, name, org, street1, street2, street3,
		       city, sp, pc, cc, voice, fax, email, status, cr_date, up_date
		FROM contacts WHERE handle = $1`, handle)

	var c store.Contact
	var street1, street2, street3 string
	if err := row.Scan(
		&c.Handle, &c.ClID, &c.Postal.Type, &c.Postal.Name, &c.Postal.Org,
		&street1, &street2, &street3, &c.Postal.City, &c.Postal.Sp, &c.Postal.Pc, &c.Postal.Cc,
		&c.Voice, &c.Fax, &c.Email, &c.Status, &c.CrDate, &c.UpDate,
	); err != nil {
		return nil, mapPgError(err, "GetContact", "")
	}
	for _, s := range []string{street1, street2, street3} {
		if s != "" {
			c.Postal.Street = append(c.Postal.Street, s)
		}
	}
	return &c, nil
}

func (t *txn) PutContact(ctx context.Context, c *store.Contact) error {
	var street [3]string
	for i := 0; i < len(c.Postal.Street) && i < 3; i++ {
		street[i] = c.Postal.Street[i]
	}

	_, err := t.tx.Exec(ctx, `
		INSERT INTO contacts (
			handle, clid, postal_type, name, org, street1, street2, street3,
			city, sp, pc, cc, voice, fax, email, status, cr_date, up_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (handle) DO UPDATE SET
			clid = EXCLUDED.clid,
			postal_type = EXCLUDED.postal_type,
			name = EXCLUDED.name,
			org = EXCLUDED.org,
			street1 = EXCLUDED.street1,
			street2 = EXCLUDED.street2,
			street3 = EXCLUDED.street3,
			city = EXCLUDED.city,
			sp = EXCLUDED.sp,
			pc = EXCLUDED.pc,
			cc = EXCLUDED.cc,
			voice = EXCLUDED.voice,
			fax = EXCLUDED.fax,
			email = EXCLUDED.email,
			status = EXCLUDED.status,
			up_date = EXCLUDED.up_date`,
		c.Handle, c.ClID, c.Postal.Type, c.Postal.Name, c.Postal.Org,
		street[0], street[1], street[2], c.Postal.City, c.Postal.Sp, c.Postal.Pc, c.Postal.Cc,
		c.Voice, c.Fax, c.Email, c.Status, c.CrDate, c.UpDate)
	if err != nil {
		return mapPgError(err, "PutContact", "")
	}
	return nil
}

func (t *txn) DeleteContact(ctx context.Context, handle string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM contacts WHERE handle = $1`, handle)
	if err != nil {
		return mapPgError(err, "DeleteContact", "")
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, "contact does not exist")
	}
	return nil
}
