package postgres

import (
	"context"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (t *txn) GetHost(ctx context.Context, name string) (*store.Host, error) {
	row := t.tx.QueryRow(ctx, `SELECT name, clid, status, cr_date, up_date FROM hosts WHERE name = $1`, name)
	var h store.Host
	if err := row.Scan(&h.Name, &h.ClID, &h.Status, &h.CrDate, &h.UpDate); err != nil {
		return nil, mapPgError(err, "GetHost", "")
	}

	rows, err := t.tx.Query(ctx, `SELECT version, addr FROM host_ips WHERE host = $1 ORDER BY addr`, name)
	if err != nil {
		return nil, mapPgError(err, "GetHost", "")
	}
	defer rows.Close()
	for rows.Next() {
		var ip store.IPAddress
		var version string
		if err := rows.Scan(&version, &ip.Addr); err != nil {
			return nil, mapPgError(err, "GetHost", "")
		}
		ip.Version = store.IPVersion(version)
		h.Addrs = append(h.Addrs, ip)
	}
	return &h, nil
}

func (t *txn) PutHost(ctx context.Context, h *store.Host) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO hosts (name, clid, status, cr_date, up_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			clid = EXCLUDED.clid, status = EXCLUDED.status, up_date = EXCLUDED.up_date`,
		h.Name, h.ClID, h.Status, h.CrDate, h.UpDate)
	if err != nil {
		return mapPgError(err, "PutHost", "")
	}

	if _, err := t.tx.Exec(ctx, `DELETE FROM host_ips WHERE host = $1`, h.Name); err != nil {
		return mapPgError(err, "PutHost", "")
	}
	for _, ip := range h.Addrs {
		if _, err := t.tx.Exec(ctx,
			`INSERT INTO host_ips (host, version, addr) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			h.Name, string(ip.Version), ip.Addr); err != nil {
			return mapPgError(err, "PutHost", "")
		}
	}
	return nil
}

func (t *txn) DeleteHost(ctx context.Context, name string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM hosts WHERE name = $1`, name)
	if err != nil {
		return mapPgError(err, "DeleteHost", "")
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, "host does not exist")
	}
	return nil
}
