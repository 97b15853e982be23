package postgres

import (
	"context"
	"time"

	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

func (t *txn) GetLatestTransfer(ctx context.Context, domain string) (*store.Transfer, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, domain, re_clid, ac_clid, status, re_date, ac_date, auth_info
		FROM transfers WHERE domain = $1 ORDER BY re_date DESC LIMIT 1`, domain)

	var tr store.Transfer
	var acDate *time.Time
	if err := row.Scan(&tr.ID, &tr.Domain, &tr.ReOID, &tr.AcID, &tr.Status, &tr.ReDate, &acDate, &tr.AuthInfo); err != nil {
		return nil, mapPgError(err, "GetLatestTransfer", "")
	}
	if acDate != nil {
		tr.AcDate = *acDate
	}
	return &tr, nil
}

func (t *txn) PutTransfer(ctx context.Context, tr *store.Transfer) error {
	var acDate *time.Time
	if !tr.AcDate.IsZero() {
		acDate = &tr.AcDate
	}

	if tr.ID == 0 {
		row := t.tx.QueryRow(ctx, `
			INSERT INTO transfers (domain, re_clid, ac_clid, status, re_date, ac_date, auth_info)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			tr.Domain, tr.ReOID, tr.AcID, tr.Status, tr.ReDate, acDate, tr.AuthInfo)
		return mapPgError(row.Scan(&tr.ID), "PutTransfer", "")
	}

	tag, err := t.tx.Exec(ctx, `
		UPDATE transfers SET re_clid=$2, ac_clid=$3, status=$4, re_date=$5, ac_date=$6, auth_info=$7
		WHERE id = $1`,
		tr.ID, tr.ReOID, tr.AcID, tr.Status, tr.ReDate, acDate, tr.AuthInfo)
	if err != nil {
		return mapPgError(err, "PutTransfer", "")
	}
	if tag.RowsAffected() == 0 {
		return store.NewError(store.ErrNotFound, "transfer record does not exist")
	}
	return nil
}

func (t *txn) PendingTransfersOlderThan(ctx context.Context, cutoffDays int) ([]*store.Transfer, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT DISTINCT ON (domain) id, domain, re_clid, ac_clid, status, re_date, ac_date, auth_info
		FROM transfers
		ORDER BY domain, re_date DESC`)
	if err != nil {
		return nil, mapPgError(err, "PendingTransfersOlderThan", "")
	}
	defer rows.Close()

	cutoff := time.Now().AddDate(0, 0, -cutoffDays)
	var out []*store.Transfer
	for rows.Next() {
		var tr store.Transfer
		var acDate *time.Time
		if err := rows.Scan(&tr.ID, &tr.Domain, &tr.ReOID, &tr.AcID, &tr.Status, &tr.ReDate, &acDate, &tr.AuthInfo); err != nil {
			return nil, mapPgError(err, "PendingTransfersOlderThan", "")
		}
		if acDate != nil {
			tr.AcDate = *acDate
		}
		if tr.Status == store.TransferPending && tr.ReDate.Before(cutoff) {
			out = append(out, &tr)
		}
	}
	return out, nil
}
