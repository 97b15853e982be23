// Package transfer runs the periodic background sweep that auto-approves
// domain transfer requests left unactioned past the grace period (RFC 5730
// section 3.2.3): for each transfer still pending after AutoApproveDays,
// reassign sponsorship to the requesting client exactly as an explicit
// client "approve" would, inside the same store transaction the EPP
// handlers use.
package transfer

import (
	"context"
	"time"

	"github.com/qenex-ai/epp-registry-platform/internal/logger"
	"github.com/qenex-ai/epp-registry-platform/internal/protocol/epp/handlers"
	"github.com/qenex-ai/epp-registry-platform/pkg/metrics"
	"github.com/qenex-ai/epp-registry-platform/pkg/store"
)

// Sweeper periodically scans for pending transfers older than
// handlers.AutoApproveDays and auto-approves them.
type Sweeper struct {
	store    store.Store
	interval time.Duration
	metrics  metrics.EPPMetrics
	now      func() time.Time
}

// New constructs a Sweeper. m may be nil to disable metrics.
func New(st store.Store, interval time.Duration, m metrics.EPPMetrics) *Sweeper {
	return &Sweeper{store: st, interval: interval, metrics: m, now: time.Now}
}

// Run blocks, sweeping every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				logger.Error("transfer sweeper: sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs one pass, approving every transfer that has sat pending past
// the grace period. Each approval commits in its own transaction so one bad
// record cannot block the rest of the batch.
func (s *Sweeper) Sweep(ctx context.Context) error {
	var pending []*store.Transfer
	err := s.store.WithTransaction(ctx, func(tx store.Txn) error {
		found, err := tx.PendingTransfersOlderThan(ctx, handlers.AutoApproveDays)
		pending = found
		return err
	})
	if err != nil {
		return err
	}

	for _, tr := range pending {
		if err := s.approve(ctx, tr.Domain); err != nil {
			logger.Error("transfer sweeper: auto-approve failed", "domain", tr.Domain, "error", err)
			continue
		}
		logger.Info("transfer auto-approved", "domain", tr.Domain)
		if s.metrics != nil {
			s.metrics.RecordTransferAutoApproved()
		}
	}
	return nil
}

// approve re-reads the transfer inside its own transaction (another
// command may have actioned it between the scan and now) and, if it is
// still pending, applies the same sponsorship change an explicit client
// "approve" would.
func (s *Sweeper) approve(ctx context.Context, domain string) error {
	return s.store.WithTransaction(ctx, func(tx store.Txn) error {
		tr, err := tx.GetLatestTransfer(ctx, domain)
		if err != nil {
			return err
		}
		if tr.Status != store.TransferPending {
			return nil
		}

		d, err := tx.GetDomain(ctx, domain)
		if err != nil {
			return err
		}

		now := s.now()
		tr.Status = store.TransferServerApproved
		tr.AcDate = now
		if err := tx.PutTransfer(ctx, tr); err != nil {
			return err
		}

		d.ClID = tr.AcID
		d.ExDate = d.ExDate.AddDate(1, 0, 0)
		d.UpDate = now
		return tx.PutDomain(ctx, d)
	})
}
