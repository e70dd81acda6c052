package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"fiesta/internal/infra"
	"fiesta/internal/models/db_models"
	"fiesta/internal/platform"
	"fiesta/internal/repositories"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

const (
	// SequenceTypeTransactionUpdate keys the reconciler's cursor row.
	SequenceTypeTransactionUpdate = "transaction_update"

	reconcilerLockKey  = "fiesta:reconciler:run"
	ReconcilerInterval = 5 * time.Minute
)

type ReconcilerServiceInterface interface {
	// RunOnce processes one batch of transition events. Exposed for tests and
	// for a manual replay.
	RunOnce(ctx context.Context) error
	Start()
	Stop()
}

// ReconcilerService is the eventual-consistency backstop for out-of-band
// payouts: it polls the platform's event feed for cancellation transitions on
// the cart-purchase process and reverses any payout the ledger still records
// as transfered. The ledger's reversal/refund ids make reprocessing the same
// event a no-op; the run lock keeps overlapping ticks from racing each other.
type ReconcilerService struct {
	marketplace platform.Client
	ledger      repositories.LedgerRepositoryInterface
	sequences   repositories.SequenceRepositoryInterface
	transfers   TransferServiceInterface
	lock        infra.RunLock
	metrics     *Metrics
	logger      *zap.SugaredLogger

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewReconcilerService(
	marketplace platform.Client,
	ledger repositories.LedgerRepositoryInterface,
	sequences repositories.SequenceRepositoryInterface,
	transfers TransferServiceInterface,
	lock infra.RunLock,
	metrics *Metrics,
	logger *zap.SugaredLogger,
) ReconcilerServiceInterface {
	return &ReconcilerService{
		marketplace: marketplace,
		ledger:      ledger,
		sequences:   sequences,
		transfers:   transfers,
		lock:        lock,
		metrics:     metrics,
		logger:      logger,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

func (s *ReconcilerService) Start() {
	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(ReconcilerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

func (s *ReconcilerService) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *ReconcilerService) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), ReconcilerInterval)
	defer cancel()

	acquired, err := s.lock.Acquire(ctx, reconcilerLockKey, ReconcilerInterval)
	if err != nil {
		s.logger.Errorw("reconciler lock unavailable, skipping tick", "error", err)
		return
	}
	if !acquired {
		s.logger.Infow("previous reconciler run still in progress, skipping tick")
		return
	}
	defer func() {
		if err := s.lock.Release(context.Background(), reconcilerLockKey); err != nil {
			s.logger.Warnw("reconciler lock release failed", "error", err)
		}
	}()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Errorw("reconciler run failed", "error", err)
	}
}

func (s *ReconcilerService) RunOnce(ctx context.Context) error {
	cursor, err := s.sequences.Get(ctx, SequenceTypeTransactionUpdate)
	if err != nil {
		return err
	}

	query := platform.EventQuery{
		Types:       []string{platform.EventTypeTransactionTransitioned},
		ProcessName: txprocess.ProcessPurchase,
	}
	if cursor != nil {
		lastID := cursor.LastID
		query.StartAfterSequenceID = &lastID
	} else {
		// Cold start: look at the last polling interval only.
		query.CreatedAtStart = time.Now().UTC().Add(-ReconcilerInterval)
	}

	// A failed fetch advances nothing; the next tick retries the same window.
	events, err := s.marketplace.QueryEvents(ctx, query)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	// Per-transaction failures are isolated: one bad event must not block the
	// rest of the batch. Ledger rows are independent per transaction, so the
	// fan-out needs no ordering.
	var wg sync.WaitGroup
	for _, ev := range events {
		wg.Add(1)
		go func(ev platform.Event) {
			defer wg.Done()
			s.metrics.EventsProcessed.Inc()
			if err := s.processEvent(ctx, ev); err != nil {
				if errors.Is(err, utils.ErrReconciliationLookup) {
					s.metrics.ReconcileSkips.Inc()
					s.logger.Infow("event references an untracked transaction, skipping",
						"tx_id", ev.TxID, "sequence_id", ev.SequenceID)
					return
				}
				s.metrics.ReconcileFailures.Inc()
				s.logger.Errorw("event reconciliation failed",
					"tx_id", ev.TxID, "transition", ev.LastTransition, "sequence_id", ev.SequenceID, "error", err)
			}
		}(ev)
	}
	wg.Wait()

	// Cursor moves after the batch was attempted, never before. A crash in the
	// middle replays the batch; the reversal-id guard absorbs the duplicates.
	last := events[0].SequenceID
	for _, ev := range events {
		if ev.SequenceID > last {
			last = ev.SequenceID
		}
	}
	return s.sequences.Advance(ctx, SequenceTypeTransactionUpdate, last)
}

func (s *ReconcilerService) processEvent(ctx context.Context, ev platform.Event) error {
	if !txprocess.IsRefunded(ev.LastTransition) {
		return nil
	}

	row, err := s.ledger.GetByTxID(ctx, ev.TxID)
	if err != nil {
		return err
	}
	if row == nil {
		return utils.ErrReconciliationLookup
	}

	// Idempotency guard: the feed is at-least-once, so the same cancellation
	// can show up twice. An existing reversal or refund means the work is done.
	if row.ProviderTransferStatus == db_models.TransferStatusReversed ||
		row.ReversalID != "" || row.RefundID != "" {
		return nil
	}
	if row.PaymentIntentID == "" || row.ProviderTransferID == "" {
		s.logger.Warnw("ledger row missing payment artifacts, cannot reverse",
			"tx_id", ev.TxID)
		return nil
	}

	result, err := s.transfers.ReverseAndRefund(ctx, ReverseAndRefundInput{
		TransferID:        row.ProviderTransferID,
		PaymentIntentID:   row.PaymentIntentID,
		AmountMinor:       row.TxProviderAmountMinor,
		CustomerInitiated: txprocess.IsCustomerInitiatedCancel(ev.LastTransition),
	})
	if err != nil {
		return err
	}
	s.metrics.ReversalsCompleted.Inc()

	updated, err := s.ledger.MarkReversed(ctx, ev.TxID, result.ReversalID, result.RefundID)
	if err != nil {
		return err
	}
	if !updated {
		// Another run won the compare-and-swap after our read.
		s.metrics.DuplicateOperations.Inc()
		s.logger.Warnw("ledger row already reversed by a concurrent run", "tx_id", ev.TxID)
	}
	return nil
}
