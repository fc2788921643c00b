package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mandibook/mandiledger/internal/domain"
	"github.com/mandibook/mandiledger/internal/infrastructure/metrics"
)

// SyncUseCase mirrors the local ledger into a remote store. It serves two
// paths: fire-and-forget uploads triggered by every mutation, and bulk
// last-write-wins sweeps that reconcile both directions after offline gaps.
// Sync failures never fail the local write; the next sweep catches up.
type SyncUseCase struct {
	txManager   TransactionManager
	buyRepo     BuyRepository
	sellRepo    SellRepository
	lendRepo    LendRepository
	expenseRepo ExpenseRepository
	mappingRepo MappingRepository
	syncLogRepo SyncLogRepository
	mirror      RemoteMirror
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	batchSize   int

	// Serializes bulk sweeps; concurrent sweeps would double-push.
	sweepMu sync.Mutex
}

// NewSyncUseCase creates a new SyncUseCase.
func NewSyncUseCase(
	txManager TransactionManager,
	buyRepo BuyRepository,
	sellRepo SellRepository,
	lendRepo LendRepository,
	expenseRepo ExpenseRepository,
	mappingRepo MappingRepository,
	syncLogRepo SyncLogRepository,
	mirror RemoteMirror,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
	batchSize int,
) *SyncUseCase {
	if batchSize <= 0 || batchSize > DefaultSyncBatchSize {
		batchSize = DefaultSyncBatchSize
	}
	return &SyncUseCase{
		txManager:   txManager,
		buyRepo:     buyRepo,
		sellRepo:    sellRepo,
		lendRepo:    lendRepo,
		expenseRepo: expenseRepo,
		mappingRepo: mappingRepo,
		syncLogRepo: syncLogRepo,
		mirror:      mirror,
		idGen:       idGen,
		logger:      logger.With().Str("component", "sync").Logger(),
		metrics:     m,
		batchSize:   batchSize,
	}
}

// NotifyUpserted uploads one transaction in the background. Without a user
// session the ledger runs local-only and the upload is skipped.
func (uc *SyncUseCase) NotifyUpserted(ctx context.Context, txn *domain.Transaction) {
	userID, ok := domain.UserIDFromContext(ctx)
	if !ok || uc.mirror == nil {
		uc.uploadOutcome("skipped")
		return
	}

	go func() {
		upCtx, cancel := context.WithTimeout(context.Background(), MirrorUploadTimeout)
		defer cancel()

		if err := uc.mirror.Upload(upCtx, userID, txn); err != nil {
			uc.logger.Warn().Err(err).
				Str("transaction_id", txn.ID()).
				Str("type", string(txn.Type)).
				Msg("background upload failed, next sweep will retry")
			uc.uploadOutcome("error")
			return
		}
		uc.uploadOutcome("ok")
	}()
}

// NotifyDeleted propagates a deletion to the mirror in the background.
func (uc *SyncUseCase) NotifyDeleted(ctx context.Context, txType domain.TransactionType, id string) {
	userID, ok := domain.UserIDFromContext(ctx)
	if !ok || uc.mirror == nil {
		uc.uploadOutcome("skipped")
		return
	}

	go func() {
		upCtx, cancel := context.WithTimeout(context.Background(), MirrorUploadTimeout)
		defer cancel()

		if err := uc.mirror.Delete(upCtx, userID, txType, id); err != nil {
			uc.logger.Warn().Err(err).
				Str("transaction_id", id).
				Str("type", string(txType)).
				Msg("background delete failed")
			uc.uploadOutcome("error")
			return
		}
		uc.uploadOutcome("ok")
	}()
}

func (uc *SyncUseCase) uploadOutcome(outcome string) {
	if uc.metrics != nil {
		uc.metrics.SyncUploads.WithLabelValues(outcome).Inc()
	}
}

// SyncData runs one bulk reconciliation sweep. Each transaction present on
// either side is resolved last-write-wins on its update timestamp: the newer
// copy overwrites the older one, equal timestamps are skipped. Requires a
// user session.
func (uc *SyncUseCase) SyncData(ctx context.Context) (*domain.SyncLog, error) {
	userID, ok := domain.UserIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrNoSession
	}
	if uc.mirror == nil {
		return nil, domain.ErrMirrorDisabled
	}

	uc.sweepMu.Lock()
	defer uc.sweepMu.Unlock()

	started := time.Now().UTC()
	log := &domain.SyncLog{
		ID:        uc.idGen.Generate(),
		StartedAt: started,
	}

	remotes, err := uc.mirror.FetchAll(ctx, userID)
	if err != nil {
		log.FinishedAt = time.Now().UTC()
		log.Status = domain.SyncStatusFailed
		log.Detail = fmt.Sprintf("fetch remote: %v", err)
		uc.finishSweep(ctx, log, started)
		return log, fmt.Errorf("fetch remote transactions: %w", err)
	}

	locals, err := uc.listAllLocal(ctx)
	if err != nil {
		log.FinishedAt = time.Now().UTC()
		log.Status = domain.SyncStatusFailed
		log.Detail = fmt.Sprintf("list local: %v", err)
		uc.finishSweep(ctx, log, started)
		return log, err
	}

	localByID := make(map[string]*domain.Transaction, len(locals))
	localByInvoice := make(map[string]*domain.Transaction, len(locals))
	for _, txn := range locals {
		localByID[txn.ID()] = txn
		if inv := txn.InvoiceNumber(); inv != "" {
			localByInvoice[inv] = txn
		}
	}

	var toPush []*domain.Transaction
	var toPull []pulledRecord
	matched := make(map[string]bool, len(remotes))

	for _, remote := range remotes {
		local, err := uc.resolveLocal(ctx, remote, localByID, localByInvoice)
		if err != nil {
			log.Failed++
			uc.logger.Warn().Err(err).Str("remote_id", remote.RemoteID).Msg("resolve remote transaction")
			continue
		}

		if local == nil {
			toPull = append(toPull, pulledRecord{remote: remote})
			continue
		}

		matched[local.ID()] = true
		remoteAt := remote.Transaction.UpdatedAt()
		localAt := local.UpdatedAt()
		switch {
		case remoteAt.After(localAt):
			toPull = append(toPull, pulledRecord{remote: remote, localID: local.ID()})
		case localAt.After(remoteAt):
			toPush = append(toPush, local)
		default:
			log.Skipped++
		}
	}

	// Anything the mirror has never seen goes up.
	for _, txn := range locals {
		if !matched[txn.ID()] {
			toPush = append(toPush, txn)
		}
	}

	pulled, failed := uc.applyPulls(ctx, toPull)
	log.Pulled = pulled
	log.Failed += failed

	pushed, failed := uc.pushBatches(ctx, userID, toPush)
	log.Pushed = pushed
	log.Failed += failed

	log.FinishedAt = time.Now().UTC()
	switch {
	case log.Failed == 0:
		log.Status = domain.SyncStatusOK
	case log.Pushed+log.Pulled > 0:
		log.Status = domain.SyncStatusPartial
	default:
		log.Status = domain.SyncStatusFailed
	}

	uc.finishSweep(ctx, log, started)

	uc.logger.Info().
		Int("pushed", log.Pushed).
		Int("pulled", log.Pulled).
		Int("skipped", log.Skipped).
		Int("failed", log.Failed).
		Str("status", log.Status).
		Dur("duration", log.FinishedAt.Sub(started)).
		Msg("sync sweep finished")

	return log, nil
}

// resolveLocal finds the local copy of a remote transaction. Identity is
// tried in order: the id itself, the stored remote-local mapping, and
// finally the invoice number, which catches records re-created locally after
// a reinstall.
func (uc *SyncUseCase) resolveLocal(ctx context.Context, remote *domain.RemoteTransaction, byID, byInvoice map[string]*domain.Transaction) (*domain.Transaction, error) {
	if local, ok := byID[remote.Transaction.ID()]; ok {
		return local, nil
	}

	mapping, err := uc.mappingRepo.GetByRemoteID(ctx, remote.RemoteID)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		if local, ok := byID[mapping.LocalID]; ok {
			return local, nil
		}
	}

	if inv := remote.Transaction.InvoiceNumber(); inv != "" {
		if local, ok := byInvoice[inv]; ok {
			return local, nil
		}
	}

	return nil, nil
}

// pulledRecord pairs a cloud copy with the id of the local row it was matched
// to, when one exists. Mapping and invoice matches resolve to a local row
// whose id differs from the cloud copy's embedded id; writing the copy under
// that local id keeps one ledger entry per transaction across restores.
type pulledRecord struct {
	remote  *domain.RemoteTransaction
	localID string
}

// applyPulls writes cloud-origin copies in one storage transaction so a
// sweep never leaves the ledger half-updated.
func (uc *SyncUseCase) applyPulls(ctx context.Context, pulls []pulledRecord) (pulled, failed int) {
	if len(pulls) == 0 {
		return 0, 0
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		uc.logger.Error().Err(err).Msg("begin pull transaction")
		return 0, len(pulls)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	for _, pull := range pulls {
		if err := uc.upsertFromCloud(txCtx, tx, pull); err != nil {
			uc.logger.Error().Err(err).Str("remote_id", pull.remote.RemoteID).Msg("apply pull")
			return 0, len(pulls)
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		uc.logger.Error().Err(err).Msg("commit pulls")
		return 0, len(pulls)
	}

	if uc.metrics != nil {
		uc.metrics.SyncPulled.Add(float64(len(pulls)))
	}
	return len(pulls), 0
}

func (uc *SyncUseCase) upsertFromCloud(ctx context.Context, tx Transaction, pull pulledRecord) error {
	remote := pull.remote
	txn := remote.Transaction
	if pull.localID != "" {
		txn.SetID(pull.localID)
	}
	var err error
	switch txn.Type {
	case domain.TypeBuy:
		err = uc.buyRepo.UpsertFromCloud(ctx, tx, txn.Buy)
	case domain.TypeSell:
		err = uc.sellRepo.UpsertFromCloud(ctx, tx, txn.Sell)
	case domain.TypeLend:
		err = uc.lendRepo.UpsertFromCloud(ctx, tx, txn.Lend)
	case domain.TypeExpense:
		err = uc.expenseRepo.UpsertFromCloud(ctx, tx, txn.Expense)
	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidType, txn.Type)
	}
	if err != nil {
		return err
	}

	mapping, err := uc.mappingRepo.GetByRemoteID(ctx, remote.RemoteID)
	if err != nil {
		return err
	}
	if mapping == nil {
		return uc.mappingRepo.Create(ctx, tx, &domain.RemoteLocalMapping{
			RemoteID:   remote.RemoteID,
			LocalID:    txn.ID(),
			EntityType: txn.Type,
			CreatedAt:  time.Now().UTC(),
		})
	}
	return nil
}

// pushBatches uploads local copies in chunks below the remote batch cap.
func (uc *SyncUseCase) pushBatches(ctx context.Context, userID string, pushes []*domain.Transaction) (pushed, failed int) {
	for start := 0; start < len(pushes); start += uc.batchSize {
		end := start + uc.batchSize
		if end > len(pushes) {
			end = len(pushes)
		}
		batch := pushes[start:end]

		if err := uc.mirror.UploadBatch(ctx, userID, batch); err != nil {
			uc.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("push batch")
			failed += len(batch)
			continue
		}
		pushed += len(batch)
	}

	if uc.metrics != nil && pushed > 0 {
		uc.metrics.SyncPushed.Add(float64(pushed))
	}
	return pushed, failed
}

func (uc *SyncUseCase) listAllLocal(ctx context.Context) ([]*domain.Transaction, error) {
	var all []*domain.Transaction

	buys, err := uc.buyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range buys {
		all = append(all, &domain.Transaction{Type: domain.TypeBuy, Buy: b})
	}

	sells, err := uc.sellRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sells {
		all = append(all, &domain.Transaction{Type: domain.TypeSell, Sell: s})
	}

	lends, err := uc.lendRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range lends {
		all = append(all, &domain.Transaction{Type: domain.TypeLend, Lend: l})
	}

	expenses, err := uc.expenseRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		all = append(all, &domain.Transaction{Type: domain.TypeExpense, Expense: e})
	}

	return all, nil
}

func (uc *SyncUseCase) finishSweep(ctx context.Context, log *domain.SyncLog, started time.Time) {
	if err := uc.syncLogRepo.Create(ctx, log); err != nil {
		uc.logger.Error().Err(err).Msg("record sync log")
	}
	if uc.metrics != nil {
		uc.metrics.SyncSweeps.WithLabelValues(log.Status).Inc()
		uc.metrics.SyncSweepDuration.Observe(time.Since(started).Seconds())
	}
}

// ListRecentLogs returns the latest sweep records, newest first.
func (uc *SyncUseCase) ListRecentLogs(ctx context.Context, limit int) ([]*domain.SyncLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.syncLogRepo.ListRecent(ctx, limit)
}
