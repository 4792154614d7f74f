package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"manhwahub/internal/cache"
	"manhwahub/internal/ingestion"
)

var ErrSyncRunning = errors.New("a sync run is already in progress")

// run budget for one background sync or image pass
const syncRunTimeout = 30 * time.Minute

// SnapshotFetcher pulls a full snapshot from the spreadsheet source.
type SnapshotFetcher interface {
	FetchAll(ctx context.Context) (*ingestion.Snapshot, error)
}

// Reconciler makes the store match a snapshot.
type Reconciler interface {
	SyncAll(ctx context.Context, snapshot *ingestion.Snapshot) error
}

// ImageUpdater fills in cover image URLs for catalog entries.
type ImageUpdater interface {
	BackfillMissing(ctx context.Context) error
	RefreshAll(ctx context.Context) error
}

// SyncService triggers catalog maintenance runs. Runs execute in the
// background under an advisory lock so at most one is active at a time,
// across instances when redis is configured.
type SyncService interface {
	TriggerSync(ctx context.Context) error
	TriggerImageBackfill(ctx context.Context) error
	TriggerImageRefresh(ctx context.Context) error
}

type syncService struct {
	fetcher  SnapshotFetcher
	syncer   Reconciler
	images   ImageUpdater
	lock     *cache.SyncLock
	refCache *cache.ReferenceCache
	logger   *slog.Logger
}

func NewSyncService(
	fetcher SnapshotFetcher,
	syncer Reconciler,
	images ImageUpdater,
	lock *cache.SyncLock,
	refCache *cache.ReferenceCache,
	logger *slog.Logger,
) SyncService {
	return &syncService{
		fetcher:  fetcher,
		syncer:   syncer,
		images:   images,
		lock:     lock,
		refCache: refCache,
		logger:   logger,
	}
}

// TriggerSync starts a full fetch-and-reconcile run in the background. It
// returns ErrSyncRunning when another run holds the lock.
func (s *syncService) TriggerSync(ctx context.Context) error {
	return s.launch(ctx, "catalog sync", func(runCtx context.Context) error {
		snapshot, err := s.fetcher.FetchAll(runCtx)
		if err != nil {
			return err
		}
		if err := s.syncer.SyncAll(runCtx, snapshot); err != nil {
			return err
		}
		// reference names may have changed; drop the validation cache
		if err := s.refCache.Invalidate(runCtx, "genres", "categories", "rating", "status"); err != nil {
			s.logger.Warn("reference cache invalidation failed", "error", err)
		}
		return nil
	})
}

// TriggerImageBackfill starts a background pass over entries without a cover
// image.
func (s *syncService) TriggerImageBackfill(ctx context.Context) error {
	return s.launch(ctx, "image backfill", s.images.BackfillMissing)
}

// TriggerImageRefresh starts a background pass over the whole catalog,
// replacing stale cover URLs.
func (s *syncService) TriggerImageRefresh(ctx context.Context) error {
	return s.launch(ctx, "image refresh", s.images.RefreshAll)
}

// launch takes the lock and runs fn on a detached context so the run
// survives the triggering request.
func (s *syncService) launch(ctx context.Context, name string, fn func(context.Context) error) error {
	acquired, err := s.lock.TryAcquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		return ErrSyncRunning
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
		defer cancel()
		defer func() {
			if err := s.lock.Release(runCtx); err != nil {
				s.logger.Error("failed to release sync lock", "error", err)
			}
		}()

		start := time.Now()
		s.logger.Info("background run started", "run", name)
		if err := fn(runCtx); err != nil {
			s.logger.Error("background run failed", "run", name, "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Info("background run finished", "run", name, "duration", time.Since(start))
	}()

	return nil
}
