package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwahub/internal/cache"
	"manhwahub/internal/ingestion"
)

type fakeFetcher struct {
	mu       sync.Mutex
	fetched  bool
	snapshot *ingestion.Snapshot
}

func (f *fakeFetcher) FetchAll(context.Context) (*ingestion.Snapshot, error) {
	f.mu.Lock()
	f.fetched = true
	f.mu.Unlock()
	return f.snapshot, nil
}

type fakeReconciler struct {
	done chan struct{}
}

func (f *fakeReconciler) SyncAll(context.Context, *ingestion.Snapshot) error {
	close(f.done)
	return nil
}

type fakeImages struct {
	backfilled chan struct{}
	refreshed  chan struct{}
}

func (f *fakeImages) BackfillMissing(context.Context) error {
	close(f.backfilled)
	return nil
}

func (f *fakeImages) RefreshAll(context.Context) error {
	close(f.refreshed)
	return nil
}

func newTestSyncService(fetcher SnapshotFetcher, syncer Reconciler, images ImageUpdater) (SyncService, *cache.SyncLock) {
	lock := cache.NewSyncLock(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	refCache := cache.NewReferenceCache(nil, 0)
	return NewSyncService(fetcher, syncer, images, lock, refCache, logger), lock
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("background run did not complete")
	}
}

func TestTriggerSync_RunsInBackground(t *testing.T) {
	reconciler := &fakeReconciler{done: make(chan struct{})}
	fetcher := &fakeFetcher{snapshot: &ingestion.Snapshot{}}
	svc, _ := newTestSyncService(fetcher, reconciler, &fakeImages{})

	require.NoError(t, svc.TriggerSync(context.Background()))
	waitFor(t, reconciler.done)

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.True(t, fetcher.fetched)
}

func TestTriggerSync_RejectsConcurrentRun(t *testing.T) {
	reconciler := &fakeReconciler{done: make(chan struct{})}
	svc, lock := newTestSyncService(&fakeFetcher{snapshot: &ingestion.Snapshot{}}, reconciler, &fakeImages{})

	// simulate a run already holding the lock
	acquired, err := lock.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, acquired)

	err = svc.TriggerSync(context.Background())
	assert.ErrorIs(t, err, ErrSyncRunning)
}

func TestTriggerSync_ReleasesLockAfterRun(t *testing.T) {
	reconciler := &fakeReconciler{done: make(chan struct{})}
	svc, lock := newTestSyncService(&fakeFetcher{snapshot: &ingestion.Snapshot{}}, reconciler, &fakeImages{})

	require.NoError(t, svc.TriggerSync(context.Background()))
	waitFor(t, reconciler.done)

	// the lock frees shortly after the run finishes
	assert.Eventually(t, func() bool {
		acquired, err := lock.TryAcquire(context.Background())
		if err != nil || !acquired {
			return false
		}
		lock.Release(context.Background())
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTriggerImagePasses(t *testing.T) {
	images := &fakeImages{backfilled: make(chan struct{}), refreshed: make(chan struct{})}
	svc, _ := newTestSyncService(&fakeFetcher{snapshot: &ingestion.Snapshot{}}, &fakeReconciler{done: make(chan struct{})}, images)

	require.NoError(t, svc.TriggerImageBackfill(context.Background()))
	waitFor(t, images.backfilled)

	require.NoError(t, svc.TriggerImageRefresh(context.Background()))
	waitFor(t, images.refreshed)
}
