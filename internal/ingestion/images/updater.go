package images

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"manhwahub/internal/httpapi/models"
)

const (
	lookupRetries = 3
	retryDelay    = 2 * time.Second
)

// Catalog is the store surface the updater needs.
type Catalog interface {
	ListWithoutImage(ctx context.Context) ([]models.Manhwa, error)
	ListAll(ctx context.Context) ([]models.Manhwa, error)
	UpdateImageURL(ctx context.Context, manhwaID int64, imageURL string) error
}

// Lookup resolves a title to a cover image URL.
type Lookup interface {
	LookupImageURL(ctx context.Context, title string) (string, error)
}

// Updater walks catalog entries and fills in cover image URLs. Lookup
// failures for individual titles are logged and skipped so one bad title
// never stalls the whole pass.
type Updater struct {
	catalog Catalog
	lookup  Lookup
	logger  *slog.Logger
}

func NewUpdater(catalog Catalog, lookup Lookup, logger *slog.Logger) *Updater {
	return &Updater{catalog: catalog, lookup: lookup, logger: logger}
}

// BackfillMissing fills images for entries that have none yet.
func (u *Updater) BackfillMissing(ctx context.Context) error {
	rows, err := u.catalog.ListWithoutImage(ctx)
	if err != nil {
		return err
	}
	return u.update(ctx, rows)
}

// RefreshAll re-resolves images for every catalog entry, replacing stale
// URLs.
func (u *Updater) RefreshAll(ctx context.Context) error {
	rows, err := u.catalog.ListAll(ctx)
	if err != nil {
		return err
	}
	return u.update(ctx, rows)
}

func (u *Updater) update(ctx context.Context, rows []models.Manhwa) error {
	u.logger.Info("updating cover images", "count", len(rows))

	var updated, skipped int
	for _, m := range rows {
		imageURL, err := u.lookupWithRetry(ctx, m.Name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			u.logger.Warn("skipping cover image", "name", m.Name, "error", err)
			skipped++
			continue
		}
		if err := u.catalog.UpdateImageURL(ctx, m.ID, imageURL); err != nil {
			return err
		}
		updated++
	}

	u.logger.Info("cover image pass complete", "updated", updated, "skipped", skipped)
	return nil
}

func (u *Updater) lookupWithRetry(ctx context.Context, title string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < lookupRetries; attempt++ {
		imageURL, err := u.lookup.LookupImageURL(ctx, title)
		if err == nil {
			return imageURL, nil
		}
		lastErr = err
		// a miss is final, only transport and server errors are retried
		if errors.Is(err, ErrNoMatch) || ctx.Err() != nil {
			break
		}
		timer := time.NewTimer(retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return "", lastErr
}
