// internal/engine/guard/guard.go

// Package guard implements duplicate-alert suppression based on time since
// the last recorded alert for a license.
package guard

import (
	"context"
	"time"

	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/models"
)

// RecordSource is the slice of the record store the guard reads.
type RecordSource interface {
	LatestDeliveryRecord(ctx context.Context, licenseID, alertType string) (*models.DeliveryRecord, error)
}

// Guard decides whether a new alert for a license is allowed yet. The
// read-latest-then-decide pattern is not transactional; with a single engine
// instance (the assumed deployment) it is the only duplicate suppression the
// engine carries, and it is best-effort by design.
type Guard struct {
	records RecordSource
	log     logger.Logger
}

func New(records RecordSource, log logger.Logger) *Guard {
	return &Guard{
		records: records,
		log:     log.WithFields(map[string]interface{}{"component": "guard"}),
	}
}

// Allow reports whether an alert for the license under the given schedule
// frequency may be sent at `now`. The comparison is whole calendar days, so
// multiple runs within the same day never re-alert.
func (g *Guard) Allow(ctx context.Context, licenseID, alertType string, frequencyDays int, now time.Time) (bool, error) {
	last, err := g.records.LatestDeliveryRecord(ctx, licenseID, alertType)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return daysBetween(last.SentAt, now) >= frequencyDays, nil
}

// daysBetween counts whole calendar days from a to b in b's location.
func daysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, b.Location())
	end := time.Date(by, bm, bd, 0, 0, 0, 0, b.Location())
	return int(end.Sub(start).Hours() / 24)
}
