// internal/store/store.go

// Package store defines the engine's view of the external keyed-record store.
// The engine depends only on list-with-filter, append, and update-by-id
// semantics; transport and format belong to the adapter.
package store

import (
	"context"
	"time"

	"license-alert-engine/internal/models"
)

type RecordStore interface {
	// ListActiveSchedules returns every active alert schedule.
	ListActiveSchedules(ctx context.Context) ([]models.AlertSchedule, error)

	// ListActiveLicenses returns active licenses for the given station filter.
	// StationAll matches every station.
	ListActiveLicenses(ctx context.Context, station string) ([]models.License, error)

	// ListActiveContacts returns active contacts whose station equals the
	// given station or StationAll.
	ListActiveContacts(ctx context.Context, station string) ([]models.Contact, error)

	GetTemplate(ctx context.Context, id string) (*models.Template, error)

	// AppendDeliveryRecord appends one immutable audit entry.
	AppendDeliveryRecord(ctx context.Context, rec *models.DeliveryRecord) error

	// LatestDeliveryRecord returns the most recent record for the license,
	// scoped to alertType when non-empty. A nil record with nil error means
	// no record exists.
	LatestDeliveryRecord(ctx context.Context, licenseID, alertType string) (*models.DeliveryRecord, error)

	// UpdateScheduleRuns advances lastRun/nextRun after a successful pass.
	UpdateScheduleRuns(ctx context.Context, scheduleID string, lastRun, nextRun time.Time) error
}
