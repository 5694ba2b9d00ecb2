// internal/store/memory.go
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/models"
)

// MemoryStore is an in-process RecordStore used by tests and by hosts that
// run the engine without a database.
type MemoryStore struct {
	mu        sync.Mutex
	Schedules []models.AlertSchedule
	Licenses  []models.License
	Contacts  []models.Contact
	Templates []models.Template
	Records   []models.DeliveryRecord

	// FailNext makes the next query of the named operation fail, for
	// exercising schedule-level failure isolation in tests.
	FailNext map[string]error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{FailNext: make(map[string]error)}
}

func (m *MemoryStore) failNext(op string) error {
	if err, ok := m.FailNext[op]; ok {
		delete(m.FailNext, op)
		return err
	}
	return nil
}

func (m *MemoryStore) ListActiveSchedules(ctx context.Context) ([]models.AlertSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("schedules"); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list schedules", err)
	}
	var out []models.AlertSchedule
	for _, s := range m.Schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListActiveLicenses(ctx context.Context, station string) ([]models.License, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("licenses"); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list licenses", err)
	}
	var out []models.License
	for _, l := range m.Licenses {
		if l.Status != models.LicenseStatusActive {
			continue
		}
		if station != models.StationAll && l.Station != station && l.Station != models.StationAll {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MemoryStore) ListActiveContacts(ctx context.Context, station string) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("contacts"); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list contacts", err)
	}
	var out []models.Contact
	for _, c := range m.Contacts {
		if c.IsActive && (c.Station == station || c.Station == models.StationAll) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Templates {
		if m.Templates[i].ID == id {
			t := m.Templates[i]
			return &t, nil
		}
	}
	return nil, engerrors.NewTemplateNotFoundError(id)
}

func (m *MemoryStore) AppendDeliveryRecord(ctx context.Context, rec *models.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MemoryStore) LatestDeliveryRecord(ctx context.Context, licenseID, alertType string) (*models.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext("latest"); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("latest delivery record", err)
	}
	var latest *models.DeliveryRecord
	for i := range m.Records {
		r := m.Records[i]
		if r.LicenseID != licenseID {
			continue
		}
		if alertType != "" && r.AlertType != alertType {
			continue
		}
		if latest == nil || r.SentAt.After(latest.SentAt) {
			cp := r
			latest = &cp
		}
	}
	return latest, nil
}

func (m *MemoryStore) UpdateScheduleRuns(ctx context.Context, scheduleID string, lastRun, nextRun time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Schedules {
		if m.Schedules[i].ID == scheduleID {
			m.Schedules[i].LastRun = lastRun
			m.Schedules[i].NextRun = nextRun
			return nil
		}
	}
	return nil
}

// DeliveryRecords returns a copy of the audit log for assertions.
func (m *MemoryStore) DeliveryRecords() []models.DeliveryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DeliveryRecord, len(m.Records))
	copy(out, m.Records)
	return out
}
