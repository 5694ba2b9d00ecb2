// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/models"
)

// PostgresStore implements RecordStore over the back-office PostgreSQL
// database (lib/pq driver).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ListActiveSchedules(ctx context.Context) ([]models.AlertSchedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, alert_type, days_before_expiry, frequency_days,
		       template_id, is_active, last_run, next_run, station
		FROM alert_schedules
		WHERE is_active = TRUE
		ORDER BY id`)
	if err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list schedules", err)
	}
	defer rows.Close()

	var out []models.AlertSchedule
	for rows.Next() {
		var sch models.AlertSchedule
		var lastRun, nextRun sql.NullTime
		if err := rows.Scan(&sch.ID, &sch.Name, &sch.AlertType, &sch.DaysBeforeExpiry,
			&sch.FrequencyDays, &sch.TemplateID, &sch.IsActive, &lastRun, &nextRun, &sch.Station); err != nil {
			return nil, engerrors.NewStoreQueryFailedError("scan schedule", err)
		}
		if lastRun.Valid {
			sch.LastRun = lastRun.Time
		}
		if nextRun.Valid {
			sch.NextRun = nextRun.Time
		}
		out = append(out, sch)
	}
	if err := rows.Err(); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list schedules", err)
	}
	return out, nil
}

func (s *PostgresStore) ListActiveLicenses(ctx context.Context, station string) ([]models.License, error) {
	query := `
		SELECT id, name, number, issuing_authority, issue_date, expiry_date,
		       station, category, status
		FROM licenses
		WHERE status = $1`
	args := []interface{}{models.LicenseStatusActive}
	if station != models.StationAll {
		query += ` AND (station = $2 OR station = $3)`
		args = append(args, station, models.StationAll)
	}
	query += ` ORDER BY expiry_date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list licenses", err)
	}
	defer rows.Close()

	var out []models.License
	for rows.Next() {
		var lic models.License
		if err := rows.Scan(&lic.ID, &lic.Name, &lic.Number, &lic.IssuingAuthority,
			&lic.IssueDate, &lic.ExpiryDate, &lic.Station, &lic.Category, &lic.Status); err != nil {
			return nil, engerrors.NewStoreQueryFailedError("scan license", err)
		}
		out = append(out, lic)
	}
	if err := rows.Err(); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list licenses", err)
	}
	return out, nil
}

func (s *PostgresStore) ListActiveContacts(ctx context.Context, station string) ([]models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, mobile, station, is_active
		FROM contacts
		WHERE is_active = TRUE AND (station = $1 OR station = $2)
		ORDER BY id`, station, models.StationAll)
	if err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list contacts", err)
	}
	defer rows.Close()

	var out []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Mobile, &c.Station, &c.IsActive); err != nil {
			return nil, engerrors.NewStoreQueryFailedError("scan contact", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, engerrors.NewStoreQueryFailedError("list contacts", err)
	}
	return out, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	err := s.db.QueryRowContext(ctx, `
		SELECT id, type, body FROM templates WHERE id = $1`, id).
		Scan(&t.ID, &t.Type, &t.Body)
	if err == sql.ErrNoRows {
		return nil, engerrors.NewTemplateNotFoundError(id)
	}
	if err != nil {
		return nil, engerrors.NewStoreQueryFailedError("get template", err)
	}
	return &t, nil
}

func (s *PostgresStore) AppendDeliveryRecord(ctx context.Context, rec *models.DeliveryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO delivery_records
			(id, license_id, contact_id, alert_type, mobile, message,
			 sent_at, status, error_detail, days_before_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.LicenseID, rec.ContactID, rec.AlertType, rec.Mobile, rec.Message,
		rec.SentAt, rec.Status, rec.ErrorDetail, rec.DaysBeforeExpiry)
	if err != nil {
		return engerrors.NewStoreQueryFailedError("append delivery record", err)
	}
	return nil
}

func (s *PostgresStore) LatestDeliveryRecord(ctx context.Context, licenseID, alertType string) (*models.DeliveryRecord, error) {
	query := `
		SELECT id, license_id, contact_id, alert_type, mobile, message,
		       sent_at, status, error_detail, days_before_expiry
		FROM delivery_records
		WHERE license_id = $1`
	args := []interface{}{licenseID}
	if alertType != "" {
		query += ` AND alert_type = $2`
		args = append(args, alertType)
	}
	query += ` ORDER BY sent_at DESC LIMIT 1`

	var rec models.DeliveryRecord
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID, &rec.LicenseID, &rec.ContactID, &rec.AlertType, &rec.Mobile,
		&rec.Message, &rec.SentAt, &rec.Status, &rec.ErrorDetail, &rec.DaysBeforeExpiry)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, engerrors.NewStoreQueryFailedError("latest delivery record", err)
	}
	return &rec, nil
}

func (s *PostgresStore) UpdateScheduleRuns(ctx context.Context, scheduleID string, lastRun, nextRun time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE alert_schedules SET last_run = $2, next_run = $3 WHERE id = $1`,
		scheduleID, lastRun, nextRun)
	if err != nil {
		return engerrors.NewStoreQueryFailedError("update schedule runs", err)
	}
	return nil
}
