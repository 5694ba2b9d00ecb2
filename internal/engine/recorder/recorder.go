// internal/engine/recorder/recorder.go

// Package recorder appends delivery audit entries. Records are append-only;
// every terminal outcome (success, permanent failure, exhausted retries)
// produces exactly one record.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/models"
)

// Sink is the append half of the record store.
type Sink interface {
	AppendDeliveryRecord(ctx context.Context, rec *models.DeliveryRecord) error
}

type Recorder struct {
	sink Sink
	now  func() time.Time
	log  logger.Logger
}

func New(sink Sink, now func() time.Time, log logger.Logger) *Recorder {
	return &Recorder{
		sink: sink,
		now:  now,
		log:  log.WithFields(map[string]interface{}{"component": "recorder"}),
	}
}

// Sent records a successful delivery.
func (r *Recorder) Sent(ctx context.Context, msg models.OutboundMessage) {
	r.append(ctx, msg, models.DeliveryStatusSent, "")
}

// Failed records a terminal failure with its reason.
func (r *Recorder) Failed(ctx context.Context, msg models.OutboundMessage, detail string) {
	r.append(ctx, msg, models.DeliveryStatusFailed, detail)
}

func (r *Recorder) append(ctx context.Context, msg models.OutboundMessage, status, detail string) {
	rec := &models.DeliveryRecord{
		ID:               uuid.New().String(),
		LicenseID:        msg.LicenseID,
		ContactID:        msg.ContactID,
		AlertType:        msg.AlertType,
		Mobile:           msg.Destination,
		Message:          msg.Body,
		SentAt:           r.now(),
		Status:           status,
		ErrorDetail:      detail,
		DaysBeforeExpiry: msg.DaysBeforeExpiry,
	}
	if err := r.sink.AppendDeliveryRecord(ctx, rec); err != nil {
		// the audit write is best-effort from the engine's side; the send
		// outcome itself is not rolled back
		r.log.Error("delivery record append failed", map[string]interface{}{
			"licenseId": msg.LicenseID,
			"contactId": msg.ContactID,
			"status":    status,
			"error":     err.Error(),
		})
	}
}
