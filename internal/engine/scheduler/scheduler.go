// internal/engine/scheduler/scheduler.go

// Package scheduler drives alert passes. On each tick it loads the active
// schedules, runs the due ones against the license inventory, and fans
// rendered alerts out through the provider gateway. Schedules never run
// concurrently with each other.
package scheduler

import (
	"context"
	"sort"
	"time"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/common/metrics"
	"license-alert-engine/internal/engine/guard"
	"license-alert-engine/internal/engine/phone"
	"license-alert-engine/internal/engine/provider"
	"license-alert-engine/internal/engine/recorder"
	"license-alert-engine/internal/engine/retryqueue"
	"license-alert-engine/internal/engine/template"
	"license-alert-engine/internal/models"
	"license-alert-engine/internal/store"
)

// Clock abstracts wall time so passes can be driven by a virtual clock in
// tests. RealClock is the production implementation.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type RealClock struct{}

func (RealClock) Now() time.Time        { return time.Now() }
func (RealClock) Sleep(d time.Duration) { time.Sleep(d) }

type Runner struct {
	store    store.RecordStore
	gateway  *provider.Gateway
	queue    *retryqueue.Queue
	guard    *guard.Guard
	recorder *recorder.Recorder
	clock    Clock
	log      logger.Logger

	interSendDelay time.Duration
}

type Options struct {
	Store          store.RecordStore
	Gateway        *provider.Gateway
	Queue          *retryqueue.Queue
	Guard          *guard.Guard
	Recorder       *recorder.Recorder
	Clock          Clock
	Log            logger.Logger
	InterSendDelay time.Duration
}

func New(opts Options) *Runner {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Runner{
		store:          opts.Store,
		gateway:        opts.Gateway,
		queue:          opts.Queue,
		guard:          opts.Guard,
		recorder:       opts.Recorder,
		clock:          clock,
		log:            opts.Log.WithFields(map[string]interface{}{"component": "scheduler"}),
		interSendDelay: opts.InterSendDelay,
	}
}

// RunDue executes every schedule whose next run has arrived. Schedule-level
// failures are logged and counted but never stop the remaining schedules.
func (r *Runner) RunDue(ctx context.Context) error {
	schedules, err := r.store.ListActiveSchedules(ctx)
	if err != nil {
		r.log.Error("schedule listing failed", map[string]interface{}{"error": err.Error()})
		return engerrors.NewScheduleQueryFailureError("", err)
	}

	now := r.clock.Now()
	for _, sched := range schedules {
		if !sched.Due(now) {
			continue
		}
		start := time.Now()
		if err := r.runSchedule(ctx, sched); err != nil {
			metrics.SchedulePassFailures.WithLabelValues(sched.Name).Inc()
			r.log.Error("schedule pass failed", map[string]interface{}{
				"scheduleId": sched.ID,
				"schedule":   sched.Name,
				"error":      err.Error(),
			})
			continue
		}
		metrics.SchedulePassDuration.WithLabelValues(sched.Name).Observe(time.Since(start).Seconds())
	}
	return nil
}

// runSchedule performs one pass for a single schedule. Query failures abort
// the pass without advancing nextRun, so the next tick repeats it; individual
// send failures never do.
func (r *Runner) runSchedule(ctx context.Context, sched models.AlertSchedule) error {
	now := r.clock.Now()

	tmpl, err := r.store.GetTemplate(ctx, sched.TemplateID)
	if err != nil {
		return engerrors.NewScheduleQueryFailureError(sched.ID, err)
	}

	licenses, err := r.store.ListActiveLicenses(ctx, sched.Station)
	if err != nil {
		return engerrors.NewScheduleQueryFailureError(sched.ID, err)
	}

	expiring := make([]models.License, 0, len(licenses))
	for _, lic := range licenses {
		days := lic.DaysUntilExpiry(now)
		// already-expired licenses are excluded; expiry handling is a
		// separate concern from advance warning
		if days > 0 && days <= sched.DaysBeforeExpiry {
			expiring = append(expiring, lic)
		}
	}
	sort.Slice(expiring, func(i, j int) bool {
		return expiring[i].ExpiryDate.Before(expiring[j].ExpiryDate)
	})

	r.log.Info("schedule pass", map[string]interface{}{
		"scheduleId": sched.ID,
		"schedule":   sched.Name,
		"expiring":   len(expiring),
	})

	sent := 0
	for _, lic := range expiring {
		allowed, err := r.guard.Allow(ctx, lic.ID, sched.AlertType, sched.FrequencyDays, now)
		if err != nil {
			// a guard lookup failure is a store query failure: abort the
			// pass without advancing nextRun so the next tick retries,
			// rather than silently skipping a due alert for a full
			// frequency window
			return engerrors.NewScheduleQueryFailureError(sched.ID, err)
		}
		if !allowed {
			metrics.AlertsSuppressedTotal.Inc()
			r.log.Debug("alert suppressed by frequency guard", map[string]interface{}{
				"licenseId": lic.ID,
				"alertType": sched.AlertType,
			})
			continue
		}

		contacts, err := r.store.ListActiveContacts(ctx, lic.Station)
		if err != nil {
			return engerrors.NewScheduleQueryFailureError(sched.ID, err)
		}

		for _, contact := range contacts {
			if sent > 0 && r.interSendDelay > 0 {
				r.clock.Sleep(r.interSendDelay)
			}
			r.dispatch(ctx, sched, lic, tmpl, contact, now)
			sent++
		}
	}

	// nextRun advances even when individual sends failed; only query
	// failures above leave the schedule due for the next tick
	nextRun := now.Add(time.Duration(sched.FrequencyDays) * 24 * time.Hour)
	if err := r.store.UpdateScheduleRuns(ctx, sched.ID, now, nextRun); err != nil {
		r.log.Error("schedule run update failed", map[string]interface{}{
			"scheduleId": sched.ID,
			"error":      err.Error(),
		})
	}
	return nil
}

// dispatch normalizes, renders, and sends one alert. Failures here are
// terminal for the (license, contact) pair only.
func (r *Runner) dispatch(ctx context.Context, sched models.AlertSchedule, lic models.License, tmpl *models.Template, contact models.Contact, now time.Time) {
	days := lic.DaysUntilExpiry(now)

	msg := models.OutboundMessage{
		LicenseID:        lic.ID,
		ContactID:        contact.ID,
		AlertType:        sched.AlertType,
		Priority:         models.ClassifyPriority(days),
		DaysBeforeExpiry: days,
	}

	dest, err := phone.Normalize(contact.Mobile)
	if err != nil {
		msg.Destination = contact.Mobile
		r.recorder.Failed(ctx, msg, err.Error())
		return
	}
	msg.Destination = dest
	msg.Body = template.Render(tmpl.Body, map[string]interface{}{
		"name":       lic.Name,
		"number":     lic.Number,
		"station":    lic.Station,
		"category":   lic.Category,
		"expiryDate": lic.ExpiryDate.Format("2006-01-02"),
		"days":       days,
	})

	res, err := r.gateway.Send(ctx, msg.Destination, msg.Body, msg.Priority)
	switch {
	case err == nil:
		r.recorder.Sent(ctx, msg)
		r.log.Info("alert sent", map[string]interface{}{
			"licenseId": lic.ID,
			"contactId": contact.ID,
			"provider":  res.Provider,
			"messageId": res.MessageID,
			"priority":  msg.Priority,
		})
	case engerrors.IsTransient(err):
		// no record yet; the retry queue owns the terminal outcome
		r.queue.Enqueue(msg)
		r.log.Warn("alert send failed transiently, queued for retry", map[string]interface{}{
			"licenseId": lic.ID,
			"contactId": contact.ID,
			"error":     err.Error(),
		})
	default:
		r.recorder.Failed(ctx, msg, err.Error())
		r.log.Error("alert send failed permanently", map[string]interface{}{
			"licenseId": lic.ID,
			"contactId": contact.ID,
			"error":     err.Error(),
		})
	}
}
