// test/e2e/engine_test.go
package e2e

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-alert-engine/internal/common/config"
	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/engine"
	"license-alert-engine/internal/engine/guard"
	"license-alert-engine/internal/engine/provider"
	"license-alert-engine/internal/engine/recorder"
	"license-alert-engine/internal/engine/retryqueue"
	"license-alert-engine/internal/engine/scheduler"
	"license-alert-engine/internal/engine/statuscache"
	"license-alert-engine/internal/models"
	"license-alert-engine/internal/store"
)

// flakyProvider fails the first n sends transiently, then succeeds.
type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Send(ctx context.Context, destination, body string) (*provider.Result, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, engerrors.NewTransientProviderFailureError("flaky", errors.New("gateway timeout"))
	}
	return &provider.Result{Provider: "flaky", MessageID: "flaky-ok"}, nil
}

type virtualClock struct{ now time.Time }

func (c *virtualClock) Now() time.Time        { return c.now }
func (c *virtualClock) Sleep(d time.Duration) {}

type harness struct {
	engine *engine.Engine
	runner *scheduler.Runner
	queue  *retryqueue.Queue
	store  *store.MemoryStore
	cache  *statuscache.MemoryCache
	clock  *virtualClock
}

func newHarness(t *testing.T, prov provider.Provider) *harness {
	t.Helper()
	log := logger.NewTestLogger(t)
	cfg := &config.Config{
		Engine: config.EngineConfig{
			SchedulerTickSeconds: 300,
			RetryIntervalSeconds: 30,
			RetryMaxAttempts:     3,
			MaxMessageLength:     1600,
			DegradedQueueDepth:   25,
			TestMode:             true,
		},
	}

	st := store.NewMemoryStore()
	cache := statuscache.NewMemoryCache(100)
	clock := &virtualClock{now: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)}

	gw := provider.NewGateway([]provider.Provider{prov}, cfg.Engine.MaxMessageLength, cache, log)
	rec := recorder.New(st, clock.Now, log)
	queue := retryqueue.New(retryqueue.Options{
		MaxAttempts: cfg.Engine.RetryMaxAttempts,
		Send: func(ctx context.Context, msg models.OutboundMessage) error {
			_, err := gw.Send(ctx, msg.Destination, msg.Body, msg.Priority)
			return err
		},
		OnSuccess: func(ctx context.Context, item retryqueue.Item) {
			rec.Sent(ctx, item.Message)
		},
		OnTerminal: func(ctx context.Context, item retryqueue.Item, cause error) {
			rec.Failed(ctx, item.Message, cause.Error())
		},
		Sleep: func(time.Duration) {},
		Log:   log,
	})
	runner := scheduler.New(scheduler.Options{
		Store:    st,
		Gateway:  gw,
		Queue:    queue,
		Guard:    guard.New(st, log),
		Recorder: rec,
		Clock:    clock,
		Log:      log,
	})
	eng := engine.New(engine.Options{
		Config:  cfg,
		Runner:  runner,
		Queue:   queue,
		Gateway: gw,
		Log:     log,
	})
	return &harness{engine: eng, runner: runner, queue: queue, store: st, cache: cache, clock: clock}
}

func (h *harness) seed(now time.Time) {
	h.store.Templates = []models.Template{{
		ID:   "tpl-expiry",
		Type: "license_expiry",
		Body: "Reminder: {name} ({number}) at {station} expires on {expiryDate} ({days} days)",
	}}
	h.store.Schedules = []models.AlertSchedule{{
		ID:               "sch-weekly",
		Name:             "weekly-expiry",
		AlertType:        "license_expiry",
		DaysBeforeExpiry: 7,
		FrequencyDays:    30,
		TemplateID:       "tpl-expiry",
		IsActive:         true,
		Station:          models.StationAll,
	}}
	h.store.Licenses = []models.License{{
		ID:         "lic-ops",
		Name:       "Operations Permit",
		Number:     "OP-1142",
		ExpiryDate: now.Add(5 * 24 * time.Hour),
		Station:    "PHC-02",
		Category:   "regulatory",
		Status:     models.LicenseStatusActive,
	}}
	h.store.Contacts = []models.Contact{
		{ID: "con-site", Name: "Site Manager", Mobile: "3125550142", Station: "PHC-02", IsActive: true},
		{ID: "con-hq", Name: "HQ Compliance", Mobile: "+13125550177", Station: models.StationAll, IsActive: true},
	}
}

func TestFullPassAlertsEveryContactOnceAndOnlyOnce(t *testing.T) {
	prov := &flakyProvider{failures: 0}
	h := newHarness(t, prov)
	h.seed(h.clock.now)

	ctx := context.Background()
	h.engine.RunPass(ctx)

	assert.Equal(t, 2, prov.calls, "one send per matching contact")
	recs := h.store.DeliveryRecords()
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, models.DeliveryStatusSent, rec.Status)
		assert.Equal(t, 5, rec.DaysBeforeExpiry)
		assert.Contains(t, rec.Message, "Operations Permit")
		assert.Contains(t, rec.Message, "(5 days)")
	}

	// immediately re-running produces nothing new: the schedule has moved
	// its next run out, and even a forced run is frequency-guarded
	h.engine.RunPass(ctx)
	h.store.Schedules[0].NextRun = time.Time{}
	h.engine.RunPass(ctx)

	assert.Equal(t, 2, prov.calls)
	assert.Len(t, h.store.DeliveryRecords(), 2)
}

func TestTransientFailureResolvesThroughRetryQueue(t *testing.T) {
	prov := &flakyProvider{failures: 2}
	h := newHarness(t, prov)
	h.seed(h.clock.now)
	h.store.Contacts = h.store.Contacts[:1]

	ctx := context.Background()
	h.engine.RunPass(ctx)

	// initial send failed transiently: queued, no record yet
	assert.Equal(t, 1, h.queue.Depth())
	assert.Empty(t, h.store.DeliveryRecords())

	// first retry tick still fails, second succeeds
	h.engine.DrainRetries(ctx)
	assert.Equal(t, 1, h.queue.Depth())
	assert.Empty(t, h.store.DeliveryRecords())

	h.engine.DrainRetries(ctx)
	assert.Zero(t, h.queue.Depth())

	recs := h.store.DeliveryRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, models.DeliveryStatusSent, recs[0].Status)
}

func TestExhaustedRetriesLeaveExactlyOneFailedRecord(t *testing.T) {
	prov := &flakyProvider{failures: 100}
	h := newHarness(t, prov)
	h.seed(h.clock.now)
	h.store.Contacts = h.store.Contacts[:1]

	ctx := context.Background()
	h.engine.RunPass(ctx)
	require.Equal(t, 1, h.queue.Depth())

	// drain well past the attempt ceiling
	for i := 0; i < 5; i++ {
		h.engine.DrainRetries(ctx)
	}

	assert.Zero(t, h.queue.Depth())
	// initial attempt + two replays
	assert.Equal(t, 3, prov.calls)

	recs := h.store.DeliveryRecords()
	require.Len(t, recs, 1)
	assert.Equal(t, models.DeliveryStatusFailed, recs[0].Status)
	assert.Contains(t, recs[0].ErrorDetail, "max retry attempts exceeded")
}

func TestSuccessfulSendPopulatesStatusCache(t *testing.T) {
	prov := &flakyProvider{failures: 0}
	h := newHarness(t, prov)
	h.seed(h.clock.now)
	h.store.Contacts = h.store.Contacts[:1]

	h.engine.RunPass(context.Background())

	st, err := h.cache.Get(context.Background(), "flaky-ok")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, models.ProviderStatusSent, st.Status)
}

func TestHealthReflectsRetryBacklog(t *testing.T) {
	prov := &flakyProvider{failures: 100}
	h := newHarness(t, prov)

	assert.Equal(t, engine.StatusHealthy, h.engine.Health().Status)

	for i := 0; i < 30; i++ {
		h.queue.Enqueue(models.OutboundMessage{Destination: "+13125550142", Body: "x"})
	}
	health := h.engine.Health()
	assert.Equal(t, engine.StatusDegraded, health.Status)
	assert.Equal(t, 30, health.QueueDepth)
}
