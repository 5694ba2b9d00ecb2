// internal/engine/engine.go

// Package engine ties the scheduler and retry queue to a pair of tickers and
// exposes lifecycle plus a health surface. One Engine instance owns all
// alerting for a deployment; running two against the same store would double
// every send.
package engine

import (
	"context"
	"sync"
	"time"

	"license-alert-engine/internal/common/config"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/common/observability"
	"license-alert-engine/internal/engine/provider"
	"license-alert-engine/internal/engine/retryqueue"
	"license-alert-engine/internal/engine/scheduler"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// Health is the engine's self-reported state. Degraded means alerts are
// still flowing but the retry backlog is past the configured threshold.
type Health struct {
	Status         string `json:"status"`
	QueueDepth     int    `json:"queueDepth"`
	ActiveProvider string `json:"activeProvider"`
	Detail         string `json:"detail,omitempty"`
}

type Engine struct {
	cfg     config.EngineConfig
	cfgErr  error
	runner  *scheduler.Runner
	queue   *retryqueue.Queue
	gateway *provider.Gateway
	clock   scheduler.Clock
	obs     *observability.Observability
	log     logger.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

type Options struct {
	Config  *config.Config
	Runner  *scheduler.Runner
	Queue   *retryqueue.Queue
	Gateway *provider.Gateway
	Clock   scheduler.Clock
	Obs     *observability.Observability // optional
	Log     logger.Logger
}

func New(opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	return &Engine{
		cfg:     opts.Config.Engine,
		cfgErr:  opts.Config.Validate(),
		runner:  opts.Runner,
		queue:   opts.Queue,
		gateway: opts.Gateway,
		clock:   clock,
		obs:     opts.Obs,
		log:     opts.Log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// Start launches the scheduler and retry tickers. It returns immediately;
// call Stop to shut the loops down. Starting a running engine is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if e.cfgErr != nil {
		return e.cfgErr
	}

	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true

	go e.loop(ctx, e.stop, e.done)

	e.log.Info("engine started", map[string]interface{}{
		"schedulerTick": e.cfg.SchedulerTick().String(),
		"retryInterval": e.cfg.RetryInterval().String(),
	})
	return nil
}

func (e *Engine) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	schedTicker := time.NewTicker(e.cfg.SchedulerTick())
	retryTicker := time.NewTicker(e.cfg.RetryInterval())
	defer schedTicker.Stop()
	defer retryTicker.Stop()

	// run one pass immediately so a restart never waits a full tick
	e.RunPass(ctx)

	for {
		select {
		case <-schedTicker.C:
			e.RunPass(ctx)
		case <-retryTicker.C:
			e.queue.Drain(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunPass triggers one scheduler pass synchronously. The tickers call it;
// hosts and tests may call it directly.
func (e *Engine) RunPass(ctx context.Context) {
	err := e.runner.RunDue(ctx)
	if e.obs != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		e.obs.RecordPass(ctx, status)
	}
	if err != nil {
		e.log.Error("scheduler pass failed", map[string]interface{}{"error": err.Error()})
	}
}

// DrainRetries triggers one retry cycle synchronously.
func (e *Engine) DrainRetries(ctx context.Context) {
	e.queue.Drain(ctx)
}

// Stop halts both loops and drops any pending retries. Queued retries are
// not flushed; a message lost this way simply waits for the next scheduled
// pass of its alert.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stop)
	done := e.done
	e.mu.Unlock()

	<-done
	dropped := e.queue.DropAll()
	e.log.Info("engine stopped", map[string]interface{}{"droppedRetries": dropped})
}

// Health reports the engine state for the health endpoint.
func (e *Engine) Health() Health {
	h := Health{
		QueueDepth:     e.queue.Depth(),
		ActiveProvider: e.gateway.ActiveProvider(),
	}
	switch {
	case e.cfgErr != nil:
		h.Status = StatusDown
		h.Detail = e.cfgErr.Error()
	case h.QueueDepth > e.cfg.DegradedQueueDepth:
		h.Status = StatusDegraded
		h.Detail = "retry backlog above threshold"
	default:
		h.Status = StatusHealthy
	}
	return h
}
