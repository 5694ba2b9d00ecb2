// internal/engine/provider/gateway.go
package provider

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/common/metrics"
	"license-alert-engine/internal/models"
)

// Gateway tries providers in priority order until one accepts the message or
// all have failed. A permanent failure stops the chain immediately: a bad
// destination will not become good on another provider.
type Gateway struct {
	mu        sync.Mutex
	providers []Provider // priority order, index 0 first

	maxLen   int
	statuses StatusRecorder // optional
	observe  func(d time.Duration, outcome string)
	log      logger.Logger
}

func NewGateway(providers []Provider, maxLen int, statuses StatusRecorder, log logger.Logger) *Gateway {
	return &Gateway{
		providers: providers,
		maxLen:    maxLen,
		statuses:  statuses,
		log:       log.WithFields(map[string]interface{}{"component": "gateway"}),
	}
}

// SetObserver installs a hook invoked with the duration and outcome of every
// send. The host wires this to its telemetry pipeline.
func (g *Gateway) SetObserver(fn func(d time.Duration, outcome string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observe = fn
}

// Send delivers one message. priority is a logging hint only. On success the
// provider's message id is recorded in the status cache. The returned error
// is permanent (stop) or transient (caller may enqueue a retry).
func (g *Gateway) Send(ctx context.Context, destination, body, priority string) (*Result, error) {
	start := time.Now()
	res, err := g.send(ctx, destination, body, priority)

	g.mu.Lock()
	observe := g.observe
	g.mu.Unlock()
	if observe != nil {
		observe(time.Since(start), outcomeOf(err))
	}
	return res, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "sent"
	case engerrors.IsTransient(err):
		return "transient_failure"
	default:
		return "permanent_failure"
	}
}

func (g *Gateway) send(ctx context.Context, destination, body, priority string) (*Result, error) {
	// length limit is in characters, not bytes
	if n := utf8.RuneCountInString(body); n > g.maxLen {
		return nil, engerrors.NewMessageTooLongError(n, g.maxLen)
	}

	providers := g.snapshot()
	if len(providers) == 0 {
		return nil, engerrors.NewProviderNotConfiguredError("(none)")
	}

	var lastErr error
	for i, p := range providers {
		if i > 0 {
			metrics.ProviderFailoversTotal.Inc()
		}

		res, err := p.Send(ctx, destination, body)
		if err == nil {
			metrics.AlertSendsTotal.WithLabelValues(p.Name(), "sent").Inc()
			g.log.Info("message sent", map[string]interface{}{
				"provider":  p.Name(),
				"messageId": res.MessageID,
				"priority":  priority,
			})
			g.recordStatus(ctx, res)
			return res, nil
		}

		if !engerrors.IsTransient(err) {
			metrics.AlertSendsTotal.WithLabelValues(p.Name(), "permanent_failure").Inc()
			g.log.Warn("permanent provider failure, not failing over", map[string]interface{}{
				"provider": p.Name(),
				"error":    err.Error(),
			})
			return nil, err
		}

		metrics.AlertSendsTotal.WithLabelValues(p.Name(), "transient_failure").Inc()
		g.log.Warn("transient provider failure, trying next provider", map[string]interface{}{
			"provider": p.Name(),
			"error":    err.Error(),
		})
		lastErr = err
	}

	return nil, engerrors.NewTransientProviderFailureError("all", lastErr)
}

// SwitchProvider promotes the named provider to priority 0 at runtime
// without restarting the engine.
func (g *Gateway) SwitchProvider(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, p := range g.providers {
		if p.Name() == name {
			promoted := g.providers[i]
			g.providers = append(g.providers[:i], g.providers[i+1:]...)
			g.providers = append([]Provider{promoted}, g.providers...)
			g.log.Info("active provider switched", map[string]interface{}{"provider": name})
			return nil
		}
	}
	return engerrors.NewProviderNotConfiguredError(name)
}

// ActiveProvider returns the name of the current priority-0 provider.
func (g *Gateway) ActiveProvider() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.providers) == 0 {
		return ""
	}
	return g.providers[0].Name()
}

func (g *Gateway) snapshot() []Provider {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Provider, len(g.providers))
	copy(out, g.providers)
	return out
}

func (g *Gateway) recordStatus(ctx context.Context, res *Result) {
	if g.statuses == nil {
		return
	}
	st := models.DeliveryStatus{
		MessageID:   res.MessageID,
		Status:      models.ProviderStatusSent,
		DeliveredAt: time.Time{},
		Cost:        res.Cost,
	}
	if err := g.statuses.Put(ctx, st); err != nil {
		g.log.Debug("status cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
