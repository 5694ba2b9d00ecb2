// internal/engine/retryqueue/queue.go

// Package retryqueue holds messages that failed transiently and replays them
// on the engine's retry tick with a bounded attempt count. Items live only in
// process memory; teardown drops them.
package retryqueue

import (
	"context"
	"sync"
	"time"

	engerrors "license-alert-engine/internal/common/errors"
	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/common/metrics"
	"license-alert-engine/internal/models"
)

// Item is one queued message. Attempts counts every send attempt, including
// the failed initial one, and never decreases.
type Item struct {
	Message  models.OutboundMessage
	Attempts int
}

// SendFunc attempts delivery and returns a classifiable engine error.
type SendFunc func(ctx context.Context, msg models.OutboundMessage) error

// TerminalFunc is invoked exactly once when an item leaves the queue without
// succeeding: a permanent failure or an exhausted attempt ceiling. The
// delivery recorder hangs off this hook.
type TerminalFunc func(ctx context.Context, item Item, cause error)

// Queue replays transiently failed messages. Drain operates on a snapshot:
// items re-queued (or newly enqueued) during a drain land in the next cycle,
// so no item is retried twice in the same tick.
type Queue struct {
	mu    sync.Mutex
	items []Item

	maxAttempts int
	sendDelay   time.Duration // pause between sends within one drain pass
	send        SendFunc
	onTerminal  TerminalFunc
	onSuccess   func(ctx context.Context, item Item)
	sleep       func(time.Duration)
	log         logger.Logger
}

type Options struct {
	MaxAttempts int
	SendDelay   time.Duration
	Send        SendFunc
	OnTerminal  TerminalFunc
	OnSuccess   func(ctx context.Context, item Item)
	Sleep       func(time.Duration) // injectable for tests; nil means time.Sleep
	Log         logger.Logger
}

func New(opts Options) *Queue {
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Queue{
		maxAttempts: opts.MaxAttempts,
		sendDelay:   opts.SendDelay,
		send:        opts.Send,
		onTerminal:  opts.OnTerminal,
		onSuccess:   opts.OnSuccess,
		sleep:       sleep,
		log:         opts.Log.WithFields(map[string]interface{}{"component": "retryqueue"}),
	}
}

// Enqueue adds a message whose initial send failed transiently. The initial
// attempt is counted, so a ceiling of 3 allows two replays.
func (q *Queue) Enqueue(msg models.OutboundMessage) {
	q.mu.Lock()
	q.items = append(q.items, Item{Message: msg, Attempts: 1})
	depth := len(q.items)
	q.mu.Unlock()

	metrics.RetryQueueDepth.Set(float64(depth))
	q.log.Info("message enqueued for retry", map[string]interface{}{
		"licenseId": msg.LicenseID,
		"contactId": msg.ContactID,
		"depth":     depth,
	})
}

// Depth returns the number of items currently waiting.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DropAll discards every pending item without flushing; called on teardown.
func (q *Queue) DropAll() int {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()
	metrics.RetryQueueDepth.Set(0)
	return n
}

// Drain replays the current snapshot once. Items that fail transiently and
// still have attempts left are re-queued for the next cycle.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	snapshot := q.items
	q.items = nil
	q.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}
	q.log.Debug("draining retry queue", map[string]interface{}{"items": len(snapshot)})

	for i, item := range snapshot {
		if i > 0 && q.sendDelay > 0 {
			q.sleep(q.sendDelay)
		}
		q.attempt(ctx, item)
	}

	metrics.RetryQueueDepth.Set(float64(q.Depth()))
}

func (q *Queue) attempt(ctx context.Context, item Item) {
	item.Attempts++

	err := q.send(ctx, item.Message)
	if err == nil {
		q.log.Info("retry succeeded", map[string]interface{}{
			"licenseId": item.Message.LicenseID,
			"attempts":  item.Attempts,
		})
		if q.onSuccess != nil {
			q.onSuccess(ctx, item)
		}
		return
	}

	if !engerrors.IsTransient(err) {
		q.terminal(ctx, item, err)
		return
	}

	if item.Attempts >= q.maxAttempts {
		metrics.RetriesExhaustedTotal.Inc()
		q.terminal(ctx, item, engerrors.NewMaxRetryAttemptsExceededError(item.Attempts))
		return
	}

	// transient, attempts left: next cycle
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

func (q *Queue) terminal(ctx context.Context, item Item, cause error) {
	q.log.Warn("retry terminal, message dropped", map[string]interface{}{
		"licenseId": item.Message.LicenseID,
		"contactId": item.Message.ContactID,
		"attempts":  item.Attempts,
		"cause":     cause.Error(),
	})
	if q.onTerminal != nil {
		q.onTerminal(ctx, item, cause)
	}
}
