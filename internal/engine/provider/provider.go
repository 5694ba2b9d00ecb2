// internal/engine/provider/provider.go

// Package provider delivers one message through a ranked list of external
// SMS gateways with failover.
package provider

import (
	"context"

	"license-alert-engine/internal/models"
)

// Result is a successful provider send.
type Result struct {
	Provider  string
	MessageID string  // provider-issued id
	Cost      float64 // reported cost, zero when the gateway does not report one
}

// Provider is one external SMS gateway. Send must return engine errors
// (errors.StandardError) so failures are classifiable as permanent vs
// transient; a plain error is treated as transient.
type Provider interface {
	Name() string
	Send(ctx context.Context, destination, body string) (*Result, error)
}

// StatusRecorder receives provider delivery status updates. Implemented by
// the status cache; recording is best-effort.
type StatusRecorder interface {
	Put(ctx context.Context, st models.DeliveryStatus) error
}
