// internal/models/delivery.go
package models

import "time"

// Delivery record statuses
const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

// Message priorities, informational only
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
)

// ClassifyPriority maps days-until-expiry to a priority hint.
func ClassifyPriority(daysUntilExpiry int) string {
	switch {
	case daysUntilExpiry <= 7:
		return PriorityCritical
	case daysUntilExpiry <= 14:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// DeliveryRecord is one immutable audit entry for a send attempt's outcome.
// Records are append-only; the engine never updates or deletes them.
type DeliveryRecord struct {
	ID               string    `json:"id"`
	LicenseID        string    `json:"licenseId"`
	ContactID        string    `json:"contactId"`
	AlertType        string    `json:"alertType"`
	Mobile           string    `json:"mobile"` // normalized destination
	Message          string    `json:"message"`
	SentAt           time.Time `json:"sentAt"`
	Status           string    `json:"status"` // DeliveryStatusSent or DeliveryStatusFailed
	ErrorDetail      string    `json:"errorDetail,omitempty"`
	DaysBeforeExpiry int       `json:"daysBeforeExpiry"` // days remaining at send time
}

// Provider delivery lifecycle states, as reported by gateway callbacks.
const (
	ProviderStatusQueued      = "queued"
	ProviderStatusSent        = "sent"
	ProviderStatusDelivered   = "delivered"
	ProviderStatusFailed      = "failed"
	ProviderStatusUndelivered = "undelivered"
)

// DeliveryStatus is the provider-reported state of one message, keyed by the
// provider-issued message id. Held in a bounded cache for status queries; not
// authoritative storage.
type DeliveryStatus struct {
	MessageID    string    `json:"messageId"`
	Status       string    `json:"status"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DeliveredAt  time.Time `json:"deliveredAt,omitempty"`
	Cost         float64   `json:"cost,omitempty"`
}

// OutboundMessage is the payload handed to the provider gateway and, on
// transient failure, carried by the retry queue.
type OutboundMessage struct {
	LicenseID        string `json:"licenseId"`
	ContactID        string `json:"contactId"`
	AlertType        string `json:"alertType"`
	Destination      string `json:"destination"` // normalized
	Body             string `json:"body"`
	Priority         string `json:"priority"`
	DaysBeforeExpiry int    `json:"daysBeforeExpiry"`
}
