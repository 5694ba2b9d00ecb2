// internal/models/license.go
package models

import (
	"math"
	"time"
)

// StationAll is the sentinel station identifier that matches every site.
const StationAll = "ALL"

// License statuses
const (
	LicenseStatusActive   = "active"
	LicenseStatusInactive = "inactive"
	LicenseStatusExpired  = "expired"
)

// License is a site operating license tracked by the back office. The engine
// only reads licenses; status and expiry are managed elsewhere.
type License struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Number           string    `json:"number"`
	IssuingAuthority string    `json:"issuingAuthority"`
	IssueDate        time.Time `json:"issueDate"`
	ExpiryDate       time.Time `json:"expiryDate"`
	Station          string    `json:"station"` // site identifier or StationAll
	Category         string    `json:"category"`
	Status           string    `json:"status"`
}

// DaysUntilExpiry returns the whole number of days until the license expires,
// rounded up. A license expiring later today reports 1; an expired license
// reports zero or a negative value.
func (l License) DaysUntilExpiry(now time.Time) int {
	return int(math.Ceil(l.ExpiryDate.Sub(now).Hours() / 24))
}
