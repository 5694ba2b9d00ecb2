// internal/models/schedule.go
package models

import "time"

// AlertSchedule is a configured rule describing when and how often to alert
// on licenses nearing expiry. Only the scheduler mutates LastRun/NextRun.
type AlertSchedule struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AlertType        string    `json:"alertType"` // e.g. "license_expiry"
	DaysBeforeExpiry int       `json:"daysBeforeExpiry"`
	FrequencyDays    int       `json:"frequencyDays"` // minimum gap between repeat alerts per license
	TemplateID       string    `json:"templateId"`
	IsActive         bool      `json:"isActive"`
	LastRun          time.Time `json:"lastRun"`
	NextRun          time.Time `json:"nextRun"`
	Station          string    `json:"station"` // StationAll or a specific site
}

// Due reports whether the schedule should run now. A schedule that has never
// run (zero NextRun) is due immediately.
func (s AlertSchedule) Due(now time.Time) bool {
	return s.IsActive && (s.NextRun.IsZero() || !now.Before(s.NextRun))
}
