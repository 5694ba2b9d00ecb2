// internal/models/models_test.go
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntilExpiryRoundsUp(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"later today", now.Add(6 * time.Hour), 1},
		{"exactly five days", now.Add(5 * 24 * time.Hour), 5},
		{"four and a half days", now.Add(4*24*time.Hour + 12*time.Hour), 5},
		{"expired yesterday", now.Add(-24 * time.Hour), -1},
		{"expiring this instant", now, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lic := License{ExpiryDate: tt.expiry}
			assert.Equal(t, tt.want, lic.DaysUntilExpiry(now))
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	assert.Equal(t, PriorityCritical, ClassifyPriority(1))
	assert.Equal(t, PriorityCritical, ClassifyPriority(7))
	assert.Equal(t, PriorityHigh, ClassifyPriority(8))
	assert.Equal(t, PriorityHigh, ClassifyPriority(14))
	assert.Equal(t, PriorityMedium, ClassifyPriority(15))
	assert.Equal(t, PriorityMedium, ClassifyPriority(90))
}

func TestScheduleDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, AlertSchedule{IsActive: true}.Due(now), "never-run schedule is due immediately")
	assert.True(t, AlertSchedule{IsActive: true, NextRun: now}.Due(now))
	assert.True(t, AlertSchedule{IsActive: true, NextRun: now.Add(-time.Minute)}.Due(now))
	assert.False(t, AlertSchedule{IsActive: true, NextRun: now.Add(time.Minute)}.Due(now))
	assert.False(t, AlertSchedule{IsActive: false}.Due(now), "inactive schedules never run")
}
