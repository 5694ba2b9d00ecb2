// internal/engine/guard/guard_test.go
package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"license-alert-engine/internal/common/logger"
	"license-alert-engine/internal/models"
)

type fakeRecords struct {
	latest *models.DeliveryRecord
	err    error
}

func (f *fakeRecords) LatestDeliveryRecord(ctx context.Context, licenseID, alertType string) (*models.DeliveryRecord, error) {
	return f.latest, f.err
}

func TestGuard_AllowWithNoHistory(t *testing.T) {
	g := New(&fakeRecords{}, logger.NewNoOpLogger())

	ok, err := g.Allow(context.Background(), "lic-1", "license_expiry", 2, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGuard_FrequencyWindow(t *testing.T) {
	sent := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	records := &fakeRecords{latest: &models.DeliveryRecord{LicenseID: "lic-1", SentAt: sent}}
	g := New(records, logger.NewNoOpLogger())

	tests := []struct {
		name string
		now  time.Time
		freq int
		want bool
	}{
		{
			name: "same day never re-alerts",
			now:  time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			freq: 1,
			want: false,
		},
		{
			name: "next day with frequency 2 still blocked",
			now:  time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
			freq: 2,
			want: false,
		},
		{
			name: "two days later with frequency 2 allowed",
			now:  time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC),
			freq: 2,
			want: true,
		},
		{
			name: "whole day comparison ignores time of day",
			now:  time.Date(2026, 3, 12, 0, 1, 0, 0, time.UTC),
			freq: 2,
			want: true,
		},
		{
			name: "next day with frequency 1 allowed",
			now:  time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC),
			freq: 1,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := g.Allow(context.Background(), "lic-1", "license_expiry", tt.freq, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestGuard_PropagatesStoreError(t *testing.T) {
	g := New(&fakeRecords{err: errors.New("connection reset")}, logger.NewNoOpLogger())

	ok, err := g.Allow(context.Background(), "lic-1", "", 1, time.Now())
	require.Error(t, err)
	assert.False(t, ok)
}
