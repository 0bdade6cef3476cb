package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-agenda/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSchedule_SetDateRange(t *testing.T) {
	var s domain.Schedule

	err := s.SetDateRange(date(2024, 6, 28), date(2024, 7, 3))

	require.NoError(t, err)
	assert.Equal(t, 6, s.NrDays)
	assert.Equal(t, 28, s.StartDay)
	assert.Equal(t, 6, s.StartMonth)
	assert.Equal(t, 3, s.EndDay)
	assert.Equal(t, 7, s.EndMonth)
}

func TestSchedule_SetDateRange_SameDay(t *testing.T) {
	var s domain.Schedule

	require.NoError(t, s.SetDateRange(date(2024, 6, 1), date(2024, 6, 1)))
	assert.Equal(t, 1, s.NrDays)
}

func TestSchedule_SetDateRange_EndBeforeStart(t *testing.T) {
	var s domain.Schedule

	err := s.SetDateRange(date(2024, 6, 2), date(2024, 6, 1))

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, s.StartDate, "invalid range must not be stored")
}

func TestSchedule_SetDateRange_IgnoresTimeOfDay(t *testing.T) {
	var s domain.Schedule
	start := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 2, 1, 0, 0, 0, time.UTC)

	require.NoError(t, s.SetDateRange(start, end))
	assert.Equal(t, 2, s.NrDays)
}

func TestSchedule_Covers(t *testing.T) {
	var s domain.Schedule
	assert.True(t, s.Covers(date(2030, 1, 1)), "no dates covers everything")

	require.NoError(t, s.SetDateRange(date(2024, 6, 1), date(2024, 6, 3)))
	assert.True(t, s.Covers(date(2024, 6, 1)))
	assert.True(t, s.Covers(date(2024, 6, 3)))
	assert.False(t, s.Covers(date(2024, 6, 4)))
}

func TestCityChanged(t *testing.T) {
	tests := []struct {
		name           string
		oldCity, oldID string
		newCity, newID string
		want           bool
	}{
		{"first city", "", "", "Paris", "p1", false},
		{"same city", "Paris", "p1", "Paris", "p1", false},
		{"same city different case", "Paris", "", "PARIS", "", false},
		{"different city", "Paris", "p1", "Rome", "p2", true},
		{"different place id", "Paris", "p1", "Paris", "p9", true},
		{"city cleared", "Paris", "p1", "", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.CityChanged(tc.oldCity, tc.oldID, tc.newCity, tc.newID)
			assert.Equal(t, tc.want, got)
		})
	}
}
