// Package domain contains the core data types for the travel agenda application.
// It has no dependencies beyond uuid and is imported by every other internal
// package (repo, service, handler, clients).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schedule is one user's trip plan: dates, destination city and lodging.
// A schedule is created empty and filled in step by step.
type Schedule struct {
	ID     uuid.UUID
	UserID string
	Name   string

	StartDate *time.Time
	EndDate   *time.Time

	// Derived from StartDate/EndDate by SetDateRange. Zero when dates are unset.
	NrDays     int
	StartDay   int
	EndDay     int
	StartMonth int
	EndMonth   int

	CityName    string
	CityPlaceID string

	HotelID   string
	HotelName string

	ResidenceLat     *float64
	ResidenceLng     *float64
	ResidenceAddress string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Residence is the lodging chosen for a schedule.
type Residence struct {
	HotelID   string
	HotelName string
	Lat       *float64
	Lng       *float64
	Address   string
}

// ScheduleChange is the result of an update. CityChanged is true when the
// destination moved and the agenda and lodging were cleared as a consequence.
type ScheduleChange struct {
	Schedule          Schedule
	CityChanged       bool
	RemovedActivities int64
}

// SetDateRange stores the range and recomputes the derived fields.
// Dates are truncated to midnight UTC.
func (s *Schedule) SetDateRange(start, end time.Time) error {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return fmt.Errorf("%w: end_date must not be before start_date", ErrValidation)
	}
	s.StartDate = &start
	s.EndDate = &end
	s.NrDays = DayCount(start, end)
	s.StartDay, s.StartMonth = start.Day(), int(start.Month())
	s.EndDay, s.EndMonth = end.Day(), int(end.Month())
	return nil
}

// HasCity reports whether a destination has been chosen.
func (s Schedule) HasCity() bool {
	return strings.TrimSpace(s.CityName) != "" || s.CityPlaceID != ""
}

// ClearLodging empties the hotel and residence fields.
func (s *Schedule) ClearLodging() {
	s.HotelID = ""
	s.HotelName = ""
	s.ResidenceLat = nil
	s.ResidenceLng = nil
	s.ResidenceAddress = ""
}

// Covers reports whether d lies inside the schedule's date range.
// A schedule without dates covers every day.
func (s Schedule) Covers(d time.Time) bool {
	if s.StartDate == nil || s.EndDate == nil {
		return true
	}
	d = DateOnly(d)
	return !d.Before(*s.StartDate) && !d.After(*s.EndDate)
}

// CityChanged reports whether moving from oldCity/oldPlaceID to
// newCity/newPlaceID counts as a change of destination.
// Nothing changes when no city was set before.
func CityChanged(oldCity, oldPlaceID, newCity, newPlaceID string) bool {
	oldCity, newCity = strings.TrimSpace(oldCity), strings.TrimSpace(newCity)
	if oldCity == "" && oldPlaceID == "" {
		return false
	}
	if oldPlaceID != "" && newPlaceID != "" && oldPlaceID != newPlaceID {
		return true
	}
	return !strings.EqualFold(oldCity, newCity)
}

// DayCount returns the number of calendar days in [start, end], inclusive.
func DayCount(start, end time.Time) int {
	return int(DateOnly(end).Sub(DateOnly(start)).Hours()/24) + 1
}

// DateOnly drops the time-of-day component, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
