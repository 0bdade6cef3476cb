package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayActivity is one planned activity inside a schedule, pinned to a date and
// a time window. Date is nil until the user places it on a day.
type DayActivity struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	ActivityID *uuid.UUID // catalog entry, optional

	Name    string
	PlaceID string
	Type    string

	Date        *time.Time
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int

	Notes     string
	Available bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortKey is the fractional start hour used to order a day.
func (a DayActivity) SortKey() float64 {
	return float64(a.StartHour) + float64(a.StartMinute)/60
}

// Validate enforces the rules shared by create, update and bulk create.
func (a DayActivity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if a.StartHour < 0 || a.StartHour > 23 || a.EndHour < 0 || a.EndHour > 23 {
		return fmt.Errorf("%w: hours must be between 0 and 23", ErrValidation)
	}
	if a.StartMinute < 0 || a.StartMinute > 59 || a.EndMinute < 0 || a.EndMinute > 59 {
		return fmt.Errorf("%w: minutes must be between 0 and 59", ErrValidation)
	}
	return nil
}

// DayView returns the activities scheduled on day, ordered by SortKey.
// Undated activities never appear. The result is never nil.
func DayView(activities []DayActivity, day time.Time) []DayActivity {
	day = DateOnly(day)
	out := []DayActivity{}
	for _, a := range activities {
		if a.Date == nil || !DateOnly(*a.Date).Equal(day) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortKey() < out[j].SortKey()
	})
	return out
}

// BulkFailure describes one rejected item of a bulk create.
type BulkFailure struct {
	Index int
	Name  string
	Err   error
}

// BulkResult reports the outcome of inserting a batch item by item.
type BulkResult struct {
	Created []DayActivity
	Failed  []BulkFailure
}
