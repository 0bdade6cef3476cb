// Package calendar turns a schedule's agenda into calendar events and
// delivers them: to Google Calendar, one event at a time, or as an iCalendar
// file.
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// DefaultTimeZone is used when none is configured.
const DefaultTimeZone = "Europe/Bucharest"

const mapsPlaceURL = "https://www.google.com/maps/place/?q=place_id:"

// Reminder is a notification sent before an event starts.
type Reminder struct {
	Method  string
	Minutes int64
}

// DefaultReminders is attached to every exported event.
var DefaultReminders = []Reminder{
	{Method: "popup", Minutes: 30},
	{Method: "email", Minutes: 60},
}

// Event is one activity ready to be written to a calendar.
type Event struct {
	ActivityID  uuid.UUID
	Summary     string
	Description string
	Location    string
	Category    string
	Start       time.Time
	End         time.Time
	ColorID     string
	Reminders   []Reminder
}

// colorIDs maps categories to Google Calendar event color ids.
var colorIDs = map[string]string{
	"restaurant":    "10",
	"lodging":       "9",
	"hotel":         "9",
	"park":          "2",
	"museum":        "5",
	"shopping_mall": "6",
}

const defaultColorID = "7"

// ColorID returns the event color for a category.
func ColorID(category string) string {
	if id, ok := colorIDs[strings.ToLower(strings.TrimSpace(category))]; ok {
		return id
	}
	return defaultColorID
}

// LoadLocation resolves a time zone name, defaulting to DefaultTimeZone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimeZone
	}
	return time.LoadLocation(name)
}

// BuildEvents converts the dated activities of a schedule into events in
// chronological order: by date, then by start time. Undated activities are
// skipped and counted.
func BuildEvents(sched domain.Schedule, activities []domain.DayActivity, loc *time.Location) (events []Event, skipped int) {
	dated := make([]domain.DayActivity, 0, len(activities))
	for _, a := range activities {
		if a.Date == nil {
			skipped++
			continue
		}
		dated = append(dated, a)
	}
	sort.SliceStable(dated, func(i, j int) bool {
		di, dj := domain.DateOnly(*dated[i].Date), domain.DateOnly(*dated[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return dated[i].SortKey() < dated[j].SortKey()
	})

	events = make([]Event, 0, len(dated))
	for _, a := range dated {
		events = append(events, buildEvent(sched, a, loc))
	}
	return events, skipped
}

func buildEvent(sched domain.Schedule, a domain.DayActivity, loc *time.Location) Event {
	start, end := EventTimes(*a.Date, a.StartHour, a.StartMinute, a.EndHour, a.EndMinute, loc)
	ev := Event{
		ActivityID:  a.ID,
		Summary:     a.Name,
		Description: describe(sched, a),
		Category:    a.Type,
		Start:       start,
		End:         end,
		ColorID:     ColorID(a.Type),
		Reminders:   DefaultReminders,
	}
	if a.PlaceID != "" {
		ev.Location = a.Name
	}
	return ev
}

// EventTimes places the start and end offsets on the calendar day of date in
// loc. An end that is not after the start moves to the following day.
func EventTimes(date time.Time, startHour, startMinute, endHour, endMinute int, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, startHour, startMinute, 0, 0, loc)
	end := time.Date(y, m, d, endHour, endMinute, 0, 0, loc)
	if !end.After(start) {
		end = time.Date(y, m, d+1, endHour, endMinute, 0, 0, loc)
	}
	return start, end
}

func describe(sched domain.Schedule, a domain.DayActivity) string {
	var b strings.Builder
	b.WriteString("Activity Type: " + a.Type + "\n")
	b.WriteString("Trip: " + sched.CityName + "\n")
	if a.Notes != "" {
		b.WriteString("Additional Info: " + a.Notes)
	}
	if a.PlaceID != "" {
		b.WriteString("\n\nView on Google Maps: " + mapsPlaceURL + a.PlaceID)
	}
	return b.String()
}
