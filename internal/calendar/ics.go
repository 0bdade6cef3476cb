package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/pkordes/travel-agenda/internal/domain"
)

const productID = "-//travel-agenda//agenda export//EN"

// Encoder writes a schedule's agenda as an iCalendar document.
type Encoder struct {
	loc *time.Location
	now func() time.Time
}

// NewEncoder constructs an Encoder interpreting activity times in timeZone.
func NewEncoder(timeZone string) (*Encoder, error) {
	loc, err := LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("calendar.NewEncoder: %w", err)
	}
	return &Encoder{loc: loc, now: time.Now}, nil
}

// Encode writes one VEVENT per dated activity. Each event carries a display
// alarm for every default reminder.
func (e *Encoder) Encode(w io.Writer, sched domain.Schedule, activities []domain.DayActivity) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName(sched))
	cal.SetXWRTimezone(e.loc.String())

	events, _ := BuildEvents(sched, activities, e.loc)
	stamp := e.now().UTC()
	for _, ev := range events {
		vev := cal.AddEvent(ev.ActivityID.String() + "@travel-agenda")
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(ev.Start)
		vev.SetEndAt(ev.End)
		vev.SetSummary(ev.Summary)
		vev.SetDescription(ev.Description)
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
		if ev.Category != "" {
			vev.AddProperty(ical.ComponentPropertyCategories, ev.Category)
		}
		for _, r := range ev.Reminders {
			alarm := vev.AddAlarm()
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetTrigger(fmt.Sprintf("-PT%dM", r.Minutes))
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("calendar.Encoder.Encode: %w", err)
	}
	return nil
}

func calendarName(sched domain.Schedule) string {
	switch {
	case sched.Name != "":
		return sched.Name
	case sched.CityName != "":
		return "Trip to " + sched.CityName
	default:
		return "Travel agenda"
	}
}
