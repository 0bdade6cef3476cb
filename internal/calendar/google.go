package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// PrimaryCalendar is the calendar id events are inserted into.
const PrimaryCalendar = "primary"

// GoogleConfig holds the exporter settings.
type GoogleConfig struct {
	// TimeZone is the IANA zone activity times are interpreted in.
	TimeZone string

	// Timeout bounds each API call. Defaults to 10s.
	Timeout time.Duration

	// Endpoint overrides the API base URL. Empty selects the production API.
	Endpoint string
}

// GoogleExporter inserts agenda events into a user's Google Calendar.
type GoogleExporter struct {
	loc      *time.Location
	timeout  time.Duration
	endpoint string
	logger   *slog.Logger
}

// NewGoogleExporter constructs a GoogleExporter. Returns an error if the
// configured time zone is unknown.
func NewGoogleExporter(cfg GoogleConfig, logger *slog.Logger) (*GoogleExporter, error) {
	loc, err := LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("calendar.NewGoogleExporter: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleExporter{
		loc:      loc,
		timeout:  cfg.Timeout,
		endpoint: cfg.Endpoint,
		logger:   logger.With("component", "calendar"),
	}, nil
}

// service builds a Calendar API client authorized with accessToken.
func (e *GoogleExporter) service(ctx context.Context, accessToken string) (*gcal.Service, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, src))}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	return gcal.NewService(ctx, opts...)
}

// Ping lists the user's calendars to check that the token is accepted.
func (e *GoogleExporter) Ping(ctx context.Context, accessToken string) error {
	svc, err := e.service(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("calendar.GoogleExporter.Ping: %w", err)
	}
	return e.ping(ctx, svc)
}

func (e *GoogleExporter) ping(ctx context.Context, svc *gcal.Service) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	list, err := svc.CalendarList.List().MaxResults(10).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: list calendars: %v", domain.ErrUpstream, err)
	}
	e.logger.DebugContext(ctx, "calendar connection ok", "calendars", len(list.Items))
	return nil
}

// Export inserts one event per dated activity, sequentially and in
// chronological order. A failed insert is logged and counted; the remaining
// events are still attempted. Undated activities are counted as skipped.
func (e *GoogleExporter) Export(ctx context.Context, accessToken string, sched domain.Schedule, activities []domain.DayActivity) domain.ExportResult {
	events, skipped := BuildEvents(sched, activities, e.loc)
	result := domain.ExportResult{Total: len(activities), Skipped: skipped}
	if len(events) == 0 {
		result.Outcome = domain.ExportNothing
		return result
	}

	svc, err := e.service(ctx, accessToken)
	if err == nil {
		err = e.ping(ctx, svc)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "calendar unavailable", "schedule_id", sched.ID, "error", err)
		result.Outcome = domain.ExportFailed
		result.Failed = len(events)
		return result
	}

	for _, ev := range events {
		if err := e.insert(ctx, svc, ev); err != nil {
			e.logger.ErrorContext(ctx, "calendar event insert failed",
				"schedule_id", sched.ID, "activity_id", ev.ActivityID, "error", err)
			result.Failed++
			continue
		}
		result.Created++
	}

	result.Outcome = domain.ExportFailed
	if result.Success() {
		result.Outcome = domain.ExportSucceeded
	}
	e.logger.InfoContext(ctx, "calendar export finished",
		"schedule_id", sched.ID, "created", result.Created, "failed", result.Failed, "skipped", result.Skipped)
	return result
}

func (e *GoogleExporter) insert(ctx context.Context, svc *gcal.Service, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	_, err := svc.Events.Insert(PrimaryCalendar, toGoogleEvent(ev, e.loc.String())).Context(ctx).Do()
	return err
}

func toGoogleEvent(ev Event, timeZone string) *gcal.Event {
	overrides := make([]*gcal.EventReminder, 0, len(ev.Reminders))
	for _, r := range ev.Reminders {
		overrides = append(overrides, &gcal.EventReminder{Method: r.Method, Minutes: r.Minutes})
	}
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		ColorId:     ev.ColorID,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: timeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: timeZone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}
}
