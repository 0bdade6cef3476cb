package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// AccessTokenSource hands out calendar access tokens.
// *TokenService satisfies it.
type AccessTokenSource interface {
	ValidAccessToken(ctx context.Context, userID string) (string, error)
}

// CalendarExporter submits a schedule's activities to an external calendar.
type CalendarExporter interface {
	Export(ctx context.Context, accessToken string, sched domain.Schedule, activities []domain.DayActivity) domain.ExportResult
}

// ExportService assembles a schedule's agenda for download and pushes it to
// the user's external calendar.
type ExportService struct {
	schedules  repo.ScheduleRepo
	activities repo.DayActivityRepo
	tokens     AccessTokenSource
	calendar   CalendarExporter
}

// NewExportService constructs an ExportService.
func NewExportService(schedules repo.ScheduleRepo, activities repo.DayActivityRepo, tokens AccessTokenSource, calendar CalendarExporter) *ExportService {
	return &ExportService{schedules: schedules, activities: activities, tokens: tokens, calendar: calendar}
}

// Agenda returns the schedule and all of its activities.
func (s *ExportService) Agenda(ctx context.Context, userID string, scheduleID uuid.UUID) (domain.Schedule, []domain.DayActivity, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, scheduleID)
	if err != nil {
		return domain.Schedule{}, nil, fmt.Errorf("service.ExportService.Agenda: %w", err)
	}
	activities, err := s.activities.ListByScheduleID(ctx, scheduleID)
	if err != nil {
		return domain.Schedule{}, nil, fmt.Errorf("service.ExportService.Agenda: %w", err)
	}
	if activities == nil {
		activities = []domain.DayActivity{}
	}
	return sched, activities, nil
}

// ExportToCalendar sends every dated activity of the schedule to the user's
// calendar, one event at a time.
//
// A schedule with nothing dated yields domain.ExportNothing without touching
// the calendar or the token. A missing or unrefreshable token returns an
// error wrapping domain.ErrNoToken so the caller can ask the user to reconnect.
func (s *ExportService) ExportToCalendar(ctx context.Context, userID string, scheduleID uuid.UUID) (domain.ExportResult, error) {
	sched, activities, err := s.Agenda(ctx, userID, scheduleID)
	if err != nil {
		return domain.ExportResult{}, err
	}
	if !sched.HasCity() {
		return domain.ExportResult{}, fmt.Errorf("%w: schedule has no city selected", domain.ErrValidation)
	}

	dated := make([]domain.DayActivity, 0, len(activities))
	for _, a := range activities {
		if a.Date != nil {
			dated = append(dated, a)
		}
	}
	skipped := len(activities) - len(dated)
	if len(dated) == 0 {
		return domain.ExportResult{Outcome: domain.ExportNothing, Total: len(activities), Skipped: skipped}, nil
	}

	token, err := s.tokens.ValidAccessToken(ctx, userID)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("service.ExportService.ExportToCalendar: %w", err)
	}

	result := s.calendar.Export(ctx, token, sched, dated)
	result.Total = len(activities)
	result.Skipped += skipped
	return result, nil
}
