package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// AgendaService implements business logic for the activities planned inside
// a schedule. It holds the schedules repo because every call first checks
// that the acting user owns the parent schedule.
type AgendaService struct {
	schedules  repo.ScheduleRepo
	activities repo.DayActivityRepo
	catalog    repo.ActivityRepo
}

// NewAgendaService constructs an AgendaService backed by the provided repos.
// catalog resolves the optional activity reference of each planned item.
func NewAgendaService(schedules repo.ScheduleRepo, activities repo.DayActivityRepo, catalog repo.ActivityRepo) *AgendaService {
	return &AgendaService{schedules: schedules, activities: activities, catalog: catalog}
}

// Create validates and persists a single activity.
func (s *AgendaService) Create(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, a.ScheduleID)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.Create: %w", err)
	}
	if err := s.validate(ctx, sched, &a); err != nil {
		return domain.DayActivity{}, err
	}
	result, err := s.activities.Create(ctx, a)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.Create: %w", err)
	}
	return result, nil
}

// BulkCreate inserts each item independently. A rejected or failed item is
// recorded and the rest continue; there is no rollback of the ones that made it.
// Only a failed ownership check aborts the whole call.
func (s *AgendaService) BulkCreate(ctx context.Context, userID string, scheduleID uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, scheduleID)
	if err != nil {
		return domain.BulkResult{}, fmt.Errorf("service.AgendaService.BulkCreate: %w", err)
	}

	result := domain.BulkResult{
		Created: make([]domain.DayActivity, 0, len(items)),
		Failed:  []domain.BulkFailure{},
	}
	for i, a := range items {
		a.ScheduleID = scheduleID
		if err := s.validate(ctx, sched, &a); err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Name: a.Name, Err: err})
			continue
		}
		created, err := s.activities.Create(ctx, a)
		if err != nil {
			result.Failed = append(result.Failed, domain.BulkFailure{Index: i, Name: a.Name, Err: err})
			continue
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}

// GetByID returns one activity of a schedule owned by userID.
func (s *AgendaService) GetByID(ctx context.Context, userID string, scheduleID, id uuid.UUID) (domain.DayActivity, error) {
	if _, err := ownedSchedule(ctx, s.schedules, userID, scheduleID); err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.GetByID: %w", err)
	}
	result, err := s.activities.GetByID(ctx, scheduleID, id)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.GetByID: %w", err)
	}
	return result, nil
}

// ListBySchedule returns every activity of the schedule.
// Always returns a non-nil slice.
func (s *AgendaService) ListBySchedule(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.DayActivity, error) {
	if _, err := ownedSchedule(ctx, s.schedules, userID, scheduleID); err != nil {
		return nil, fmt.Errorf("service.AgendaService.ListBySchedule: %w", err)
	}
	activities, err := s.activities.ListByScheduleID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("service.AgendaService.ListBySchedule: %w", err)
	}
	if activities == nil {
		return []domain.DayActivity{}, nil
	}
	return activities, nil
}

// DayView returns the activities planned on day, in start time order.
func (s *AgendaService) DayView(ctx context.Context, userID string, scheduleID uuid.UUID, day time.Time) ([]domain.DayActivity, error) {
	activities, err := s.ListBySchedule(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	return domain.DayView(activities, day), nil
}

// Update validates and persists changes to an existing activity.
func (s *AgendaService) Update(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, a.ScheduleID)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.Update: %w", err)
	}
	if err := s.validate(ctx, sched, &a); err != nil {
		return domain.DayActivity{}, err
	}
	result, err := s.activities.Update(ctx, a)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("service.AgendaService.Update: %w", err)
	}
	return result, nil
}

// Delete removes one activity from a schedule owned by userID.
func (s *AgendaService) Delete(ctx context.Context, userID string, scheduleID, id uuid.UUID) error {
	if _, err := ownedSchedule(ctx, s.schedules, userID, scheduleID); err != nil {
		return fmt.Errorf("service.AgendaService.Delete: %w", err)
	}
	if err := s.activities.Delete(ctx, scheduleID, id); err != nil {
		return fmt.Errorf("service.AgendaService.Delete: %w", err)
	}
	return nil
}

// Clear removes every activity of the schedule and returns how many went.
func (s *AgendaService) Clear(ctx context.Context, userID string, scheduleID uuid.UUID) (int64, error) {
	if _, err := ownedSchedule(ctx, s.schedules, userID, scheduleID); err != nil {
		return 0, fmt.Errorf("service.AgendaService.Clear: %w", err)
	}
	n, err := s.activities.DeleteBySchedule(ctx, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("service.AgendaService.Clear: %w", err)
	}
	return n, nil
}

// validate applies the field rules, pins the date to the schedule's range
// and checks that a referenced catalog activity exists. The date is
// normalized to midnight UTC in place.
func (s *AgendaService) validate(ctx context.Context, sched domain.Schedule, a *domain.DayActivity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.Date != nil {
		d := domain.DateOnly(*a.Date)
		a.Date = &d
		if !sched.Covers(d) {
			return fmt.Errorf("%w: date %s is outside the schedule", domain.ErrValidation, d.Format(time.DateOnly))
		}
	}
	if a.ActivityID == nil {
		return nil
	}
	if _, err := s.catalog.GetByID(ctx, *a.ActivityID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: activity %s does not exist", domain.ErrValidation, *a.ActivityID)
		}
		return fmt.Errorf("service.AgendaService.validate: %w", err)
	}
	return nil
}
