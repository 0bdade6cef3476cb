// Package service contains the business logic for the travel agenda API.
// Services validate inputs, enforce ownership, and orchestrate repo and
// upstream client calls. No SQL and no HTTP framing lives here.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// ScheduleService implements business logic for Schedule operations.
type ScheduleService struct {
	schedules repo.ScheduleRepo
}

// NewScheduleService constructs a ScheduleService backed by the provided repo.
func NewScheduleService(schedules repo.ScheduleRepo) *ScheduleService {
	return &ScheduleService{schedules: schedules}
}

// Create persists a new schedule owned by userID. Everything but the owner
// is optional; a schedule usually starts empty.
func (s *ScheduleService) Create(ctx context.Context, userID string, sched domain.Schedule) (domain.Schedule, error) {
	if err := requireUser(userID); err != nil {
		return domain.Schedule{}, err
	}
	sched.UserID = userID
	if err := normalizeDates(&sched); err != nil {
		return domain.Schedule{}, err
	}
	result, err := s.schedules.Create(ctx, sched)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a schedule owned by userID.
func (s *ScheduleService) GetByID(ctx context.Context, userID string, id uuid.UUID) (domain.Schedule, error) {
	result, err := ownedSchedule(ctx, s.schedules, userID, id)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns every schedule of userID, oldest first.
// Always returns a non-nil slice.
func (s *ScheduleService) ListByUser(ctx context.Context, userID string) ([]domain.Schedule, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	schedules, err := s.schedules.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ScheduleService.ListByUser: %w", err)
	}
	if schedules == nil {
		return []domain.Schedule{}, nil
	}
	return schedules, nil
}

// ListByUserPaged returns one page of the user's schedules and the total count.
func (s *ScheduleService) ListByUserPaged(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Schedule, int64, error) {
	if err := requireUser(userID); err != nil {
		return nil, 0, err
	}
	schedules, total, err := s.schedules.ListByUserPaged(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ScheduleService.ListByUserPaged: %w", err)
	}
	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	return schedules, total, nil
}

// Update persists every mutable field of sched. When the destination city
// changes, lodging is cleared and the whole agenda is deleted in the same
// transaction; the returned change reports it.
func (s *ScheduleService) Update(ctx context.Context, userID string, sched domain.Schedule) (domain.ScheduleChange, error) {
	existing, err := ownedSchedule(ctx, s.schedules, userID, sched.ID)
	if err != nil {
		return domain.ScheduleChange{}, fmt.Errorf("service.ScheduleService.Update: %w", err)
	}
	sched.UserID = existing.UserID
	if err := normalizeDates(&sched); err != nil {
		return domain.ScheduleChange{}, err
	}

	if !domain.CityChanged(existing.CityName, existing.CityPlaceID, sched.CityName, sched.CityPlaceID) {
		result, err := s.schedules.Update(ctx, sched)
		if err != nil {
			return domain.ScheduleChange{}, fmt.Errorf("service.ScheduleService.Update: %w", err)
		}
		return domain.ScheduleChange{Schedule: result}, nil
	}

	sched.ClearLodging()
	result, removed, err := s.schedules.UpdateClearingAgenda(ctx, sched)
	if err != nil {
		return domain.ScheduleChange{}, fmt.Errorf("service.ScheduleService.Update: %w", err)
	}
	return domain.ScheduleChange{Schedule: result, CityChanged: true, RemovedActivities: removed}, nil
}

// SetDates stores a new date range and its derived fields.
func (s *ScheduleService) SetDates(ctx context.Context, userID string, id uuid.UUID, start, end time.Time) (domain.Schedule, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, id)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.SetDates: %w", err)
	}
	if err := sched.SetDateRange(start, end); err != nil {
		return domain.Schedule{}, err
	}
	result, err := s.schedules.Update(ctx, sched)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.SetDates: %w", err)
	}
	return result, nil
}

// SetCity chooses the destination. See Update for the cascade on change.
func (s *ScheduleService) SetCity(ctx context.Context, userID string, id uuid.UUID, cityName, cityPlaceID string) (domain.ScheduleChange, error) {
	cityName, cityPlaceID = strings.TrimSpace(cityName), strings.TrimSpace(cityPlaceID)
	if cityName == "" || cityPlaceID == "" {
		return domain.ScheduleChange{}, fmt.Errorf("%w: city name and place id are required", domain.ErrValidation)
	}
	sched, err := ownedSchedule(ctx, s.schedules, userID, id)
	if err != nil {
		return domain.ScheduleChange{}, fmt.Errorf("service.ScheduleService.SetCity: %w", err)
	}
	sched.CityName, sched.CityPlaceID = cityName, cityPlaceID
	return s.Update(ctx, userID, sched)
}

// SetResidence stores the chosen hotel. A city must be chosen first.
func (s *ScheduleService) SetResidence(ctx context.Context, userID string, id uuid.UUID, r domain.Residence) (domain.Schedule, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, id)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.SetResidence: %w", err)
	}
	if !sched.HasCity() {
		return domain.Schedule{}, fmt.Errorf("%w: choose a city before the residence", domain.ErrValidation)
	}
	if strings.TrimSpace(r.HotelID) == "" || strings.TrimSpace(r.HotelName) == "" {
		return domain.Schedule{}, fmt.Errorf("%w: hotel id and name are required", domain.ErrValidation)
	}
	if (r.Lat == nil) != (r.Lng == nil) {
		return domain.Schedule{}, fmt.Errorf("%w: lat and lng must be set together", domain.ErrValidation)
	}

	sched.HotelID, sched.HotelName = r.HotelID, r.HotelName
	sched.ResidenceLat, sched.ResidenceLng = r.Lat, r.Lng
	sched.ResidenceAddress = r.Address

	result, err := s.schedules.Update(ctx, sched)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("service.ScheduleService.SetResidence: %w", err)
	}
	return result, nil
}

// Delete removes the schedule together with its agenda.
func (s *ScheduleService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if _, err := ownedSchedule(ctx, s.schedules, userID, id); err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}
	if err := s.schedules.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.ScheduleService.Delete: %w", err)
	}
	return nil
}

// normalizeDates validates the date range and recomputes the derived fields.
//   - both dates or neither;
//   - end must not be before start.
func normalizeDates(sched *domain.Schedule) error {
	switch {
	case sched.StartDate == nil && sched.EndDate == nil:
		sched.NrDays, sched.StartDay, sched.EndDay, sched.StartMonth, sched.EndMonth = 0, 0, 0, 0, 0
		return nil
	case sched.StartDate == nil || sched.EndDate == nil:
		return fmt.Errorf("%w: start_date and end_date must be set together", domain.ErrValidation)
	}
	return sched.SetDateRange(*sched.StartDate, *sched.EndDate)
}
