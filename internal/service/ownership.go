package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// requireUser rejects calls made without an authenticated user id.
func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	return nil
}

// ownedSchedule loads a schedule and checks that userID owns it.
// Every service call that reads or mutates a schedule, or anything hanging off
// one, goes through here before touching storage.
// Returns domain.ErrNotFound or domain.ErrForbidden.
func ownedSchedule(ctx context.Context, schedules repo.ScheduleRepo, userID string, id uuid.UUID) (domain.Schedule, error) {
	if err := requireUser(userID); err != nil {
		return domain.Schedule{}, err
	}
	s, err := schedules.GetByID(ctx, id)
	if err != nil {
		return domain.Schedule{}, err
	}
	if s.UserID != userID {
		return domain.Schedule{}, domain.ErrForbidden
	}
	return s, nil
}
