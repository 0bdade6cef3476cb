package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
	"github.com/pkordes/travel-agenda/internal/service"
)

// mockDayActivityRepo is a hand-written test double for repo.DayActivityRepo.
// When create is nil it keeps created rows in memory, which is enough for
// tests that count what was persisted.
type mockDayActivityRepo struct {
	rows []domain.DayActivity

	create           func(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error)
	getByID          func(ctx context.Context, scheduleID, id uuid.UUID) (domain.DayActivity, error)
	listByScheduleID func(ctx context.Context, scheduleID uuid.UUID) ([]domain.DayActivity, error)
	update           func(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error)
	delete           func(ctx context.Context, scheduleID, id uuid.UUID) error
	deleteBySchedule func(ctx context.Context, scheduleID uuid.UUID) (int64, error)
}

func (m *mockDayActivityRepo) Create(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error) {
	if m.create != nil {
		return m.create(ctx, a)
	}
	a.ID = uuid.New()
	m.rows = append(m.rows, a)
	return a, nil
}
func (m *mockDayActivityRepo) GetByID(ctx context.Context, scheduleID, id uuid.UUID) (domain.DayActivity, error) {
	return m.getByID(ctx, scheduleID, id)
}
func (m *mockDayActivityRepo) ListByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]domain.DayActivity, error) {
	if m.listByScheduleID != nil {
		return m.listByScheduleID(ctx, scheduleID)
	}
	return m.rows, nil
}
func (m *mockDayActivityRepo) Update(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error) {
	return m.update(ctx, a)
}
func (m *mockDayActivityRepo) Delete(ctx context.Context, scheduleID, id uuid.UUID) error {
	return m.delete(ctx, scheduleID, id)
}
func (m *mockDayActivityRepo) DeleteBySchedule(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	return m.deleteBySchedule(ctx, scheduleID)
}

// compile-time check: mockDayActivityRepo must satisfy repo.DayActivityRepo.
var _ repo.DayActivityRepo = (*mockDayActivityRepo)(nil)

func plannedActivity(scheduleID uuid.UUID, name string, hour, minute int) domain.DayActivity {
	d := day(2024, 6, 1)
	return domain.DayActivity{
		ScheduleID:  scheduleID,
		Name:        name,
		Type:        "museum",
		Date:        &d,
		StartHour:   hour,
		StartMinute: minute,
		EndHour:     hour + 1,
	}
}

// ---- Create ----------------------------------------------------------------

func TestAgendaService_Create_OK(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	svc := service.NewAgendaService(schedulesReturning(s), activities, &mockActivityRepo{})

	got, err := svc.Create(context.Background(), owner, plannedActivity(s.ID, "Louvre", 10, 0))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Len(t, activities.rows, 1)
}

func TestAgendaService_Create_OutsideScheduleDates(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{}, &mockActivityRepo{})
	a := plannedActivity(s.ID, "Louvre", 10, 0)
	late := day(2024, 7, 1)
	a.Date = &late

	_, err := svc.Create(context.Background(), owner, a)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAgendaService_Create_ForeignSchedule(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	svc := service.NewAgendaService(schedulesReturning(s), activities, &mockActivityRepo{})

	_, err := svc.Create(context.Background(), "intruder", plannedActivity(s.ID, "Louvre", 10, 0))

	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, activities.rows)
}

func TestAgendaService_Create_UnknownCatalogActivity(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	missing := uuid.New()
	catalog := &mockActivityRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Activity, error) {
			assert.Equal(t, missing, id)
			return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", domain.ErrNotFound)
		},
	}
	svc := service.NewAgendaService(schedulesReturning(s), activities, catalog)
	a := plannedActivity(s.ID, "Louvre", 10, 0)
	a.ActivityID = &missing

	_, err := svc.Create(context.Background(), owner, a)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, activities.rows, "nothing is written for an unknown activity")
}

func TestAgendaService_Create_KnownCatalogActivity(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	known := uuid.New()
	catalog := &mockActivityRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Activity, error) {
			return domain.Activity{ID: id, Name: "Louvre"}, nil
		},
	}
	svc := service.NewAgendaService(schedulesReturning(s), activities, catalog)
	a := plannedActivity(s.ID, "Louvre", 10, 0)
	a.ActivityID = &known

	got, err := svc.Create(context.Background(), owner, a)

	require.NoError(t, err)
	require.NotNil(t, got.ActivityID)
	assert.Equal(t, known, *got.ActivityID)
}

// ---- BulkCreate ------------------------------------------------------------

func TestAgendaService_BulkCreate_PartialSuccess(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	svc := service.NewAgendaService(schedulesReturning(s), activities, &mockActivityRepo{})

	items := []domain.DayActivity{
		plannedActivity(uuid.Nil, "Louvre", 10, 0),
		plannedActivity(uuid.Nil, "", 11, 0), // missing name
		plannedActivity(uuid.Nil, "Orsay", 14, 0),
		plannedActivity(uuid.Nil, "Eiffel", 18, 0),
	}

	result, err := svc.BulkCreate(context.Background(), owner, s.ID, items)

	require.NoError(t, err)
	assert.Len(t, result.Created, 3)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrValidation)
	assert.Len(t, activities.rows, 3, "valid items are persisted, not rolled back")
	for _, row := range activities.rows {
		assert.Equal(t, s.ID, row.ScheduleID)
	}
}

func TestAgendaService_BulkCreate_StorageErrorIsolated(t *testing.T) {
	s := storedSchedule()
	calls := 0
	activities := &mockDayActivityRepo{
		create: func(_ context.Context, a domain.DayActivity) (domain.DayActivity, error) {
			calls++
			if calls == 1 {
				return domain.DayActivity{}, errors.New("connection reset")
			}
			return a, nil
		},
	}
	svc := service.NewAgendaService(schedulesReturning(s), activities, &mockActivityRepo{})

	result, err := svc.BulkCreate(context.Background(), owner, s.ID, []domain.DayActivity{
		plannedActivity(uuid.Nil, "a", 9, 0),
		plannedActivity(uuid.Nil, "b", 10, 0),
	})

	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	assert.Len(t, result.Failed, 1)
}

func TestAgendaService_BulkCreate_ForeignSchedule(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{}, &mockActivityRepo{})

	_, err := svc.BulkCreate(context.Background(), "intruder", s.ID, []domain.DayActivity{plannedActivity(uuid.Nil, "a", 9, 0)})

	assert.ErrorIs(t, err, domain.ErrForbidden)
}


func TestAgendaService_BulkCreate_UnknownCatalogActivity(t *testing.T) {
	s := storedSchedule()
	activities := &mockDayActivityRepo{}
	catalog := &mockActivityRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Activity, error) {
			return domain.Activity{}, domain.ErrNotFound
		},
	}
	svc := service.NewAgendaService(schedulesReturning(s), activities, catalog)
	missing := uuid.New()
	bad := plannedActivity(uuid.Nil, "Orsay", 14, 0)
	bad.ActivityID = &missing

	result, err := svc.BulkCreate(context.Background(), owner, s.ID, []domain.DayActivity{
		plannedActivity(uuid.Nil, "Louvre", 10, 0),
		bad,
	})

	require.NoError(t, err)
	assert.Len(t, result.Created, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.ErrorIs(t, result.Failed[0].Err, domain.ErrValidation)
}

// ---- DayView ---------------------------------------------------------------

func TestAgendaService_DayView(t *testing.T) {
	s := storedSchedule()
	june2 := day(2024, 6, 2)
	other := plannedActivity(s.ID, "other day", 7, 0)
	other.Date = &june2
	undated := plannedActivity(s.ID, "undated", 6, 0)
	undated.Date = nil

	activities := &mockDayActivityRepo{rows: []domain.DayActivity{
		plannedActivity(s.ID, "evening", 19, 0),
		other,
		undated,
		plannedActivity(s.ID, "late morning", 11, 30),
		plannedActivity(s.ID, "morning", 11, 15),
	}}
	svc := service.NewAgendaService(schedulesReturning(s), activities, &mockActivityRepo{})

	got, err := svc.DayView(context.Background(), owner, s.ID, day(2024, 6, 1))

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "morning", got[0].Name)
	assert.Equal(t, "late morning", got[1].Name)
	assert.Equal(t, "evening", got[2].Name)
}

// ---- Update / Delete / Clear -----------------------------------------------

func TestAgendaService_Update_Validation(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{}, &mockActivityRepo{})
	a := plannedActivity(s.ID, "Louvre", 10, 0)
	a.StartMinute = 75

	_, err := svc.Update(context.Background(), owner, a)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAgendaService_Delete_ForeignSchedule(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{
		delete: func(_ context.Context, _, _ uuid.UUID) error {
			t.Fatal("delete must not run for a foreign schedule")
			return nil
		},
	}, &mockActivityRepo{})

	err := svc.Delete(context.Background(), "intruder", s.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAgendaService_Delete_NotFound(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}, &mockActivityRepo{})

	err := svc.Delete(context.Background(), owner, s.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAgendaService_Clear(t *testing.T) {
	s := storedSchedule()
	svc := service.NewAgendaService(schedulesReturning(s), &mockDayActivityRepo{
		deleteBySchedule: func(_ context.Context, id uuid.UUID) (int64, error) {
			assert.Equal(t, s.ID, id)
			return 5, nil
		},
	}, &mockActivityRepo{})

	n, err := svc.Clear(context.Background(), owner, s.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
