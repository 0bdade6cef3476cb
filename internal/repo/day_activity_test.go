package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

func dayActivityFixture(scheduleID uuid.UUID, name string) domain.DayActivity {
	d := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return domain.DayActivity{
		ScheduleID:  scheduleID,
		Name:        name,
		PlaceID:     "place-" + name,
		Type:        "restaurant",
		Date:        &d,
		StartHour:   12,
		StartMinute: 30,
		EndHour:     14,
		Notes:       "table for two",
		Available:   true,
	}
}

// newAgendaRepos returns repos sharing one rolled-back transaction plus a
// freshly created schedule to hang activities on.
func newAgendaRepos(t *testing.T) (repo.DayActivityRepo, domain.Schedule) {
	t.Helper()
	tx := newTestTx(t)
	s, err := repo.NewScheduleRepo(tx).Create(context.Background(), scheduleFixture("user-1"))
	require.NoError(t, err)
	return repo.NewDayActivityRepo(tx), s
}

func TestDayActivityRepo_Create(t *testing.T) {
	r, s := newAgendaRepos(t)

	got, err := r.Create(context.Background(), dayActivityFixture(s.ID, "lunch"))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, s.ID, got.ScheduleID)
	assert.Nil(t, got.ActivityID)
	require.NotNil(t, got.Date)
	assert.Equal(t, 30, got.StartMinute)
}

func TestDayActivityRepo_Create_Undated(t *testing.T) {
	r, s := newAgendaRepos(t)

	input := dayActivityFixture(s.ID, "someday")
	input.Date = nil
	got, err := r.Create(context.Background(), input)

	require.NoError(t, err)
	assert.Nil(t, got.Date)
}

func TestDayActivityRepo_Create_UnknownActivityRef(t *testing.T) {
	r, s := newAgendaRepos(t)

	input := dayActivityFixture(s.ID, "ghost")
	missing := uuid.New()
	input.ActivityID = &missing
	_, err := r.Create(context.Background(), input)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.NotContains(t, err.Error(), "SQLSTATE")
}

func TestDayActivityRepo_GetByID_WrongSchedule(t *testing.T) {
	r, s := newAgendaRepos(t)
	ctx := context.Background()

	created, err := r.Create(ctx, dayActivityFixture(s.ID, "lunch"))
	require.NoError(t, err)

	_, err = r.GetByID(ctx, uuid.New(), created.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDayActivityRepo_ListByScheduleID_Ordered(t *testing.T) {
	r, s := newAgendaRepos(t)
	ctx := context.Background()

	late := dayActivityFixture(s.ID, "dinner")
	late.StartHour = 20
	undated := dayActivityFixture(s.ID, "maybe")
	undated.Date = nil
	early := dayActivityFixture(s.ID, "breakfast")
	early.StartHour = 8

	for _, a := range []domain.DayActivity{late, undated, early} {
		_, err := r.Create(ctx, a)
		require.NoError(t, err)
	}

	got, err := r.ListByScheduleID(ctx, s.ID)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "breakfast", got[0].Name)
	assert.Equal(t, "dinner", got[1].Name)
	assert.Equal(t, "maybe", got[2].Name)
}

func TestDayActivityRepo_Update(t *testing.T) {
	r, s := newAgendaRepos(t)
	ctx := context.Background()

	created, err := r.Create(ctx, dayActivityFixture(s.ID, "lunch"))
	require.NoError(t, err)

	created.Name = "late lunch"
	created.StartHour = 15
	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "late lunch", updated.Name)
	assert.Equal(t, 15, updated.StartHour)
}

func TestDayActivityRepo_Delete(t *testing.T) {
	r, s := newAgendaRepos(t)
	ctx := context.Background()

	created, err := r.Create(ctx, dayActivityFixture(s.ID, "lunch"))
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, s.ID, created.ID))
	assert.ErrorIs(t, r.Delete(ctx, s.ID, created.ID), domain.ErrNotFound)
}

func TestDayActivityRepo_DeleteBySchedule(t *testing.T) {
	r, s := newAgendaRepos(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := r.Create(ctx, dayActivityFixture(s.ID, name))
		require.NoError(t, err)
	}

	n, err := r.DeleteBySchedule(ctx, s.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = r.DeleteBySchedule(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "second wipe is a no-op")
}
