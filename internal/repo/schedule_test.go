package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
	"github.com/pkordes/travel-agenda/testutil"
)

// newTestTx opens a transaction against the test database. The transaction is
// rolled back when the test finishes, so every repo built on it is isolated.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// scheduleFixture returns a schedule with dates and a city set.
func scheduleFixture(userID string) domain.Schedule {
	s := domain.Schedule{
		UserID:      userID,
		Name:        "Bucharest weekend",
		CityName:    "Bucharest",
		CityPlaceID: "ChIJT608vzr5sUARKKacfOMyBqw",
		HotelID:     "hotel-1",
		HotelName:   "Grand Hotel",
	}
	_ = s.SetDateRange(
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	)
	return s
}

func TestScheduleRepo_Create(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))
	ctx := context.Background()

	input := scheduleFixture("user-1")
	got, err := r.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID, "ID should be DB-generated UUID")
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 3, got.NrDays)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(*input.StartDate))
	assert.Nil(t, got.ResidenceLat)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestScheduleRepo_Create_Empty(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))

	got, err := r.Create(context.Background(), domain.Schedule{UserID: "user-1"})

	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Nil(t, got.EndDate)
	assert.Empty(t, got.CityName)
}

func TestScheduleRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduleRepo_ListByUser_ScopedAndOrdered(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))
	ctx := context.Background()

	first, err := r.Create(ctx, scheduleFixture("user-1"))
	require.NoError(t, err)
	second, err := r.Create(ctx, scheduleFixture("user-1"))
	require.NoError(t, err)
	_, err = r.Create(ctx, scheduleFixture("user-2"))
	require.NoError(t, err)

	got, err := r.ListByUser(ctx, "user-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	ids := []uuid.UUID{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
}

func TestScheduleRepo_ListByUserPaged(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := r.Create(ctx, scheduleFixture("pager"))
		require.NoError(t, err)
	}

	page, total, err := r.ListByUserPaged(ctx, "pager", domain.PaginationParams{Page: 2, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)
}

func TestScheduleRepo_Update(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, scheduleFixture("user-1"))
	require.NoError(t, err)

	lat, lng := 44.43, 26.10
	created.Name = "Renamed"
	created.ResidenceLat, created.ResidenceLng = &lat, &lng
	created.ResidenceAddress = "Calea Victoriei 1"

	updated, err := r.Update(ctx, created)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	require.NotNil(t, updated.ResidenceLat)
	assert.InDelta(t, lat, *updated.ResidenceLat, 1e-9)
	assert.Equal(t, "Calea Victoriei 1", updated.ResidenceAddress)
}

func TestScheduleRepo_Update_NotFound(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))

	ghost := scheduleFixture("user-1")
	ghost.ID = uuid.New()

	_, err := r.Update(context.Background(), ghost)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduleRepo_UpdateClearingAgenda(t *testing.T) {
	tx := newTestTx(t)
	schedules := repo.NewScheduleRepo(tx)
	activities := repo.NewDayActivityRepo(tx)
	ctx := context.Background()

	s, err := schedules.Create(ctx, scheduleFixture("user-1"))
	require.NoError(t, err)
	for _, name := range []string{"a", "b"} {
		_, err := activities.Create(ctx, dayActivityFixture(s.ID, name))
		require.NoError(t, err)
	}

	s.CityName, s.CityPlaceID = "Rome", "rome-id"
	s.ClearLodging()
	updated, deleted, err := schedules.UpdateClearingAgenda(ctx, s)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, "Rome", updated.CityName)
	assert.Empty(t, updated.HotelID)

	left, err := activities.ListByScheduleID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestScheduleRepo_Delete_Cascades(t *testing.T) {
	tx := newTestTx(t)
	schedules := repo.NewScheduleRepo(tx)
	activities := repo.NewDayActivityRepo(tx)
	catalog := repo.NewActivityRepo(tx)
	favorites := repo.NewFavoriteRepo(tx)
	ctx := context.Background()

	s, err := schedules.Create(ctx, scheduleFixture("user-1"))
	require.NoError(t, err)

	planned, err := catalog.Upsert(ctx, domain.Activity{Name: "Museum", PlaceID: "museum-1", Type: "museum", Available: true})
	require.NoError(t, err)
	other, err := catalog.Upsert(ctx, domain.Activity{Name: "Park", PlaceID: "park-1", Type: "park", Available: true})
	require.NoError(t, err)

	da := dayActivityFixture(s.ID, "Museum")
	da.ActivityID = &planned.ID
	_, err = activities.Create(ctx, da)
	require.NoError(t, err)

	plannedFav, err := favorites.Create(ctx, "user-1", planned.ID)
	require.NoError(t, err)
	otherFav, err := favorites.Create(ctx, "user-1", other.ID)
	require.NoError(t, err)

	require.NoError(t, schedules.Delete(ctx, s.ID))

	_, err = schedules.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	left, err := activities.ListByScheduleID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = favorites.GetByID(ctx, plannedFav.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "favorite of a planned activity goes with the schedule")
	_, err = favorites.GetByID(ctx, otherFav.ID)
	assert.NoError(t, err, "unrelated favorites survive")
}

func TestScheduleRepo_Delete_NotFound(t *testing.T) {
	r := repo.NewScheduleRepo(newTestTx(t))

	err := r.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
