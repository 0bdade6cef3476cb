package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/handler"
)

// mockAgendaServicer is a test double for handler.AgendaServicer.
type mockAgendaServicer struct {
	create     func(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error)
	bulkCreate func(ctx context.Context, userID string, scheduleID uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error)
	getByID    func(ctx context.Context, userID string, scheduleID, id uuid.UUID) (domain.DayActivity, error)
	list       func(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.DayActivity, error)
	dayView    func(ctx context.Context, userID string, scheduleID uuid.UUID, day time.Time) ([]domain.DayActivity, error)
	update     func(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error)
	delete     func(ctx context.Context, userID string, scheduleID, id uuid.UUID) error
	clear      func(ctx context.Context, userID string, scheduleID uuid.UUID) (int64, error)
}

func (m *mockAgendaServicer) Create(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error) {
	return m.create(ctx, userID, a)
}
func (m *mockAgendaServicer) BulkCreate(ctx context.Context, userID string, scheduleID uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error) {
	return m.bulkCreate(ctx, userID, scheduleID, items)
}
func (m *mockAgendaServicer) GetByID(ctx context.Context, userID string, scheduleID, id uuid.UUID) (domain.DayActivity, error) {
	return m.getByID(ctx, userID, scheduleID, id)
}
func (m *mockAgendaServicer) ListBySchedule(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.DayActivity, error) {
	return m.list(ctx, userID, scheduleID)
}
func (m *mockAgendaServicer) DayView(ctx context.Context, userID string, scheduleID uuid.UUID, day time.Time) ([]domain.DayActivity, error) {
	return m.dayView(ctx, userID, scheduleID, day)
}
func (m *mockAgendaServicer) Update(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error) {
	return m.update(ctx, userID, a)
}
func (m *mockAgendaServicer) Delete(ctx context.Context, userID string, scheduleID, id uuid.UUID) error {
	return m.delete(ctx, userID, scheduleID, id)
}
func (m *mockAgendaServicer) Clear(ctx context.Context, userID string, scheduleID uuid.UUID) (int64, error) {
	return m.clear(ctx, userID, scheduleID)
}

var _ handler.AgendaServicer = (*mockAgendaServicer)(nil)

func activityFixture(scheduleID uuid.UUID, name string, hour int) domain.DayActivity {
	d := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return domain.DayActivity{
		ID:         uuid.New(),
		ScheduleID: scheduleID,
		Name:       name,
		PlaceID:    "place-" + name,
		Type:       "museum",
		Date:       &d,
		StartHour:  hour,
		EndHour:    hour + 2,
		Available:  true,
	}
}

func agendaHandler(svc *mockAgendaServicer) http.Handler {
	return newHTTPHandler(handler.Deps{Agenda: svc})
}

func activitiesPath(scheduleID uuid.UUID) string {
	return "/schedules/" + scheduleID.String() + "/activities"
}

// ---- GET /schedules/{id}/activities ----------------------------------------

func TestListActivities_200(t *testing.T) {
	sid := uuid.New()
	svc := &mockAgendaServicer{
		list: func(_ context.Context, userID string, scheduleID uuid.UUID) ([]domain.DayActivity, error) {
			assert.Equal(t, owner, userID)
			assert.Equal(t, sid, scheduleID)
			return []domain.DayActivity{activityFixture(sid, "louvre", 9), activityFixture(sid, "orsay", 14)}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodGet, activitiesPath(sid), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[[]handler.DayActivity](t, rec)
	require.Len(t, resp, 2)
	assert.Equal(t, "louvre", resp[0].Name)
	require.NotNil(t, resp[0].Date)
	assert.Equal(t, "2025-06-02", resp[0].Date.String())
}

func TestListActivities_200_Empty(t *testing.T) {
	svc := &mockAgendaServicer{
		list: func(_ context.Context, _ string, _ uuid.UUID) ([]domain.DayActivity, error) {
			return []domain.DayActivity{}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodGet, activitiesPath(uuid.New()), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListActivities_ByDate(t *testing.T) {
	sid := uuid.New()
	svc := &mockAgendaServicer{
		dayView: func(_ context.Context, _ string, _ uuid.UUID, day time.Time) ([]domain.DayActivity, error) {
			assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), day)
			return []domain.DayActivity{activityFixture(sid, "louvre", 9)}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodGet, activitiesPath(sid)+"?date=2025-06-02", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.DayActivity](t, rec), 1)
}

func TestListActivities_400_BadDate(t *testing.T) {
	rec := do(t, agendaHandler(&mockAgendaServicer{}), http.MethodGet, activitiesPath(uuid.New())+"?date=02/06/2025", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- POST /schedules/{id}/activities ---------------------------------------

func TestCreateActivity_201(t *testing.T) {
	sid := uuid.New()
	svc := &mockAgendaServicer{
		create: func(_ context.Context, _ string, a domain.DayActivity) (domain.DayActivity, error) {
			assert.Equal(t, sid, a.ScheduleID)
			assert.True(t, a.Available, "available defaults to true")
			assert.Equal(t, 30, a.StartMinute)
			a.ID = uuid.New()
			return a, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(sid), map[string]any{
		"name":         "Louvre",
		"date":         "2025-06-02",
		"start_hour":   9,
		"start_minute": 30,
		"end_hour":     12,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[handler.DayActivity](t, rec)
	assert.Equal(t, "Louvre", resp.Name)
	assert.NotEqual(t, uuid.Nil, resp.ID)
}

func TestCreateActivity_422_OutsideRange(t *testing.T) {
	svc := &mockAgendaServicer{
		create: func(_ context.Context, _ string, _ domain.DayActivity) (domain.DayActivity, error) {
			return domain.DayActivity{}, fmt.Errorf("%w: date is outside the schedule", domain.ErrValidation)
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(uuid.New()), map[string]any{
		"name": "Louvre",
		"date": "2030-01-01",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "date is outside the schedule", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestCreateActivity_422_UnknownCatalogActivity(t *testing.T) {
	missing := uuid.New()
	svc := &mockAgendaServicer{
		create: func(_ context.Context, _ string, a domain.DayActivity) (domain.DayActivity, error) {
			require.NotNil(t, a.ActivityID)
			assert.Equal(t, missing, *a.ActivityID)
			return domain.DayActivity{}, fmt.Errorf("%w: activity %s does not exist", domain.ErrValidation, missing)
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(uuid.New()), map[string]any{
		"name":        "Louvre",
		"activity_id": missing.String(),
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))
}

// ---- POST /schedules/{id}/activities/bulk ----------------------------------

func TestBulkCreateActivities_207_PartialFailure(t *testing.T) {
	sid := uuid.New()
	svc := &mockAgendaServicer{
		bulkCreate: func(_ context.Context, _ string, scheduleID uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error) {
			require.Len(t, items, 2)
			return domain.BulkResult{
				Created: []domain.DayActivity{activityFixture(scheduleID, items[0].Name, 9)},
				Failed: []domain.BulkFailure{{
					Index: 1,
					Name:  items[1].Name,
					Err:   fmt.Errorf("%w: hours must be between 0 and 23", domain.ErrValidation),
				}},
			}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(sid)+"/bulk", map[string]any{
		"activities": []map[string]any{
			{"name": "louvre", "start_hour": 9},
			{"name": "night walk", "start_hour": 25},
		},
	})

	require.Equal(t, http.StatusMultiStatus, rec.Code)
	resp := decode[handler.BulkResponse](t, rec)
	assert.Len(t, resp.Created, 1)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, handler.BulkFailure{Index: 1, Name: "night walk", Message: "hours must be between 0 and 23"}, resp.Failed[0])
}

func TestBulkCreateActivities_StorageErrorNotLeaked(t *testing.T) {
	svc := &mockAgendaServicer{
		bulkCreate: func(_ context.Context, _ string, _ uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error) {
			return domain.BulkResult{
				Created: []domain.DayActivity{},
				Failed: []domain.BulkFailure{{
					Index: 0,
					Name:  items[0].Name,
					Err:   fmt.Errorf("repo.DayActivityRepo.Create: %w", errors.New("ERROR: violates foreign key constraint (SQLSTATE 23503)")),
				}},
			}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(uuid.New())+"/bulk", map[string]any{
		"activities": []map[string]any{{"name": "louvre"}},
	})

	require.Equal(t, http.StatusMultiStatus, rec.Code)
	resp := decode[handler.BulkResponse](t, rec)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "activity could not be saved", resp.Failed[0].Message)
	assert.NotContains(t, rec.Body.String(), "SQLSTATE")
	assert.NotContains(t, rec.Body.String(), "repo.")
}

func TestBulkCreateActivities_201_AllCreated(t *testing.T) {
	svc := &mockAgendaServicer{
		bulkCreate: func(_ context.Context, _ string, _ uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error) {
			return domain.BulkResult{Created: items, Failed: []domain.BulkFailure{}}, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPost, activitiesPath(uuid.New())+"/bulk", map[string]any{
		"activities": []map[string]any{{"name": "louvre"}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed":[]`)
}

// ---- PUT/DELETE /schedules/{id}/activities/{activityID} --------------------

func TestUpdateActivity_200(t *testing.T) {
	sid, aid := uuid.New(), uuid.New()
	svc := &mockAgendaServicer{
		update: func(_ context.Context, _ string, a domain.DayActivity) (domain.DayActivity, error) {
			assert.Equal(t, sid, a.ScheduleID)
			assert.Equal(t, aid, a.ID)
			assert.False(t, a.Available)
			return a, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodPut, activitiesPath(sid)+"/"+aid.String(), map[string]any{
		"name":      "Louvre",
		"available": false,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteActivity_404(t *testing.T) {
	svc := &mockAgendaServicer{
		delete: func(_ context.Context, _ string, _, _ uuid.UUID) error {
			return fmt.Errorf("repo.DayActivityRepo.Delete: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodDelete, activitiesPath(uuid.New())+"/"+uuid.NewString(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "activity not found", decode[handler.ErrorResponse](t, rec).Error.Message)
}

func TestGetActivity_200(t *testing.T) {
	sid := uuid.New()
	fixture := activityFixture(sid, "louvre", 9)
	svc := &mockAgendaServicer{
		getByID: func(_ context.Context, _ string, _, id uuid.UUID) (domain.DayActivity, error) {
			assert.Equal(t, fixture.ID, id)
			return fixture, nil
		},
	}

	rec := do(t, agendaHandler(svc), http.MethodGet, activitiesPath(sid)+"/"+fixture.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixture.ID, decode[handler.DayActivity](t, rec).ID)
}

// ---- DELETE /schedules/{id}/activities -------------------------------------

func TestClearActivities_200(t *testing.T) {
	svc := &mockAgendaServicer{
		clear: func(_ context.Context, _ string, _ uuid.UUID) (int64, error) { return 5, nil },
	}

	rec := do(t, agendaHandler(svc), http.MethodDelete, activitiesPath(uuid.New()), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), decode[handler.ClearResponse](t, rec).Removed)
}
