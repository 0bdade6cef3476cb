package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// DayActivity is the JSON form of domain.DayActivity.
type DayActivity struct {
	ID          uuid.UUID           `json:"id"`
	ScheduleID  uuid.UUID           `json:"schedule_id"`
	ActivityID  *uuid.UUID          `json:"activity_id,omitempty"`
	Name        string              `json:"name"`
	PlaceID     string              `json:"place_id"`
	Type        string              `json:"type"`
	Date        *openapi_types.Date `json:"date,omitempty"`
	StartHour   int                 `json:"start_hour"`
	StartMinute int                 `json:"start_minute"`
	EndHour     int                 `json:"end_hour"`
	EndMinute   int                 `json:"end_minute"`
	Notes       string              `json:"notes"`
	Available   bool                `json:"available"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DayActivityRequest is the body for creating or replacing an activity.
type DayActivityRequest struct {
	ActivityID  *uuid.UUID          `json:"activity_id,omitempty"`
	Name        string              `json:"name"`
	PlaceID     string              `json:"place_id"`
	Type        string              `json:"type"`
	Date        *openapi_types.Date `json:"date,omitempty"`
	StartHour   int                 `json:"start_hour"`
	StartMinute int                 `json:"start_minute"`
	EndHour     int                 `json:"end_hour"`
	EndMinute   int                 `json:"end_minute"`
	Notes       string              `json:"notes"`
	Available   *bool               `json:"available,omitempty"`
}

// BulkRequest is the body of POST /schedules/{id}/activities/bulk.
type BulkRequest struct {
	Activities []DayActivityRequest `json:"activities"`
}

// BulkFailure reports one rejected item by its position in the request.
type BulkFailure struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// BulkResponse reports a bulk create. Items are independent: some may be
// created while others fail.
type BulkResponse struct {
	Created []DayActivity `json:"created"`
	Failed  []BulkFailure `json:"failed"`
}

// ClearResponse reports how many activities DELETE /schedules/{id}/activities removed.
type ClearResponse struct {
	Removed int64 `json:"removed"`
}

// ListActivities handles GET /schedules/{id}/activities.
// With ?date=YYYY-MM-DD only that day is returned, in start time order.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var (
		activities []domain.DayActivity
		err        error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		var day openapi_types.Date
		if perr := day.UnmarshalText([]byte(raw)); perr != nil {
			requestError(w, "date must be formatted as YYYY-MM-DD")
			return
		}
		activities, err = s.Agenda.DayView(r.Context(), userID(r), scheduleID, day.Time)
	} else {
		activities, err = s.Agenda.ListBySchedule(r.Context(), userID(r), scheduleID)
	}
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(activities))
}

// CreateActivity handles POST /schedules/{id}/activities.
func (s *Server) CreateActivity(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body DayActivityRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	created, err := s.Agenda.Create(r.Context(), userID(r), requestToActivity(scheduleID, uuid.Nil, body))
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusCreated, activityToResponse(created))
}

// BulkCreateActivities handles POST /schedules/{id}/activities/bulk.
// The response is 201 when everything was created and 207 otherwise.
func (s *Server) BulkCreateActivities(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body BulkRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	items := make([]domain.DayActivity, len(body.Activities))
	for i, a := range body.Activities {
		items[i] = requestToActivity(scheduleID, uuid.Nil, a)
	}
	result, err := s.Agenda.BulkCreate(r.Context(), userID(r), scheduleID, items)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}

	resp := BulkResponse{
		Created: activitiesToResponse(result.Created),
		Failed:  make([]BulkFailure, len(result.Failed)),
	}
	for i, f := range result.Failed {
		resp.Failed[i] = BulkFailure{Index: f.Index, Name: f.Name, Message: s.bulkFailureMessage(r, f)}
	}
	status := http.StatusCreated
	if len(resp.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// bulkFailureMessage exposes validation messages only. Anything else is
// logged and reported generically.
func (s *Server) bulkFailureMessage(r *http.Request, f domain.BulkFailure) string {
	if errors.Is(f.Err, domain.ErrValidation) {
		return unwrapMessage(f.Err)
	}
	s.Logger.ErrorContext(r.Context(), "bulk item failed", "path", r.URL.Path, "index", f.Index, "error", f.Err)
	return "activity could not be saved"
}

// GetActivity handles GET /schedules/{id}/activities/{activityID}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	a, err := s.Agenda.GetByID(r.Context(), userID(r), scheduleID, id)
	if err != nil {
		s.writeError(w, r, err, "activity")
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// UpdateActivity handles PUT /schedules/{id}/activities/{activityID}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}
	var body DayActivityRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	updated, err := s.Agenda.Update(r.Context(), userID(r), requestToActivity(scheduleID, id, body))
	if err != nil {
		s.writeError(w, r, err, "activity")
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(updated))
}

// DeleteActivity handles DELETE /schedules/{id}/activities/{activityID}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "activityID")
	if !ok {
		return
	}

	if err := s.Agenda.Delete(r.Context(), userID(r), scheduleID, id); err != nil {
		s.writeError(w, r, err, "activity")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearActivities handles DELETE /schedules/{id}/activities.
func (s *Server) ClearActivities(w http.ResponseWriter, r *http.Request) {
	if s.Agenda == nil {
		unavailable(w)
		return
	}
	scheduleID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	n, err := s.Agenda.Clear(r.Context(), userID(r), scheduleID)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{Removed: n})
}

// --- mapping helpers --------------------------------------------------------

// requestToActivity builds a domain.DayActivity. Available defaults to true.
func requestToActivity(scheduleID, id uuid.UUID, body DayActivityRequest) domain.DayActivity {
	a := domain.DayActivity{
		ID:          id,
		ScheduleID:  scheduleID,
		ActivityID:  body.ActivityID,
		Name:        body.Name,
		PlaceID:     body.PlaceID,
		Type:        body.Type,
		StartHour:   body.StartHour,
		StartMinute: body.StartMinute,
		EndHour:     body.EndHour,
		EndMinute:   body.EndMinute,
		Notes:       body.Notes,
		Available:   true,
	}
	if body.Available != nil {
		a.Available = *body.Available
	}
	if body.Date != nil {
		d := body.Date.Time
		a.Date = &d
	}
	return a
}

func activityToResponse(a domain.DayActivity) DayActivity {
	return DayActivity{
		ID:          a.ID,
		ScheduleID:  a.ScheduleID,
		ActivityID:  a.ActivityID,
		Name:        a.Name,
		PlaceID:     a.PlaceID,
		Type:        a.Type,
		Date:        toDate(a.Date),
		StartHour:   a.StartHour,
		StartMinute: a.StartMinute,
		EndHour:     a.EndHour,
		EndMinute:   a.EndMinute,
		Notes:       a.Notes,
		Available:   a.Available,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// activitiesToResponse never returns nil so the JSON is [] rather than null.
func activitiesToResponse(in []domain.DayActivity) []DayActivity {
	out := make([]DayActivity, len(in))
	for i, a := range in {
		out[i] = activityToResponse(a)
	}
	return out
}
