package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// Schedule is the JSON form of domain.Schedule.
type Schedule struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	StartDate        *openapi_types.Date `json:"start_date,omitempty"`
	EndDate          *openapi_types.Date `json:"end_date,omitempty"`
	NrDays           int                 `json:"nr_days"`
	StartDay         int                 `json:"start_day"`
	EndDay           int                 `json:"end_day"`
	StartMonth       int                 `json:"start_month"`
	EndMonth         int                 `json:"end_month"`
	CityName         string              `json:"city_name"`
	CityPlaceID      string              `json:"city_place_id"`
	HotelID          string              `json:"hotel_id"`
	HotelName        string              `json:"hotel_name"`
	ResidenceLat     *float64            `json:"residence_lat,omitempty"`
	ResidenceLng     *float64            `json:"residence_lng,omitempty"`
	ResidenceAddress string              `json:"residence_address"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ScheduleRequest is the body of POST /schedules and PUT /schedules/{id}.
// A PUT replaces every field.
type ScheduleRequest struct {
	Name             string              `json:"name"`
	StartDate        *openapi_types.Date `json:"start_date,omitempty"`
	EndDate          *openapi_types.Date `json:"end_date,omitempty"`
	CityName         string              `json:"city_name"`
	CityPlaceID      string              `json:"city_place_id"`
	HotelID          string              `json:"hotel_id"`
	HotelName        string              `json:"hotel_name"`
	ResidenceLat     *float64            `json:"residence_lat,omitempty"`
	ResidenceLng     *float64            `json:"residence_lng,omitempty"`
	ResidenceAddress string              `json:"residence_address"`
}

// ScheduleChange reports an update. When city_changed is true the agenda and
// lodging were cleared.
type ScheduleChange struct {
	Schedule          Schedule `json:"schedule"`
	CityChanged       bool     `json:"city_changed"`
	RemovedActivities int64    `json:"removed_activities"`
}

// ScheduleList is one page of schedules.
type ScheduleList struct {
	Data       []Schedule `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// DatesRequest is the body of PUT /schedules/{id}/dates.
type DatesRequest struct {
	StartDate openapi_types.Date `json:"start_date"`
	EndDate   openapi_types.Date `json:"end_date"`
}

// CityRequest is the body of PUT /schedules/{id}/city.
type CityRequest struct {
	CityName    string `json:"city_name"`
	CityPlaceID string `json:"city_place_id"`
}

// ResidenceRequest is the body of PUT /schedules/{id}/residence.
type ResidenceRequest struct {
	HotelID   string   `json:"hotel_id"`
	HotelName string   `json:"hotel_name"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Address   string   `json:"address"`
}

// CreateSchedule handles POST /schedules.
func (s *Server) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	var body ScheduleRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	created, err := s.Schedules.Create(r.Context(), userID(r), requestToSchedule(uuid.Nil, body))
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusCreated, scheduleToResponse(created))
}

// ListSchedules handles GET /schedules.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListSchedules(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	page, ok := queryInt(w, r, "page")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	params := domain.NewPaginationParams(page, limit)

	schedules, total, err := s.Schedules.ListByUserPaged(r.Context(), userID(r), params)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}

	data := make([]Schedule, len(schedules))
	for i, sc := range schedules {
		data[i] = scheduleToResponse(sc)
	}
	writeJSON(w, http.StatusOK, ScheduleList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// GetSchedule handles GET /schedules/{id}.
func (s *Server) GetSchedule(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sched, err := s.Schedules.GetByID(r.Context(), userID(r), id)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(sched))
}

// UpdateSchedule handles PUT /schedules/{id}.
func (s *Server) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body ScheduleRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	change, err := s.Schedules.Update(r.Context(), userID(r), requestToSchedule(id, body))
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, changeToResponse(change))
}

// DeleteSchedule handles DELETE /schedules/{id}.
func (s *Server) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.Schedules.Delete(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetScheduleDates handles PUT /schedules/{id}/dates.
func (s *Server) SetScheduleDates(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body DatesRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.StartDate.IsZero() || body.EndDate.IsZero() {
		requestError(w, "start_date and end_date are required")
		return
	}

	sched, err := s.Schedules.SetDates(r.Context(), userID(r), id, body.StartDate.Time, body.EndDate.Time)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(sched))
}

// SetScheduleCity handles PUT /schedules/{id}/city.
func (s *Server) SetScheduleCity(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body CityRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	change, err := s.Schedules.SetCity(r.Context(), userID(r), id, body.CityName, body.CityPlaceID)
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, changeToResponse(change))
}

// SetScheduleResidence handles PUT /schedules/{id}/residence.
func (s *Server) SetScheduleResidence(w http.ResponseWriter, r *http.Request) {
	if s.Schedules == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body ResidenceRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	sched, err := s.Schedules.SetResidence(r.Context(), userID(r), id, domain.Residence{
		HotelID:   body.HotelID,
		HotelName: body.HotelName,
		Lat:       body.Lat,
		Lng:       body.Lng,
		Address:   body.Address,
	})
	if err != nil {
		s.writeError(w, r, err, "schedule")
		return
	}
	writeJSON(w, http.StatusOK, scheduleToResponse(sched))
}

// --- mapping helpers --------------------------------------------------------

// requestToSchedule builds a domain.Schedule from a request body, using id
// for updates.
func requestToSchedule(id uuid.UUID, body ScheduleRequest) domain.Schedule {
	sc := domain.Schedule{
		ID:               id,
		Name:             body.Name,
		CityName:         body.CityName,
		CityPlaceID:      body.CityPlaceID,
		HotelID:          body.HotelID,
		HotelName:        body.HotelName,
		ResidenceLat:     body.ResidenceLat,
		ResidenceLng:     body.ResidenceLng,
		ResidenceAddress: body.ResidenceAddress,
	}
	if body.StartDate != nil {
		sd := body.StartDate.Time
		sc.StartDate = &sd
	}
	if body.EndDate != nil {
		ed := body.EndDate.Time
		sc.EndDate = &ed
	}
	return sc
}

// scheduleToResponse converts a domain.Schedule into its JSON form.
func scheduleToResponse(sc domain.Schedule) Schedule {
	resp := Schedule{
		ID:               sc.ID,
		Name:             sc.Name,
		NrDays:           sc.NrDays,
		StartDay:         sc.StartDay,
		EndDay:           sc.EndDay,
		StartMonth:       sc.StartMonth,
		EndMonth:         sc.EndMonth,
		CityName:         sc.CityName,
		CityPlaceID:      sc.CityPlaceID,
		HotelID:          sc.HotelID,
		HotelName:        sc.HotelName,
		ResidenceLat:     sc.ResidenceLat,
		ResidenceLng:     sc.ResidenceLng,
		ResidenceAddress: sc.ResidenceAddress,
		CreatedAt:        sc.CreatedAt,
		UpdatedAt:        sc.UpdatedAt,
	}
	resp.StartDate = toDate(sc.StartDate)
	resp.EndDate = toDate(sc.EndDate)
	return resp
}

func changeToResponse(c domain.ScheduleChange) ScheduleChange {
	return ScheduleChange{
		Schedule:          scheduleToResponse(c.Schedule),
		CityChanged:       c.CityChanged,
		RemovedActivities: c.RemovedActivities,
	}
}

func toDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

// unavailable answers routes whose backing service is not configured
// (e.g. no places API key).
func unavailable(w http.ResponseWriter) {
	writeErrorBody(w, http.StatusServiceUnavailable, "unavailable", "this feature is not configured")
}
