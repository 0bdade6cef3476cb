// Package handler implements the HTTP handlers for the travel agenda API.
// All handlers are methods on Server. They are split into resource files
// (schedule.go, agenda.go, places.go, ...) but share the Server struct so they
// can reach its dependencies.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// ScheduleServicer defines the business operations the schedule handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type ScheduleServicer interface {
	Create(ctx context.Context, userID string, sched domain.Schedule) (domain.Schedule, error)
	GetByID(ctx context.Context, userID string, id uuid.UUID) (domain.Schedule, error)
	ListByUserPaged(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Schedule, int64, error)
	Update(ctx context.Context, userID string, sched domain.Schedule) (domain.ScheduleChange, error)
	SetDates(ctx context.Context, userID string, id uuid.UUID, start, end time.Time) (domain.Schedule, error)
	SetCity(ctx context.Context, userID string, id uuid.UUID, cityName, cityPlaceID string) (domain.ScheduleChange, error)
	SetResidence(ctx context.Context, userID string, id uuid.UUID, r domain.Residence) (domain.Schedule, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// AgendaServicer defines the day activity operations.
type AgendaServicer interface {
	Create(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error)
	BulkCreate(ctx context.Context, userID string, scheduleID uuid.UUID, items []domain.DayActivity) (domain.BulkResult, error)
	GetByID(ctx context.Context, userID string, scheduleID, id uuid.UUID) (domain.DayActivity, error)
	ListBySchedule(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.DayActivity, error)
	DayView(ctx context.Context, userID string, scheduleID uuid.UUID, day time.Time) ([]domain.DayActivity, error)
	Update(ctx context.Context, userID string, a domain.DayActivity) (domain.DayActivity, error)
	Delete(ctx context.Context, userID string, scheduleID, id uuid.UUID) error
	Clear(ctx context.Context, userID string, scheduleID uuid.UUID) (int64, error)
}

// ExportServicer assembles agendas for download and calendar export.
type ExportServicer interface {
	Agenda(ctx context.Context, userID string, scheduleID uuid.UUID) (domain.Schedule, []domain.DayActivity, error)
	ExportToCalendar(ctx context.Context, userID string, scheduleID uuid.UUID) (domain.ExportResult, error)
}

// AgendaEncoder renders an agenda as an iCalendar document.
type AgendaEncoder interface {
	Encode(w io.Writer, sched domain.Schedule, activities []domain.DayActivity) error
}

// PlacesServicer defines the places lookups.
type PlacesServicer interface {
	CityDetails(ctx context.Context, placeID string) (domain.CityDetails, error)
	SearchByCategory(ctx context.Context, cityPlaceID, cityName, category string, maxResults int) ([]domain.Place, error)
	SearchText(ctx context.Context, query, cityPlaceID string) ([]domain.Place, error)
	HotelsForSchedule(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.Place, error)
	PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error)
	PhotoURL(photoReference string, maxWidth int) (string, error)
}

// ForecastServicer reports the weather at a schedule's destination.
type ForecastServicer interface {
	Forecast(ctx context.Context, userID string, scheduleID uuid.UUID, days int) (domain.Forecast, error)
}

// FavoriteServicer defines the favorites operations.
type FavoriteServicer interface {
	Add(ctx context.Context, userID string, a domain.Activity) (domain.Favorite, error)
	List(ctx context.Context, userID string) ([]domain.Favorite, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// UserInfoServicer maintains the caller's profile.
type UserInfoServicer interface {
	Save(ctx context.Context, userID, username string) (domain.UserInfo, error)
	Get(ctx context.Context, userID string) (domain.UserInfo, error)
}

// UserResolver looks users up by username.
type UserResolver interface {
	ResolveID(ctx context.Context, username string) (string, error)
}

// CalendarConnector is the consent-flow side of the token lifecycle.
type CalendarConnector interface {
	HasUsableToken(ctx context.Context, userID string) (bool, error)
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, userID, code string) (domain.ExternalToken, error)
	Disconnect(ctx context.Context, userID string) error
}

// Deps lists everything the Server needs. Nil services leave their routes
// answering 503.
type Deps struct {
	Schedules ScheduleServicer
	Agenda    AgendaServicer
	Export    ExportServicer
	ICS       AgendaEncoder
	Places    PlacesServicer
	Forecast  ForecastServicer
	Favorites FavoriteServicer
	Profiles  UserInfoServicer
	Users     UserResolver
	Calendar  CalendarConnector

	// StateSecret signs the OAuth state parameter.
	StateSecret []byte

	// OpenAPI is served verbatim at /openapi.yaml.
	OpenAPI []byte

	Logger *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	Deps
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Server{Deps: d}
}

// Routes mounts every endpoint on a chi router. auth guards everything
// except the health check and the API document.
func (s *Server) Routes(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", s.ListSchedules)
			r.Post("/", s.CreateSchedule)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSchedule)
				r.Put("/", s.UpdateSchedule)
				r.Delete("/", s.DeleteSchedule)
				r.Put("/dates", s.SetScheduleDates)
				r.Put("/city", s.SetScheduleCity)
				r.Put("/residence", s.SetScheduleResidence)

				r.Get("/activities", s.ListActivities)
				r.Post("/activities", s.CreateActivity)
				r.Post("/activities/bulk", s.BulkCreateActivities)
				r.Delete("/activities", s.ClearActivities)
				r.Get("/activities/{activityID}", s.GetActivity)
				r.Put("/activities/{activityID}", s.UpdateActivity)
				r.Delete("/activities/{activityID}", s.DeleteActivity)

				r.Get("/export", s.GetExport)
				r.Post("/export/calendar", s.ExportToCalendar)
				r.Get("/hotels", s.ListHotels)
				r.Get("/forecast", s.GetForecast)
			})
		})

		r.Route("/places", func(r chi.Router) {
			r.Get("/cities/{placeID}", s.GetCity)
			r.Get("/search", s.SearchPlaces)
			r.Get("/text", s.SearchPlacesText)
			r.Get("/photo", s.GetPhotoURL)
			r.Get("/{placeID}", s.GetPlace)
		})

		r.Get("/favorites", s.ListFavorites)
		r.Post("/favorites", s.AddFavorite)
		r.Delete("/favorites/{id}", s.DeleteFavorite)

		r.Get("/me", s.GetMe)
		r.Put("/me", s.PutMe)
		r.Get("/users/{username}", s.GetUser)

		r.Get("/calendar/connection", s.GetCalendarConnection)
		r.Delete("/calendar/connection", s.DeleteCalendarConnection)
		r.Get("/calendar/connect", s.ConnectCalendar)
		r.Post("/calendar/callback", s.CalendarCallback)
	})
	return r
}
