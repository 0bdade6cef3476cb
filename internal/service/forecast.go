package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// WeatherClient fetches forecasts. *weather.Client satisfies it.
type WeatherClient interface {
	Forecast(ctx context.Context, query string, days int) (domain.Forecast, error)
}

// ForecastService reports the weather at a schedule's destination.
type ForecastService struct {
	schedules repo.ScheduleRepo
	weather   WeatherClient
}

// NewForecastService constructs a ForecastService.
func NewForecastService(schedules repo.ScheduleRepo, weather WeatherClient) *ForecastService {
	return &ForecastService{schedules: schedules, weather: weather}
}

// Forecast looks up the weather at the residence when its coordinates are
// known, otherwise at the city.
func (s *ForecastService) Forecast(ctx context.Context, userID string, scheduleID uuid.UUID, days int) (domain.Forecast, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, scheduleID)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("service.ForecastService.Forecast: %w", err)
	}
	if !sched.HasCity() {
		return domain.Forecast{}, fmt.Errorf("%w: schedule has no city selected", domain.ErrValidation)
	}

	query := sched.CityName
	if sched.ResidenceLat != nil && sched.ResidenceLng != nil {
		query = strconv.FormatFloat(*sched.ResidenceLat, 'f', 6, 64) + "," +
			strconv.FormatFloat(*sched.ResidenceLng, 'f', 6, 64)
	}

	forecast, err := s.weather.Forecast(ctx, query, days)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("service.ForecastService.Forecast: %w", err)
	}
	return forecast, nil
}
