package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// Result caps for the places endpoints.
const (
	defaultCategoryResults = 20
	maxCategoryResults     = 60
	hotelResults           = 20
	textSearchResults      = 50
	defaultPhotoWidth      = 400
)

// PlacesClient is the places lookup capability the service depends on.
// *places.Client satisfies it.
type PlacesClient interface {
	CityDetails(ctx context.Context, placeID string) (domain.CityDetails, error)
	SearchByCategory(ctx context.Context, cityPlaceID, cityName, category string, maxResults int) []domain.Place
	SearchText(ctx context.Context, query, cityPlaceID string, maxResults int) []domain.Place
	PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error)
	PhotoURL(photoReference string, maxWidth int) string
}

// PlacesService validates lookups and ties place searches to schedules.
type PlacesService struct {
	places    PlacesClient
	schedules repo.ScheduleRepo
}

// NewPlacesService constructs a PlacesService.
func NewPlacesService(places PlacesClient, schedules repo.ScheduleRepo) *PlacesService {
	return &PlacesService{places: places, schedules: schedules}
}

// CityDetails resolves a city by place id. Returns domain.ErrNotFound when
// the upstream API has nothing (or fails).
func (s *PlacesService) CityDetails(ctx context.Context, placeID string) (domain.CityDetails, error) {
	if strings.TrimSpace(placeID) == "" {
		return domain.CityDetails{}, fmt.Errorf("%w: place id is required", domain.ErrValidation)
	}
	city, err := s.places.CityDetails(ctx, placeID)
	if err != nil {
		return domain.CityDetails{}, fmt.Errorf("service.PlacesService.CityDetails: %w", err)
	}
	return city, nil
}

// SearchByCategory finds places of one category around a city.
// maxResults <= 0 selects the default; larger values are capped.
// An empty cityName makes the client use the resolved city's name.
func (s *PlacesService) SearchByCategory(ctx context.Context, cityPlaceID, cityName, category string, maxResults int) ([]domain.Place, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if strings.TrimSpace(cityPlaceID) == "" {
		return nil, fmt.Errorf("%w: city place id is required", domain.ErrValidation)
	}
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	switch {
	case maxResults <= 0:
		maxResults = defaultCategoryResults
	case maxResults > maxCategoryResults:
		maxResults = maxCategoryResults
	}
	return s.places.SearchByCategory(ctx, cityPlaceID, strings.TrimSpace(cityName), category, maxResults), nil
}

// SearchText runs a free-text search biased to the city.
func (s *PlacesService) SearchText(ctx context.Context, query, cityPlaceID string) ([]domain.Place, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}
	return s.places.SearchText(ctx, query, cityPlaceID, textSearchResults), nil
}

// HotelsForSchedule searches lodging in the schedule's city.
func (s *PlacesService) HotelsForSchedule(ctx context.Context, userID string, scheduleID uuid.UUID) ([]domain.Place, error) {
	sched, err := ownedSchedule(ctx, s.schedules, userID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("service.PlacesService.HotelsForSchedule: %w", err)
	}
	if sched.CityPlaceID == "" {
		return nil, fmt.Errorf("%w: schedule has no city selected", domain.ErrValidation)
	}
	return s.places.SearchByCategory(ctx, sched.CityPlaceID, sched.CityName, "lodging", hotelResults), nil
}

// PlaceDetails returns the full record of a place.
func (s *PlacesService) PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	if strings.TrimSpace(placeID) == "" {
		return domain.PlaceDetails{}, fmt.Errorf("%w: place id is required", domain.ErrValidation)
	}
	details, err := s.places.PlaceDetails(ctx, placeID)
	if err != nil {
		return domain.PlaceDetails{}, fmt.Errorf("service.PlacesService.PlaceDetails: %w", err)
	}
	return details, nil
}

// PhotoURL builds the URL of a place photo.
func (s *PlacesService) PhotoURL(photoReference string, maxWidth int) (string, error) {
	if strings.TrimSpace(photoReference) == "" {
		return "", fmt.Errorf("%w: photo reference is required", domain.ErrValidation)
	}
	if maxWidth <= 0 {
		maxWidth = defaultPhotoWidth
	}
	return s.places.PhotoURL(photoReference, maxWidth), nil
}
