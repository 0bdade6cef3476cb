package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// FavoriteService manages a user's bookmarked activities.
type FavoriteService struct {
	catalog   repo.ActivityRepo
	favorites repo.FavoriteRepo
}

// NewFavoriteService constructs a FavoriteService backed by the provided repos.
func NewFavoriteService(catalog repo.ActivityRepo, favorites repo.FavoriteRepo) *FavoriteService {
	return &FavoriteService{catalog: catalog, favorites: favorites}
}

// Add records the activity in the catalog, keyed by place id, and bookmarks
// it for userID. Adding the same place twice returns the existing favorite.
func (s *FavoriteService) Add(ctx context.Context, userID string, a domain.Activity) (domain.Favorite, error) {
	if err := requireUser(userID); err != nil {
		return domain.Favorite{}, err
	}
	if strings.TrimSpace(a.Name) == "" {
		return domain.Favorite{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if strings.TrimSpace(a.PlaceID) == "" {
		return domain.Favorite{}, fmt.Errorf("%w: place_id is required", domain.ErrValidation)
	}

	act, err := s.catalog.Upsert(ctx, a)
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("service.FavoriteService.Add: %w", err)
	}
	fav, err := s.favorites.Create(ctx, userID, act.ID)
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("service.FavoriteService.Add: %w", err)
	}
	return fav, nil
}

// List returns the user's favorites. Always returns a non-nil slice.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]domain.Favorite, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	favs, err := s.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	if favs == nil {
		return []domain.Favorite{}, nil
	}
	return favs, nil
}

// Delete removes a favorite owned by userID.
// Returns domain.ErrForbidden when it belongs to someone else.
func (s *FavoriteService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	fav, err := s.favorites.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.FavoriteService.Delete: %w", err)
	}
	if fav.UserID != userID {
		return fmt.Errorf("service.FavoriteService.Delete: %w", domain.ErrForbidden)
	}
	if err := s.favorites.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.FavoriteService.Delete: %w", err)
	}
	return nil
}
