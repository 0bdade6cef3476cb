package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// Activity is a catalog entry.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PlaceID   string    `json:"place_id"`
	Type      string    `json:"type"`
	Available bool      `json:"available"`
}

// Favorite is a bookmarked activity.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	Activity  Activity  `json:"activity"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteRequest is the body of POST /favorites.
type FavoriteRequest struct {
	Name      string `json:"name"`
	PlaceID   string `json:"place_id"`
	Type      string `json:"type"`
	Available *bool  `json:"available,omitempty"`
}

// ListFavorites handles GET /favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	if s.Favorites == nil {
		unavailable(w)
		return
	}
	favs, err := s.Favorites.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, "favorite")
		return
	}
	out := make([]Favorite, len(favs))
	for i, f := range favs {
		out[i] = favoriteToResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

// AddFavorite handles POST /favorites. Adding a place twice returns the
// existing favorite.
func (s *Server) AddFavorite(w http.ResponseWriter, r *http.Request) {
	if s.Favorites == nil {
		unavailable(w)
		return
	}
	var body FavoriteRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	a := domain.Activity{Name: body.Name, PlaceID: body.PlaceID, Type: body.Type, Available: true}
	if body.Available != nil {
		a.Available = *body.Available
	}

	fav, err := s.Favorites.Add(r.Context(), userID(r), a)
	if err != nil {
		s.writeError(w, r, err, "favorite")
		return
	}
	writeJSON(w, http.StatusCreated, favoriteToResponse(fav))
}

// DeleteFavorite handles DELETE /favorites/{id}.
func (s *Server) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	if s.Favorites == nil {
		unavailable(w)
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.Favorites.Delete(r.Context(), userID(r), id); err != nil {
		s.writeError(w, r, err, "favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func favoriteToResponse(f domain.Favorite) Favorite {
	return Favorite{
		ID: f.ID,
		Activity: Activity{
			ID:        f.Activity.ID,
			Name:      f.Activity.Name,
			PlaceID:   f.Activity.PlaceID,
			Type:      f.Activity.Type,
			Available: f.Activity.Available,
		},
		CreatedAt: f.CreatedAt,
	}
}
