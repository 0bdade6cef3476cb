package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/middleware"
)

// UserInfo is the caller's profile.
type UserInfo struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInfoRequest is the body of PUT /me. An empty username falls back to
// the preferred_username claim of the bearer token.
type UserInfoRequest struct {
	Username string `json:"username"`
}

// UserRef identifies a user by id.
type UserRef struct {
	UserID string `json:"user_id"`
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	if s.Profiles == nil {
		unavailable(w)
		return
	}
	info, err := s.Profiles.Get(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, userInfoToResponse(info))
}

// PutMe handles PUT /me.
func (s *Server) PutMe(w http.ResponseWriter, r *http.Request) {
	if s.Profiles == nil {
		unavailable(w)
		return
	}
	var body UserInfoRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	username := body.Username
	if username == "" {
		username = middleware.UsernameFromContext(r.Context())
	}

	info, err := s.Profiles.Save(r.Context(), userID(r), username)
	if err != nil {
		s.writeError(w, r, err, "profile")
		return
	}
	writeJSON(w, http.StatusOK, userInfoToResponse(info))
}

// GetUser handles GET /users/{username}.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	if s.Users == nil {
		unavailable(w)
		return
	}
	id, err := s.Users.ResolveID(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, UserRef{UserID: id})
}

func userInfoToResponse(u domain.UserInfo) UserInfo {
	return UserInfo{UserID: u.UserID, Username: u.Username, UpdatedAt: u.UpdatedAt}
}
