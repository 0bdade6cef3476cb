package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pkordes/travel-agenda/internal/middleware"
)

// stateLifetime bounds how long a consent screen may stay open.
const stateLifetime = 10 * time.Minute

// stateKeyLabel separates the state signing key from the API token key.
const stateKeyLabel = "travel-agenda/calendar-state/v1"

var errBadState = errors.New("invalid or expired state")

// CalendarConnection reports whether calendar export can run without consent.
type CalendarConnection struct {
	Connected bool `json:"connected"`
}

// ConnectURL is the consent screen the client should open.
type ConnectURL struct {
	URL string `json:"url"`
}

// CallbackRequest carries the values the provider appended to the redirect.
type CallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// GetCalendarConnection handles GET /calendar/connection.
func (s *Server) GetCalendarConnection(w http.ResponseWriter, r *http.Request) {
	if s.Calendar == nil {
		unavailable(w)
		return
	}
	ok, err := s.Calendar.HasUsableToken(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err, "calendar connection")
		return
	}
	writeJSON(w, http.StatusOK, CalendarConnection{Connected: ok})
}

// ConnectCalendar handles GET /calendar/connect. The state parameter is a
// short-lived token bound to the caller, checked again by the callback.
func (s *Server) ConnectCalendar(w http.ResponseWriter, r *http.Request) {
	if s.Calendar == nil {
		unavailable(w)
		return
	}
	state, err := s.signState(userID(r), time.Now())
	if err != nil {
		s.writeError(w, r, err, "calendar connection")
		return
	}
	writeJSON(w, http.StatusOK, ConnectURL{URL: s.Calendar.AuthCodeURL(state)})
}

// CalendarCallback handles POST /calendar/callback.
func (s *Server) CalendarCallback(w http.ResponseWriter, r *http.Request) {
	if s.Calendar == nil {
		unavailable(w)
		return
	}
	var body CallbackRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	if err := s.verifyState(body.State, userID(r)); err != nil {
		requestError(w, errBadState.Error())
		return
	}

	if _, err := s.Calendar.Exchange(r.Context(), userID(r), body.Code); err != nil {
		s.writeError(w, r, err, "calendar connection")
		return
	}
	writeJSON(w, http.StatusOK, CalendarConnection{Connected: true})
}

// DeleteCalendarConnection handles DELETE /calendar/connection.
func (s *Server) DeleteCalendarConnection(w http.ResponseWriter, r *http.Request) {
	if s.Calendar == nil {
		unavailable(w)
		return
	}
	if err := s.Calendar.Disconnect(r.Context(), userID(r)); err != nil {
		s.writeError(w, r, err, "calendar connection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) signState(userID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Audience:  jwt.ClaimStrings{middleware.CalendarStateAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateLifetime)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.stateKey())
}

func (s *Server) verifyState(raw, userID string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(middleware.CalendarStateAudience),
		jwt.WithExpirationRequired(),
	)
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.stateKey(), nil
	})
	if err != nil {
		return err
	}
	if claims.Subject != userID {
		return errBadState
	}
	return nil
}

// stateKey derives the state signing key from StateSecret, so a state token
// never verifies under the key the auth middleware uses.
func (s *Server) stateKey() []byte {
	mac := hmac.New(sha256.New, s.StateSecret)
	mac.Write([]byte(stateKeyLabel))
	return mac.Sum(nil)
}
