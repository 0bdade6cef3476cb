package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity provider.
// The subject is the user id.
type Claims struct {
	Username string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// CalendarStateAudience marks the short-lived OAuth state tokens handed to
// the calendar provider. They are never accepted as API credentials.
const CalendarStateAudience = "calendar-connect"

type (
	userKey     struct{}
	userSinkKey struct{}
)

type authUser struct {
	id       string
	username string
}

// NewAuthHandler returns a middleware that requires an HS256-signed bearer
// token. The token subject becomes the request's user id; requests without a
// valid token get 401.
func NewAuthHandler(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "bearer token required")
				return
			}

			var claims Claims
			token, err := parser.ParseWithClaims(strings.TrimSpace(raw), &claims, keyFunc)
			if err != nil || !token.Valid || claims.Subject == "" || slices.Contains(claims.Audience, CalendarStateAudience) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			if sink, ok := r.Context().Value(userSinkKey{}).(*string); ok {
				*sink = claims.Subject
			}
			ctx := context.WithValue(r.Context(), userKey{}, authUser{id: claims.Subject, username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, or "" outside an
// authenticated request.
func UserIDFromContext(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(authUser)
	return u.id
}

// UsernameFromContext returns the preferred_username claim, if any.
func UsernameFromContext(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(authUser)
	return u.username
}

// WithUserID returns a context carrying userID as the authenticated user.
// Handler tests use it to skip token signing.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, authUser{id: userID})
}

// withUserSink lets an outer middleware learn the user id resolved further
// down the chain.
func withUserSink(ctx context.Context, dst *string) context.Context {
	return context.WithValue(ctx, userSinkKey{}, dst)
}

// writeError writes the API error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
