package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/pkordes/travel-agenda/internal/domain"
	"github.com/pkordes/travel-agenda/internal/repo"
)

// defaultTokenLifetime is assumed when the provider omits expires_in.
const defaultTokenLifetime = time.Hour

// TokenService manages the calendar credential of each user: storing the
// result of the consent flow, handing out valid access tokens, and refreshing
// them through the refresh-token grant.
type TokenService struct {
	tokens     repo.TokenRepo
	oauth      *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenService constructs a TokenService. httpClient is used for calls to
// the token endpoint; pass nil for http.DefaultClient.
func NewTokenService(tokens repo.TokenRepo, oauth *oauth2.Config, httpClient *http.Client) *TokenService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &TokenService{tokens: tokens, oauth: oauth, httpClient: httpClient, now: time.Now}
}

// ValidAccessToken returns an access token that stays valid for at least
// domain.TokenStaleAfter, refreshing it first when needed.
// Returns domain.ErrNoToken when there is nothing usable.
func (s *TokenService) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	if err := requireUser(userID); err != nil {
		return "", err
	}
	stored, err := s.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNoToken
		}
		return "", fmt.Errorf("service.TokenService.ValidAccessToken: %w", err)
	}
	if !stored.Stale(s.now()) {
		return stored.AccessToken, nil
	}

	refreshed, err := s.Refresh(ctx, userID)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. On any failure the stored record is left untouched and the
// error wraps domain.ErrNoToken.
func (s *TokenService) Refresh(ctx context.Context, userID string) (domain.ExternalToken, error) {
	stored, err := s.tokens.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ExternalToken{}, domain.ErrNoToken
		}
		return domain.ExternalToken{}, fmt.Errorf("service.TokenService.Refresh: %w", err)
	}
	if stored.RefreshToken == "" {
		return domain.ExternalToken{}, fmt.Errorf("%w: no refresh token stored", domain.ErrNoToken)
	}

	src := s.oauth.TokenSource(s.clientContext(ctx), &oauth2.Token{RefreshToken: stored.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("%w: refresh failed: %v", domain.ErrNoToken, err)
	}

	result, err := s.Store(ctx, userID, tok)
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("service.TokenService.Refresh: %w", err)
	}
	return result, nil
}

// HasUsableToken reports whether calendar calls can be made for userID
// without sending the user through the consent screen again.
func (s *TokenService) HasUsableToken(ctx context.Context, userID string) (bool, error) {
	_, err := s.ValidAccessToken(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNoToken):
		return false, nil
	default:
		return false, err
	}
}

// AuthCodeURL returns the consent screen URL. Offline access is requested so
// the provider issues a refresh token.
func (s *TokenService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the authorization code from the consent redirect for a
// token and stores it for userID.
func (s *TokenService) Exchange(ctx context.Context, userID, code string) (domain.ExternalToken, error) {
	if err := requireUser(userID); err != nil {
		return domain.ExternalToken{}, err
	}
	if strings.TrimSpace(code) == "" {
		return domain.ExternalToken{}, fmt.Errorf("%w: code is required", domain.ErrValidation)
	}
	tok, err := s.oauth.Exchange(s.clientContext(ctx), code)
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("%w: code exchange failed: %v", domain.ErrNoToken, err)
	}
	result, err := s.Store(ctx, userID, tok)
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("service.TokenService.Exchange: %w", err)
	}
	return result, nil
}

// Store persists tok for userID. An empty refresh token keeps the stored one.
func (s *TokenService) Store(ctx context.Context, userID string, tok *oauth2.Token) (domain.ExternalToken, error) {
	if tok == nil || tok.AccessToken == "" {
		return domain.ExternalToken{}, fmt.Errorf("%w: access token is required", domain.ErrValidation)
	}
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = s.now().Add(defaultTokenLifetime)
	}
	result, err := s.tokens.Upsert(ctx, domain.ExternalToken{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiry.UTC(),
	})
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("service.TokenService.Store: %w", err)
	}
	return result, nil
}

// Disconnect forgets the user's calendar credential.
func (s *TokenService) Disconnect(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.tokens.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service.TokenService.Disconnect: %w", err)
	}
	return nil
}

// clientContext makes the oauth2 package use our client and its timeout.
func (s *TokenService) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}
