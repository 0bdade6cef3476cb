package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// TokenRepo defines the persistence operations for external calendar tokens.
// There is at most one row per user.
type TokenRepo interface {
	// Get returns domain.ErrNotFound if the user has no stored token.
	Get(ctx context.Context, userID string) (domain.ExternalToken, error)

	// Upsert writes the whole record in a single statement. An empty refresh
	// token keeps the stored one.
	Upsert(ctx context.Context, t domain.ExternalToken) (domain.ExternalToken, error)

	// Delete returns domain.ErrNotFound if the user has no stored token.
	Delete(ctx context.Context, userID string) error
}

type pgTokenRepo struct {
	db db
}

// NewTokenRepo constructs a TokenRepo backed by the provided db connection.
func NewTokenRepo(db db) TokenRepo {
	return &pgTokenRepo{db: db}
}

func (r *pgTokenRepo) Get(ctx context.Context, userID string) (domain.ExternalToken, error) {
	const q = `
		SELECT user_id, access_token, refresh_token, expires_at, created_at, updated_at
		FROM external_tokens
		WHERE user_id = @user_id`

	result, err := scanToken(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("repo.TokenRepo.Get: %w", err)
	}
	return result, nil
}

// Upsert is a single row write, so concurrent refreshes resolve as last writer wins.
func (r *pgTokenRepo) Upsert(ctx context.Context, t domain.ExternalToken) (domain.ExternalToken, error) {
	const q = `
		INSERT INTO external_tokens (user_id, access_token, refresh_token, expires_at)
		VALUES (@user_id, @access_token, @refresh_token, @expires_at)
		ON CONFLICT (user_id) DO UPDATE
		SET access_token  = EXCLUDED.access_token,
		    refresh_token = CASE WHEN EXCLUDED.refresh_token = ''
		                         THEN external_tokens.refresh_token
		                         ELSE EXCLUDED.refresh_token END,
		    expires_at    = EXCLUDED.expires_at,
		    updated_at    = now()
		RETURNING user_id, access_token, refresh_token, expires_at, created_at, updated_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id":       t.UserID,
		"access_token":  t.AccessToken,
		"refresh_token": t.RefreshToken,
		"expires_at":    t.ExpiresAt,
	})
	result, err := scanToken(row)
	if err != nil {
		return domain.ExternalToken{}, fmt.Errorf("repo.TokenRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgTokenRepo) Delete(ctx context.Context, userID string) error {
	const q = `DELETE FROM external_tokens WHERE user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TokenRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TokenRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanToken(s scanner) (domain.ExternalToken, error) {
	var t domain.ExternalToken
	err := s.Scan(&t.UserID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExternalToken{}, domain.ErrNotFound
		}
		return domain.ExternalToken{}, err
	}
	return t, nil
}
