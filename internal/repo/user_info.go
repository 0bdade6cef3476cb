package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// UserInfoRepo defines the persistence operations for the username cache.
type UserInfoRepo interface {
	// Upsert stores the username for userID, replacing any previous value.
	Upsert(ctx context.Context, info domain.UserInfo) (domain.UserInfo, error)

	// GetByUserID returns domain.ErrNotFound if the user has no profile row.
	GetByUserID(ctx context.Context, userID string) (domain.UserInfo, error)

	// GetByUsername matches case-insensitively.
	// Returns domain.ErrNotFound if no profile carries that username.
	GetByUsername(ctx context.Context, username string) (domain.UserInfo, error)
}

type pgUserInfoRepo struct {
	db db
}

// NewUserInfoRepo constructs a UserInfoRepo backed by the provided db connection.
func NewUserInfoRepo(db db) UserInfoRepo {
	return &pgUserInfoRepo{db: db}
}

func (r *pgUserInfoRepo) Upsert(ctx context.Context, info domain.UserInfo) (domain.UserInfo, error) {
	const q = `
		INSERT INTO user_infos (user_id, username)
		VALUES (@user_id, @username)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = now()
		RETURNING user_id, username, created_at, updated_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": info.UserID, "username": info.Username})
	result, err := scanUserInfo(row)
	if err != nil {
		return domain.UserInfo{}, fmt.Errorf("repo.UserInfoRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgUserInfoRepo) GetByUserID(ctx context.Context, userID string) (domain.UserInfo, error) {
	const q = `
		SELECT user_id, username, created_at, updated_at
		FROM user_infos
		WHERE user_id = @user_id`

	result, err := scanUserInfo(r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID}))
	if err != nil {
		return domain.UserInfo{}, fmt.Errorf("repo.UserInfoRepo.GetByUserID: %w", err)
	}
	return result, nil
}

func (r *pgUserInfoRepo) GetByUsername(ctx context.Context, username string) (domain.UserInfo, error) {
	const q = `
		SELECT user_id, username, created_at, updated_at
		FROM user_infos
		WHERE lower(username) = lower(@username)`

	result, err := scanUserInfo(r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}))
	if err != nil {
		return domain.UserInfo{}, fmt.Errorf("repo.UserInfoRepo.GetByUsername: %w", err)
	}
	return result, nil
}

func scanUserInfo(s scanner) (domain.UserInfo, error) {
	var u domain.UserInfo
	if err := s.Scan(&u.UserID, &u.Username, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserInfo{}, domain.ErrNotFound
		}
		return domain.UserInfo{}, err
	}
	return u, nil
}
