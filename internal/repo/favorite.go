package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// FavoriteRepo defines the persistence operations for user favorites.
// Returned favorites always carry their catalog activity.
type FavoriteRepo interface {
	// Create links a user to an activity. Idempotent: an existing link is returned as is.
	Create(ctx context.Context, userID string, activityID uuid.UUID) (domain.Favorite, error)

	// GetByID returns domain.ErrNotFound if no favorite has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Favorite, error)

	// ListByUser returns the user's favorites, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)

	// Delete returns domain.ErrNotFound if no favorite has that id.
	Delete(ctx context.Context, id uuid.UUID) error
}

type pgFavoriteRepo struct {
	db db
}

// NewFavoriteRepo constructs a FavoriteRepo backed by the provided db connection.
func NewFavoriteRepo(db db) FavoriteRepo {
	return &pgFavoriteRepo{db: db}
}

const favoriteSelect = `
	SELECT f.id, f.user_id, f.activity_id, f.created_at,
	       a.id, a.name, a.place_id, a.type, a.available, a.created_at
	FROM favorites f
	JOIN activities a ON a.id = f.activity_id`

// Create uses the DO UPDATE SET no-op so RETURNING yields the row on conflict too.
func (r *pgFavoriteRepo) Create(ctx context.Context, userID string, activityID uuid.UUID) (domain.Favorite, error) {
	const q = `
		INSERT INTO favorites (user_id, activity_id)
		VALUES (@user_id, @activity_id)
		ON CONFLICT (user_id, activity_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	var id pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID, "activity_id": activityID}).Scan(&id)
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("repo.FavoriteRepo.Create: %w", err)
	}

	fav, err := r.GetByID(ctx, uuid.UUID(id.Bytes))
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("repo.FavoriteRepo.Create: %w", err)
	}
	return fav, nil
}

func (r *pgFavoriteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Favorite, error) {
	q := favoriteSelect + ` WHERE f.id = @id`

	result, err := scanFavorite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Favorite{}, fmt.Errorf("repo.FavoriteRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgFavoriteRepo) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	q := favoriteSelect + ` WHERE f.user_id = @user_id ORDER BY f.created_at DESC, f.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	favorites := []domain.Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.FavoriteRepo.ListByUser: scan: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.ListByUser: rows: %w", err)
	}
	return favorites, nil
}

func (r *pgFavoriteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM favorites WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.FavoriteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.FavoriteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanFavorite(s scanner) (domain.Favorite, error) {
	var (
		f                domain.Favorite
		id, actID, catID pgtype.UUID
	)
	err := s.Scan(&id, &f.UserID, &actID, &f.CreatedAt,
		&catID, &f.Activity.Name, &f.Activity.PlaceID, &f.Activity.Type, &f.Activity.Available, &f.Activity.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Favorite{}, domain.ErrNotFound
		}
		return domain.Favorite{}, err
	}
	f.ID = uuid.UUID(id.Bytes)
	f.ActivityID = uuid.UUID(actID.Bytes)
	f.Activity.ID = uuid.UUID(catID.Bytes)
	return f, nil
}
