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

// ActivityRepo defines the persistence operations for the activity catalog.
type ActivityRepo interface {
	// Upsert inserts an activity keyed by place id, or refreshes the name,
	// type and availability of the existing row.
	Upsert(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetByID returns domain.ErrNotFound if no activity has that id.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error)
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

func (r *pgActivityRepo) Upsert(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (name, place_id, type, available)
		VALUES (@name, @place_id, @type, @available)
		ON CONFLICT (place_id) DO UPDATE
		SET name = EXCLUDED.name, type = EXCLUDED.type, available = EXCLUDED.available
		RETURNING id, name, place_id, type, available, created_at`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":      a.Name,
		"place_id":  a.PlaceID,
		"type":      a.Type,
		"available": a.Available,
	})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `
		SELECT id, name, place_id, type, available, created_at
		FROM activities
		WHERE id = @id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a  domain.Activity
		id pgtype.UUID
	)
	err := s.Scan(&id, &a.Name, &a.PlaceID, &a.Type, &a.Available, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}
	a.ID = uuid.UUID(id.Bytes)
	return a, nil
}
