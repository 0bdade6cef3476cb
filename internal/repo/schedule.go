// Package repo contains all database access logic for the travel agenda API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
// Begin on a pgx.Tx opens a savepoint, so multi-statement operations nest cleanly.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ScheduleRepo defines the persistence operations for Schedules.
type ScheduleRepo interface {
	// Create inserts a new schedule and returns the persisted record.
	Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error)

	// GetByID retrieves a single schedule by primary key.
	// Returns domain.ErrNotFound if no schedule with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error)

	// ListByUser returns all schedules owned by userID, oldest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Schedule, error)

	// ListByUserPaged returns one page of the user's schedules and the total count.
	ListByUserPaged(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Schedule, int64, error)

	// Update overwrites the mutable fields of an existing schedule.
	// Returns domain.ErrNotFound if no schedule with that ID exists.
	Update(ctx context.Context, s domain.Schedule) (domain.Schedule, error)

	// UpdateClearingAgenda updates the schedule and deletes all of its day
	// activities in one transaction. It returns the number of deleted activities.
	UpdateClearingAgenda(ctx context.Context, s domain.Schedule) (domain.Schedule, int64, error)

	// Delete removes a schedule, its day activities, and the owner's favorites
	// that point at activities planned in it, in one transaction.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgScheduleRepo is the Postgres implementation of ScheduleRepo.
type pgScheduleRepo struct {
	db db
}

// NewScheduleRepo constructs a ScheduleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewScheduleRepo(db db) ScheduleRepo {
	return &pgScheduleRepo{db: db}
}

const scheduleColumns = `id, user_id, name, start_date, end_date, nr_days,
	start_day, end_day, start_month, end_month, city_name, city_place_id,
	hotel_id, hotel_name, residence_lat, residence_lng, residence_address,
	created_at, updated_at`

// Create inserts a new schedule row and returns the full persisted record.
func (r *pgScheduleRepo) Create(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	q := `
		INSERT INTO schedules (user_id, name, start_date, end_date, nr_days,
			start_day, end_day, start_month, end_month, city_name, city_place_id,
			hotel_id, hotel_name, residence_lat, residence_lng, residence_address)
		VALUES (@user_id, @name, @start_date, @end_date, @nr_days,
			@start_day, @end_day, @start_month, @end_month, @city_name, @city_place_id,
			@hotel_id, @hotel_name, @residence_lat, @residence_lng, @residence_address)
		RETURNING ` + scheduleColumns

	row := r.db.QueryRow(ctx, q, scheduleArgs(s))
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a schedule by primary key.
func (r *pgScheduleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Schedule, error) {
	q := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanSchedule(row)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByUser returns the user's schedules ordered by creation time, then id.
func (r *pgScheduleRepo) ListByUser(ctx context.Context, userID string) ([]domain.Schedule, error) {
	q := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_id = @user_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.ListByUser: %w", err)
	}
	schedules, err := collectSchedules(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ScheduleRepo.ListByUser: %w", err)
	}
	return schedules, nil
}

// ListByUserPaged returns one page of the user's schedules plus the total count.
func (r *pgScheduleRepo) ListByUserPaged(ctx context.Context, userID string, p domain.PaginationParams) ([]domain.Schedule, int64, error) {
	const countQ = `SELECT count(*) FROM schedules WHERE user_id = @user_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": userID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.ScheduleRepo.ListByUserPaged: count: %w", err)
	}

	q := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_id = @user_id
		ORDER BY created_at, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ScheduleRepo.ListByUserPaged: %w", err)
	}
	schedules, err := collectSchedules(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ScheduleRepo.ListByUserPaged: %w", err)
	}
	return schedules, total, nil
}

// Update overwrites every mutable column. The owner never changes.
func (r *pgScheduleRepo) Update(ctx context.Context, s domain.Schedule) (domain.Schedule, error) {
	result, err := updateSchedule(ctx, r.db, s)
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("repo.ScheduleRepo.Update: %w", err)
	}
	return result, nil
}

// UpdateClearingAgenda runs the update and the agenda wipe in one transaction.
func (r *pgScheduleRepo) UpdateClearingAgenda(ctx context.Context, s domain.Schedule) (domain.Schedule, int64, error) {
	var (
		result  domain.Schedule
		deleted int64
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if result, err = updateSchedule(ctx, tx, s); err != nil {
			return err
		}
		deleted, err = deleteDayActivities(ctx, tx, s.ID)
		return err
	})
	if err != nil {
		return domain.Schedule{}, 0, fmt.Errorf("repo.ScheduleRepo.UpdateClearingAgenda: %w", err)
	}
	return result, deleted, nil
}

// Delete removes the owner's favorites for activities planned in the schedule,
// then the schedule itself. Day activities go with it via ON DELETE CASCADE.
func (r *pgScheduleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const favQ = `
		DELETE FROM favorites f
		USING schedules s
		WHERE s.id = @id
		  AND f.user_id = s.user_id
		  AND f.activity_id IN (
			SELECT activity_id FROM day_activities
			WHERE schedule_id = @id AND activity_id IS NOT NULL
		  )`
	const scheduleQ = `DELETE FROM schedules WHERE id = @id`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, favQ, pgx.NamedArgs{"id": id}); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, scheduleQ, pgx.NamedArgs{"id": id})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.ScheduleRepo.Delete: %w", err)
	}
	return nil
}

// updateSchedule is shared by Update and UpdateClearingAgenda so both run the
// same statement, on the pool or inside a transaction.
func updateSchedule(ctx context.Context, q interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}, s domain.Schedule) (domain.Schedule, error) {
	stmt := `
		UPDATE schedules
		SET name              = @name,
		    start_date        = @start_date,
		    end_date          = @end_date,
		    nr_days           = @nr_days,
		    start_day         = @start_day,
		    end_day           = @end_day,
		    start_month       = @start_month,
		    end_month         = @end_month,
		    city_name         = @city_name,
		    city_place_id     = @city_place_id,
		    hotel_id          = @hotel_id,
		    hotel_name        = @hotel_name,
		    residence_lat     = @residence_lat,
		    residence_lng     = @residence_lng,
		    residence_address = @residence_address,
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + scheduleColumns

	args := scheduleArgs(s)
	args["id"] = s.ID
	return scanSchedule(q.QueryRow(ctx, stmt, args))
}

func scheduleArgs(s domain.Schedule) pgx.NamedArgs {
	return pgx.NamedArgs{
		"user_id":           s.UserID,
		"name":              s.Name,
		"start_date":        s.StartDate, // nil becomes NULL
		"end_date":          s.EndDate,
		"nr_days":           s.NrDays,
		"start_day":         s.StartDay,
		"end_day":           s.EndDay,
		"start_month":       s.StartMonth,
		"end_month":         s.EndMonth,
		"city_name":         s.CityName,
		"city_place_id":     s.CityPlaceID,
		"hotel_id":          s.HotelID,
		"hotel_name":        s.HotelName,
		"residence_lat":     s.ResidenceLat,
		"residence_lng":     s.ResidenceLng,
		"residence_address": s.ResidenceAddress,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	defer rows.Close()

	schedules := []domain.Schedule{}
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return schedules, nil
}

// scanSchedule maps a single database row into a domain.Schedule.
func scanSchedule(sc scanner) (domain.Schedule, error) {
	var (
		s          domain.Schedule
		id         pgtype.UUID
		start, end pgtype.Date
		lat, lng   pgtype.Float8
	)

	err := sc.Scan(&id, &s.UserID, &s.Name, &start, &end, &s.NrDays,
		&s.StartDay, &s.EndDay, &s.StartMonth, &s.EndMonth, &s.CityName, &s.CityPlaceID,
		&s.HotelID, &s.HotelName, &lat, &lng, &s.ResidenceAddress,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Schedule{}, domain.ErrNotFound
		}
		return domain.Schedule{}, err
	}

	s.ID = uuid.UUID(id.Bytes)
	s.StartDate = datePtr(start)
	s.EndDate = datePtr(end)
	s.ResidenceLat = floatPtr(lat)
	s.ResidenceLng = floatPtr(lng)
	return s, nil
}

func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func floatPtr(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
