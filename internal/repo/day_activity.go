package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/travel-agenda/internal/domain"
)

// DayActivityRepo defines the persistence operations for the activities
// planned inside a schedule. Every lookup is scoped to its schedule.
type DayActivityRepo interface {
	Create(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error)

	// GetByID returns domain.ErrNotFound if the activity does not exist under scheduleID.
	GetByID(ctx context.Context, scheduleID, id uuid.UUID) (domain.DayActivity, error)

	// ListByScheduleID returns the schedule's activities ordered by date
	// (undated last), then start time.
	ListByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]domain.DayActivity, error)

	Update(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error)

	// Delete returns domain.ErrNotFound if the activity does not exist under scheduleID.
	Delete(ctx context.Context, scheduleID, id uuid.UUID) error

	// DeleteBySchedule removes every activity of the schedule in one statement
	// and returns how many rows were removed.
	DeleteBySchedule(ctx context.Context, scheduleID uuid.UUID) (int64, error)
}

// pgDayActivityRepo is the Postgres implementation of DayActivityRepo.
type pgDayActivityRepo struct {
	db db
}

// NewDayActivityRepo constructs a DayActivityRepo backed by the provided db connection.
func NewDayActivityRepo(db db) DayActivityRepo {
	return &pgDayActivityRepo{db: db}
}

// pgForeignKeyViolation is the SQLSTATE for a violated REFERENCES constraint.
const pgForeignKeyViolation = "23503"

const dayActivityColumns = `id, schedule_id, activity_id, name, place_id, type, date,
	start_hour, start_minute, end_hour, end_minute, notes, available,
	created_at, updated_at`

func (r *pgDayActivityRepo) Create(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error) {
	q := `
		INSERT INTO day_activities (schedule_id, activity_id, name, place_id, type, date,
			start_hour, start_minute, end_hour, end_minute, notes, available)
		VALUES (@schedule_id, @activity_id, @name, @place_id, @type, @date,
			@start_hour, @start_minute, @end_hour, @end_minute, @notes, @available)
		RETURNING ` + dayActivityColumns

	row := r.db.QueryRow(ctx, q, dayActivityArgs(a))
	result, err := scanDayActivity(row)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("repo.DayActivityRepo.Create: %w", translateActivityRef(err))
	}
	return result, nil
}

func (r *pgDayActivityRepo) GetByID(ctx context.Context, scheduleID, id uuid.UUID) (domain.DayActivity, error) {
	q := `
		SELECT ` + dayActivityColumns + `
		FROM day_activities
		WHERE id = @id AND schedule_id = @schedule_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "schedule_id": scheduleID})
	result, err := scanDayActivity(row)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("repo.DayActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDayActivityRepo) ListByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]domain.DayActivity, error) {
	q := `
		SELECT ` + dayActivityColumns + `
		FROM day_activities
		WHERE schedule_id = @schedule_id
		ORDER BY date NULLS LAST, start_hour, start_minute, created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"schedule_id": scheduleID})
	if err != nil {
		return nil, fmt.Errorf("repo.DayActivityRepo.ListByScheduleID: %w", err)
	}
	defer rows.Close()

	activities := []domain.DayActivity{}
	for rows.Next() {
		a, err := scanDayActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DayActivityRepo.ListByScheduleID: scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DayActivityRepo.ListByScheduleID: rows: %w", err)
	}
	return activities, nil
}

// Update overwrites the mutable fields. The schedule_id filter keeps an
// activity from being moved to another schedule.
func (r *pgDayActivityRepo) Update(ctx context.Context, a domain.DayActivity) (domain.DayActivity, error) {
	q := `
		UPDATE day_activities
		SET activity_id  = @activity_id,
		    name         = @name,
		    place_id     = @place_id,
		    type         = @type,
		    date         = @date,
		    start_hour   = @start_hour,
		    start_minute = @start_minute,
		    end_hour     = @end_hour,
		    end_minute   = @end_minute,
		    notes        = @notes,
		    available    = @available,
		    updated_at   = now()
		WHERE id = @id AND schedule_id = @schedule_id
		RETURNING ` + dayActivityColumns

	args := dayActivityArgs(a)
	args["id"] = a.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanDayActivity(row)
	if err != nil {
		return domain.DayActivity{}, fmt.Errorf("repo.DayActivityRepo.Update: %w", translateActivityRef(err))
	}
	return result, nil
}

func (r *pgDayActivityRepo) Delete(ctx context.Context, scheduleID, id uuid.UUID) error {
	const q = `DELETE FROM day_activities WHERE id = @id AND schedule_id = @schedule_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "schedule_id": scheduleID})
	if err != nil {
		return fmt.Errorf("repo.DayActivityRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DayActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgDayActivityRepo) DeleteBySchedule(ctx context.Context, scheduleID uuid.UUID) (int64, error) {
	n, err := deleteDayActivities(ctx, r.db, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("repo.DayActivityRepo.DeleteBySchedule: %w", err)
	}
	return n, nil
}

// deleteDayActivities is shared with ScheduleRepo.UpdateClearingAgenda.
func deleteDayActivities(ctx context.Context, db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}, scheduleID uuid.UUID) (int64, error) {
	const q = `DELETE FROM day_activities WHERE schedule_id = @schedule_id`

	tag, err := db.Exec(ctx, q, pgx.NamedArgs{"schedule_id": scheduleID})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func dayActivityArgs(a domain.DayActivity) pgx.NamedArgs {
	return pgx.NamedArgs{
		"schedule_id":  a.ScheduleID,
		"activity_id":  a.ActivityID, // nil becomes NULL
		"name":         a.Name,
		"place_id":     a.PlaceID,
		"type":         a.Type,
		"date":         a.Date,
		"start_hour":   a.StartHour,
		"start_minute": a.StartMinute,
		"end_hour":     a.EndHour,
		"end_minute":   a.EndMinute,
		"notes":        a.Notes,
		"available":    a.Available,
	}
}

// scanDayActivity maps a single database row into a domain.DayActivity.
func scanDayActivity(s scanner) (domain.DayActivity, error) {
	var (
		a                     domain.DayActivity
		id, scheduleID, actID pgtype.UUID
		date                  pgtype.Date
	)

	err := s.Scan(&id, &scheduleID, &actID, &a.Name, &a.PlaceID, &a.Type, &date,
		&a.StartHour, &a.StartMinute, &a.EndHour, &a.EndMinute, &a.Notes, &a.Available,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DayActivity{}, domain.ErrNotFound
		}
		return domain.DayActivity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.ScheduleID = uuid.UUID(scheduleID.Bytes)
	if actID.Valid {
		v := uuid.UUID(actID.Bytes)
		a.ActivityID = &v
	}
	a.Date = datePtr(date)
	return a, nil
}

// translateActivityRef turns a violated catalog reference into a validation
// error. It covers a catalog row removed between the service check and the write.
func translateActivityRef(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation &&
		strings.Contains(pgErr.ConstraintName, "activity_id") {
		return fmt.Errorf("%w: referenced activity does not exist", domain.ErrValidation)
	}
	return err
}
