package units

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/unit-availability/internal/snapshot"
)

type rowsQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads a unit's calendar. Rows come back as raw records so that
// snapshot.Decode stays the single validation point.
type Repository struct {
	db rowsQuerier
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("units: pgx pool required")
	}
	return &Repository{db: pool}
}

func newRepositoryWithQuerier(q rowsQuerier) *Repository {
	if q == nil {
		panic("units: querier required")
	}
	return &Repository{db: q}
}

// OpeningHours returns the opening periods of unitID that intersect [from, to).
func (r *Repository) OpeningHours(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawOpeningHours, error) {
	query := `
		SELECT date, start_time, end_time, is_reservable
		FROM opening_hours
		WHERE unit_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`
	rows, err := r.db.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("units: query opening hours: %w", err)
	}
	defer rows.Close()

	var out []snapshot.RawOpeningHours
	for rows.Next() {
		var (
			date, start, end time.Time
			reservable       bool
		)
		if err := rows.Scan(&date, &start, &end, &reservable); err != nil {
			return nil, fmt.Errorf("units: scan opening hours: %w", err)
		}
		out = append(out, snapshot.RawOpeningHours{
			Date:         date.Format(time.DateOnly),
			StartTime:    start.Format(time.RFC3339Nano),
			EndTime:      end.Format(time.RFC3339Nano),
			IsReservable: reservable,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("units: read opening hours: %w", err)
	}
	return out, nil
}

// Bookings returns the live (not cancelled or denied) bookings of unitID that
// intersect [from, to).
func (r *Repository) Bookings(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawBooking, error) {
	query := `
		SELECT begin_at, end_at, buffer_before_seconds, buffer_after_seconds
		FROM unit_bookings
		WHERE unit_id = $1 AND state NOT IN ('cancelled', 'denied')
		  AND begin_at < $3 AND end_at > $2
		ORDER BY begin_at
	`
	rows, err := r.db.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("units: query bookings: %w", err)
	}
	defer rows.Close()

	var out []snapshot.RawBooking
	for rows.Next() {
		var (
			begin, end    time.Time
			before, after *int64
		)
		if err := rows.Scan(&begin, &end, &before, &after); err != nil {
			return nil, fmt.Errorf("units: scan booking: %w", err)
		}
		out = append(out, snapshot.RawBooking{
			Begin:            begin.Format(time.RFC3339Nano),
			End:              end.Format(time.RFC3339Nano),
			BufferTimeBefore: before,
			BufferTimeAfter:  after,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("units: read bookings: %w", err)
	}
	return out, nil
}

// Blackouts returns the reservation periods of unitID that touch the dates of [from, to].
func (r *Repository) Blackouts(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawBlackout, error) {
	query := `
		SELECT period_begin, period_end
		FROM unit_blackouts
		WHERE unit_id = $1 AND period_begin <= $3::date AND period_end >= $2::date
		ORDER BY period_begin
	`
	rows, err := r.db.Query(ctx, query, unitID, from, to)
	if err != nil {
		return nil, fmt.Errorf("units: query blackouts: %w", err)
	}
	defer rows.Close()

	var out []snapshot.RawBlackout
	for rows.Next() {
		var begin, end time.Time
		if err := rows.Scan(&begin, &end); err != nil {
			return nil, fmt.Errorf("units: scan blackout: %w", err)
		}
		out = append(out, snapshot.RawBlackout{
			ReservationPeriodBegin: begin.Format(time.DateOnly),
			ReservationPeriodEnd:   end.Format(time.DateOnly),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("units: read blackouts: %w", err)
	}
	return out, nil
}
