// Package audit records availability decisions for later review.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Operation names the engine entry point that produced a decision.
type Operation string

const (
	OperationCheck    Operation = "check"
	OperationBookable Operation = "bookable"
)

// ErrDisabled is returned by Recent when no audit database is configured.
var ErrDisabled = errors.New("audit: decision log disabled")

// ParseOperation returns the Operation named by s.
func ParseOperation(s string) (Operation, bool) {
	switch op := Operation(s); op {
	case OperationCheck, OperationBookable:
		return op, true
	}
	return "", false
}

// Decision is one immutable audit record.
type Decision struct {
	ID         string    `json:"id"`
	UnitID     string    `json:"unit_id"`
	Operation  Operation `json:"operation"`
	Begin      time.Time `json:"begin"`
	End        time.Time `json:"end"`
	Reservable bool      `json:"reservable"`
	Reasons    []string  `json:"reasons,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows Recent queries.
type Filter struct {
	UnitID       string
	Operation    Operation
	RejectedOnly bool
	Since        time.Time
	Limit        int
}

const defaultRecentLimit = 50

// Service writes and reads the availability_decisions table.
type Service struct {
	db *sql.DB
}

// NewService creates a new audit service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record stores a decision, filling ID and CreatedAt when empty.
func (s *Service) Record(ctx context.Context, d Decision) error {
	if s == nil || s.db == nil {
		return nil
	}
	if d.UnitID == "" {
		return errors.New("audit: unit id required")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	reasons := d.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	query := `
		INSERT INTO availability_decisions (
			id, unit_id, operation, begin_at, end_at,
			reservable, reasons, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID,
		d.UnitID,
		string(d.Operation),
		d.Begin,
		d.End,
		d.Reservable,
		pq.Array(reasons),
		nullString(d.RequestID),
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record decision: %w", err)
	}
	return nil
}

// Recent returns decisions newest first.
func (s *Service) Recent(ctx context.Context, filter Filter) ([]Decision, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	query := `
		SELECT id, unit_id, operation, begin_at, end_at,
			   reservable, reasons, request_id, created_at
		FROM availability_decisions
		WHERE 1 = 1
	`
	var args []any
	argIdx := 1

	if filter.UnitID != "" {
		query += fmt.Sprintf(" AND unit_id = $%d", argIdx)
		args = append(args, filter.UnitID)
		argIdx++
	}
	if filter.Operation != "" {
		query += fmt.Sprintf(" AND operation = $%d", argIdx)
		args = append(args, string(filter.Operation))
		argIdx++
	}
	if filter.RejectedOnly {
		query += " AND reservable = false"
	}
	if !filter.Since.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.Since)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		var op string
		var reasons pq.StringArray
		var requestID sql.NullString
		if err := rows.Scan(
			&d.ID, &d.UnitID, &op, &d.Begin, &d.End,
			&d.Reservable, &reasons, &requestID, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan decision: %w", err)
		}
		d.Operation = Operation(op)
		d.Reasons = []string(reasons)
		d.RequestID = requestID.String
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate decisions: %w", err)
	}
	return decisions, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
