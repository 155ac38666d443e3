package units

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/unit-availability/internal/snapshot"
	"github.com/wolfman30/unit-availability/pkg/logging"
)

var unitsTracer = otel.Tracer("availability.internal.units")

// bufferMargin widens calendar reads so bookings just outside the requested range
// still contribute their buffers.
const bufferMargin = 24 * time.Hour

// ConfigSource returns a unit's stored reservation configuration.
type ConfigSource interface {
	Get(ctx context.Context, unitID string) (*snapshot.RawUnitConfig, error)
}

// CalendarSource returns a unit's calendar records.
type CalendarSource interface {
	OpeningHours(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawOpeningHours, error)
	Bookings(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawBooking, error)
	Blackouts(ctx context.Context, unitID uuid.UUID, from, to time.Time) ([]snapshot.RawBlackout, error)
}

// Service assembles validated snapshots for the availability engine.
type Service struct {
	configs  ConfigSource
	calendar CalendarSource
	logger   *logging.Logger
}

// NewService constructs a snapshot service.
func NewService(configs ConfigSource, calendar CalendarSource, logger *logging.Logger) *Service {
	if configs == nil || calendar == nil {
		panic("units: config and calendar sources required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{configs: configs, calendar: calendar, logger: logger}
}

// Snapshot loads and validates everything needed to evaluate unitID over [from, to).
func (s *Service) Snapshot(ctx context.Context, unitID uuid.UUID, from, to time.Time) (*snapshot.Snapshot, error) {
	ctx, span := unitsTracer.Start(ctx, "units.snapshot", trace.WithAttributes(
		attribute.String("availability.unit_id", unitID.String()),
		attribute.String("availability.from", from.Format(time.RFC3339)),
		attribute.String("availability.to", to.Format(time.RFC3339)),
	))
	defer span.End()

	raw, err := s.load(ctx, unitID, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	snap, err := snapshot.Decode(*raw)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("unit snapshot rejected", "unit_id", unitID, "error", err)
		return nil, fmt.Errorf("units: decode snapshot: %w", err)
	}

	span.SetAttributes(
		attribute.Int("availability.opening_windows", len(snap.Unit.OpeningWindows)),
		attribute.Int("availability.bookings", len(snap.Bookings)),
		attribute.Int("availability.dropped_opening_hours", snap.DroppedOpeningHours),
	)
	if snap.DroppedOpeningHours > 0 {
		s.logger.Warn("dropped malformed opening hours",
			"unit_id", unitID,
			"dropped", snap.DroppedOpeningHours,
		)
	}
	return snap, nil
}

func (s *Service) load(ctx context.Context, unitID uuid.UUID, from, to time.Time) (*snapshot.RawSnapshot, error) {
	cfg, err := s.configs.Get(ctx, unitID.String())
	if err != nil {
		return nil, err
	}
	hours, err := s.calendar.OpeningHours(ctx, unitID, from, to)
	if err != nil {
		return nil, err
	}
	bookings, err := s.calendar.Bookings(ctx, unitID, from.Add(-bufferMargin), to.Add(bufferMargin))
	if err != nil {
		return nil, err
	}
	blackouts, err := s.calendar.Blackouts(ctx, unitID, from, to)
	if err != nil {
		return nil, err
	}
	return &snapshot.RawSnapshot{
		Unit:         *cfg,
		OpeningHours: hours,
		Bookings:     bookings,
		Blackouts:    blackouts,
	}, nil
}
