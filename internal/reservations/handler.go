// Package reservations exposes the availability engine over HTTP.
package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/unit-availability/internal/audit"
	"github.com/wolfman30/unit-availability/internal/availability"
	"github.com/wolfman30/unit-availability/internal/snapshot"
	"github.com/wolfman30/unit-availability/internal/units"
	"github.com/wolfman30/unit-availability/pkg/logging"
)

var handlerTracer = otel.Tracer("availability.internal.reservations")

const (
	defaultLookaheadDays = 30
	defaultMaxRangeDays  = 366
	maxBodyBytes         = 1 << 16
	maxDecisionsLimit    = 500
)

// Units without a configured start interval offer quarter-hour starts.
const defaultStartInterval = availability.Interval15Minutes

// SnapshotLoader returns a validated snapshot of a unit's calendar.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, unitID uuid.UUID, from, to time.Time) (*snapshot.Snapshot, error)
}

// ConfigStore reads and writes unit reservation configuration.
type ConfigStore interface {
	Get(ctx context.Context, unitID string) (*snapshot.RawUnitConfig, error)
	Set(ctx context.Context, cfg *snapshot.RawUnitConfig) error
	Delete(ctx context.Context, unitID string) error
}

// MetricsRecorder observes availability decisions.
type MetricsRecorder interface {
	ObserveCheck(reservable bool, reasons []string)
	ObserveEvaluation(operation string, seconds float64)
}

// DecisionLog persists availability decisions and reads them back.
type DecisionLog interface {
	Record(ctx context.Context, d audit.Decision) error
	Recent(ctx context.Context, filter audit.Filter) ([]audit.Decision, error)
}

// HandlerConfig wires a Handler. Snapshots and Configs are required.
type HandlerConfig struct {
	Snapshots SnapshotLoader
	Configs   ConfigStore
	Metrics   MetricsRecorder
	Audit     DecisionLog
	Logger    *logging.Logger
	Now       func() time.Time

	DefaultLookaheadDays int
	MaxRangeDays         int
}

// Handler serves availability queries for reservation units.
type Handler struct {
	snapshots     SnapshotLoader
	configs       ConfigStore
	metrics       MetricsRecorder
	audit         DecisionLog
	logger        *logging.Logger
	now           func() time.Time
	lookaheadDays int
	maxRangeDays  int
}

// NewHandler creates a new availability HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Snapshots == nil || cfg.Configs == nil {
		panic("reservations: snapshot loader and config store required")
	}
	h := &Handler{
		snapshots:     cfg.Snapshots,
		configs:       cfg.Configs,
		metrics:       cfg.Metrics,
		audit:         cfg.Audit,
		logger:        cfg.Logger,
		now:           cfg.Now,
		lookaheadDays: cfg.DefaultLookaheadDays,
		maxRangeDays:  cfg.MaxRangeDays,
	}
	if h.metrics == nil {
		h.metrics = noopMetrics{}
	}
	if h.audit == nil {
		h.audit = noopAudit{}
	}
	if h.logger == nil {
		h.logger = logging.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.lookaheadDays <= 0 {
		h.lookaheadDays = defaultLookaheadDays
	}
	if h.maxRangeDays <= 0 {
		h.maxRangeDays = defaultMaxRangeDays
	}
	return h
}

// Routes returns a chi router with the per-unit availability routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/{unitID}", func(r chi.Router) {
		r.Get("/bookable", h.GetBookable)
		r.Get("/open-dates", h.GetOpenDates)
		r.Get("/start-times", h.GetStartTimes)
		r.Get("/shadows", h.GetShadows)
		r.Post("/check", h.PostCheck)
		r.Get("/config", h.GetConfig)
		r.Put("/config", h.PutConfig)
		r.Delete("/config", h.DeleteConfig)
		r.Get("/decisions", h.GetDecisions)
	})
	return r
}

// BookableResponse reports whether a unit accepts reservations at an instant.
type BookableResponse struct {
	UnitID               string    `json:"unit_id"`
	At                   time.Time `json:"at"`
	Bookable             bool      `json:"bookable"`
	BookingStartInFuture bool      `json:"booking_start_in_future"`
}

// GetBookable reports the unit's bookability.
// GET /units/{unitID}/bookable?at=
func (h *Handler) GetBookable(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	at, err := instantParam(r, "at", h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := h.startSpan(r.Context(), "reservations.bookable", unitID)
	defer span.End()

	started := time.Now()
	snap, ok := h.loadSnapshot(ctx, w, span, unitID, at, at.AddDate(0, 0, h.lookaheadDays))
	if !ok {
		return
	}
	resp := BookableResponse{
		UnitID:               unitID.String(),
		At:                   at,
		Bookable:             availability.IsUnitCurrentlyBookable(snap.Unit, at),
		BookingStartInFuture: availability.IsBookingStartInFuture(snap.Unit, at),
	}
	h.metrics.ObserveEvaluation("bookable", time.Since(started).Seconds())
	span.SetAttributes(attribute.Bool("availability.bookable", resp.Bookable))

	var reasons []string
	if !resp.Bookable {
		reasons = []string{string(availability.ReasonUnitNotBookable)}
	}
	h.recordDecision(ctx, unitID, audit.Decision{
		Operation:  audit.OperationBookable,
		Begin:      at,
		End:        at,
		Reservable: resp.Bookable,
		Reasons:    reasons,
	})

	writeJSON(w, h.logger, resp)
}

// OpenDatesResponse lists the dates with at least one reservable opening window.
type OpenDatesResponse struct {
	UnitID string   `json:"unit_id"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Dates  []string `json:"dates"`
}

// GetOpenDates lists reservable dates in [from, to].
// GET /units/{unitID}/open-dates?from=&to=
func (h *Handler) GetOpenDates(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	today := civil.DateOf(h.now())
	from, err := dateParam(r, "from", today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := dateParam(r, "to", from.AddDays(h.lookaheadDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}
	if to.DaysSince(from) > h.maxRangeDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("range exceeds %d days", h.maxRangeDays))
		return
	}

	ctx, span := h.startSpan(r.Context(), "reservations.open_dates", unitID)
	defer span.End()

	started := time.Now()
	loadFrom, loadTo := dayRange(from, to)
	snap, ok := h.loadSnapshot(ctx, w, span, unitID, loadFrom, loadTo)
	if !ok {
		return
	}

	dates := []string{}
	for _, d := range availability.OpenDates(snap.Unit.OpeningWindows) {
		if d.Before(from) || d.After(to) {
			continue
		}
		dates = append(dates, d.String())
	}
	h.metrics.ObserveEvaluation("open_dates", time.Since(started).Seconds())

	writeJSON(w, h.logger, OpenDatesResponse{
		UnitID: unitID.String(),
		From:   from.String(),
		To:     to.String(),
		Dates:  dates,
	})
}

// StartTimesResponse lists candidate start labels for one day.
type StartTimesResponse struct {
	UnitID     string   `json:"unit_id"`
	Date       string   `json:"date"`
	Interval   string   `json:"interval"`
	StartTimes []string `json:"start_times"`
}

// GetStartTimes lists the HH:MM start labels offered on a date.
// GET /units/{unitID}/start-times?date=
func (h *Handler) GetStartTimes(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("date") == "" {
		writeError(w, http.StatusBadRequest, "date required")
		return
	}
	day, err := dateParam(r, "date", civil.Date{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := h.startSpan(r.Context(), "reservations.start_times", unitID)
	defer span.End()
	span.SetAttributes(attribute.String("availability.date", day.String()))

	started := time.Now()
	loadFrom, loadTo := dayRange(day, day)
	snap, ok := h.loadSnapshot(ctx, w, span, unitID, loadFrom, loadTo)
	if !ok {
		return
	}

	interval := snap.Unit.Constraints.StartInterval.OrElse(defaultStartInterval)
	labels := availability.StartTimeLabels(day, snap.Unit.OpeningWindows, interval)
	if labels == nil {
		labels = []string{}
	}
	h.metrics.ObserveEvaluation("start_times", time.Since(started).Seconds())

	writeJSON(w, h.logger, StartTimesResponse{
		UnitID:     unitID.String(),
		Date:       day.String(),
		Interval:   interval.String(),
		StartTimes: labels,
	})
}

// ShadowResponse is one buffer pseudo-event for calendar rendering.
type ShadowResponse struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Side         string    `json:"side"`
	BookingBegin time.Time `json:"booking_begin"`
	BookingEnd   time.Time `json:"booking_end"`
}

// GetShadows returns the buffer shadows overlapping [from, to).
// GET /units/{unitID}/shadows?from=&to=
func (h *Handler) GetShadows(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	now := h.now()
	from, err := instantParam(r, "from", now)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := instantParam(r, "to", from.AddDate(0, 0, h.lookaheadDays))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}
	if to.Sub(from) > time.Duration(h.maxRangeDays)*24*time.Hour {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("range exceeds %d days", h.maxRangeDays))
		return
	}

	ctx, span := h.startSpan(r.Context(), "reservations.shadows", unitID)
	defer span.End()

	started := time.Now()
	snap, ok := h.loadSnapshot(ctx, w, span, unitID, from, to)
	if !ok {
		return
	}

	window := availability.TimeSlot{Start: from, End: to}
	out := []ShadowResponse{}
	for _, s := range snap.Shadows() {
		if !availability.DoBookingsOverlap(window, availability.TimeSlot{Start: s.Start, End: s.End}) {
			continue
		}
		out = append(out, ShadowResponse{
			Start:        s.Start,
			End:          s.End,
			Side:         string(s.Side),
			BookingBegin: s.Source.Begin,
			BookingEnd:   s.Source.End,
		})
	}
	h.metrics.ObserveEvaluation("shadows", time.Since(started).Seconds())
	span.SetAttributes(attribute.Int("availability.shadows", len(out)))

	writeJSON(w, h.logger, out)
}

// CheckRequest is the body of a reservation check. Buffers are in seconds.
type CheckRequest struct {
	Begin            string `json:"begin"`
	End              string `json:"end"`
	BufferTimeBefore *int64 `json:"bufferTimeBefore,omitempty"`
	BufferTimeAfter  *int64 `json:"bufferTimeAfter,omitempty"`
}

// CheckResponse carries the verdict of a reservation check.
type CheckResponse struct {
	UnitID     string   `json:"unit_id"`
	Reservable bool     `json:"reservable"`
	Reasons    []string `json:"reasons"`
}

// PostCheck evaluates whether a reservation could be submitted.
// POST /units/{unitID}/check
func (h *Handler) PostCheck(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var body CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := body.reservationRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := h.startSpan(r.Context(), "reservations.check", unitID)
	defer span.End()

	started := time.Now()
	loadFrom, loadTo := req.Begin, req.End
	if loadTo.Before(loadFrom) {
		loadFrom, loadTo = loadTo, loadFrom
	}
	snap, ok := h.loadSnapshot(ctx, w, span, unitID, loadFrom, loadTo)
	if !ok {
		return
	}

	verdict := snap.Check(req, h.now())
	reasons := reasonCodes(verdict.Reasons)

	h.metrics.ObserveEvaluation("check", time.Since(started).Seconds())
	h.metrics.ObserveCheck(verdict.Reservable, reasons)
	span.SetAttributes(
		attribute.Bool("availability.reservable", verdict.Reservable),
		attribute.StringSlice("availability.reasons", reasons),
	)

	h.recordDecision(ctx, unitID, audit.Decision{
		Operation:  audit.OperationCheck,
		Begin:      req.Begin,
		End:        req.End,
		Reservable: verdict.Reservable,
		Reasons:    reasons,
	})
	if !verdict.Reservable {
		h.logger.Debug("reservation rejected", "unit_id", unitID, "error", verdict.Err())
	}

	writeJSON(w, h.logger, CheckResponse{
		UnitID:     unitID.String(),
		Reservable: verdict.Reservable,
		Reasons:    reasons,
	})
}

func (b CheckRequest) reservationRequest() (availability.ReservationRequest, error) {
	begin, err := parseInstant("begin", b.Begin)
	if err != nil {
		return availability.ReservationRequest{}, err
	}
	end, err := parseInstant("end", b.End)
	if err != nil {
		return availability.ReservationRequest{}, err
	}
	before, err := bufferSeconds("bufferTimeBefore", b.BufferTimeBefore)
	if err != nil {
		return availability.ReservationRequest{}, err
	}
	after, err := bufferSeconds("bufferTimeAfter", b.BufferTimeAfter)
	if err != nil {
		return availability.ReservationRequest{}, err
	}
	return availability.ReservationRequest{Begin: begin, End: end, BufferBefore: before, BufferAfter: after}, nil
}

// GetConfig returns the stored reservation configuration of a unit.
// GET /units/{unitID}/config
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	cfg, err := h.configs.Get(r.Context(), unitID.String())
	if errors.Is(err, units.ErrUnitNotFound) {
		writeError(w, http.StatusNotFound, "unit not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get unit config", "unit_id", unitID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, h.logger, cfg)
}

// PutConfig replaces the reservation configuration of a unit.
// PUT /units/{unitID}/config
func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var cfg snapshot.RawUnitConfig
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cfg.ID = unitID.String()

	if err := h.configs.Set(r.Context(), &cfg); err != nil {
		if errors.Is(err, snapshot.ErrInvalid) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("failed to save unit config", "unit_id", unitID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save config")
		return
	}

	h.logger.Info("unit config updated", "unit_id", unitID, "start_interval", cfg.ReservationStartInterval)
	writeJSON(w, h.logger, cfg)
}

// DeleteConfig removes the reservation configuration of a unit.
// DELETE /units/{unitID}/config
func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	if err := h.configs.Delete(r.Context(), unitID.String()); err != nil {
		h.logger.Error("failed to delete unit config", "unit_id", unitID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete config")
		return
	}
	h.logger.Info("unit config deleted", "unit_id", unitID)
	w.WriteHeader(http.StatusNoContent)
}

// DecisionsResponse lists recorded availability decisions, newest first.
type DecisionsResponse struct {
	UnitID    string           `json:"unit_id"`
	Decisions []audit.Decision `json:"decisions"`
}

// GetDecisions returns the unit's recent availability decisions.
// GET /units/{unitID}/decisions?operation=&rejected=&since=&limit=
func (h *Handler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}
	filter, err := decisionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.UnitID = unitID.String()

	decisions, err := h.audit.Recent(r.Context(), filter)
	if errors.Is(err, audit.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, "decision audit disabled")
		return
	}
	if err != nil {
		h.logger.Error("failed to list availability decisions", "unit_id", unitID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if decisions == nil {
		decisions = []audit.Decision{}
	}
	writeJSON(w, h.logger, DecisionsResponse{UnitID: unitID.String(), Decisions: decisions})
}

// recordDecision stamps d with the unit, request and time and stores it. Failures are
// logged and never change the answer.
func (h *Handler) recordDecision(ctx context.Context, unitID uuid.UUID, d audit.Decision) {
	d.UnitID = unitID.String()
	d.RequestID = middleware.GetReqID(ctx)
	d.CreatedAt = h.now().UTC()
	if err := h.audit.Record(ctx, d); err != nil {
		h.logger.With("unit_id", unitID, "operation", d.Operation).
			Error("failed to record availability decision", "error", err)
	}
}

func (h *Handler) unitID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "unitID")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "unit_id required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unit_id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) startSpan(ctx context.Context, name string, unitID uuid.UUID) (context.Context, trace.Span) {
	return handlerTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("availability.unit_id", unitID.String()),
	))
}

// loadSnapshot writes the error response itself and reports false when loading failed.
func (h *Handler) loadSnapshot(ctx context.Context, w http.ResponseWriter, span trace.Span, unitID uuid.UUID, from, to time.Time) (*snapshot.Snapshot, bool) {
	snap, err := h.snapshots.Snapshot(ctx, unitID, from, to)
	if err == nil {
		return snap, true
	}
	span.RecordError(err)
	switch {
	case errors.Is(err, units.ErrUnitNotFound):
		writeError(w, http.StatusNotFound, "unit not found")
	case errors.Is(err, snapshot.ErrInvalid):
		h.logger.Error("unit calendar data invalid", "unit_id", unitID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "unit calendar data invalid")
	default:
		h.logger.Error("failed to load unit snapshot", "unit_id", unitID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
	return nil, false
}
