// Package snapshot converts the raw calendar records produced by the query layer into
// the validated value types the availability engine evaluates. Validation happens once
// here so the engine never has to second-guess its inputs.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/wolfman30/unit-availability/internal/availability"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("snapshot: invalid record")

// RawOpeningHours is one opening period as served by the query layer.
type RawOpeningHours struct {
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	IsReservable bool   `json:"isReservable"`
}

// RawBooking is an existing reservation. Buffers are in seconds.
type RawBooking struct {
	Begin            string `json:"begin"`
	End              string `json:"end"`
	BufferTimeBefore *int64 `json:"bufferTimeBefore,omitempty"`
	BufferTimeAfter  *int64 `json:"bufferTimeAfter,omitempty"`
}

// RawUnitConfig is the reservation configuration of a unit. Durations are in seconds.
type RawUnitConfig struct {
	ID                        string   `json:"id"`
	MinReservationDuration    *int64   `json:"minReservationDuration,omitempty"`
	MaxReservationDuration    *int64   `json:"maxReservationDuration,omitempty"`
	ReservationBegins         *string  `json:"reservationBegins,omitempty"`
	ReservationEnds           *string  `json:"reservationEnds,omitempty"`
	ReservationsMinDaysBefore *int     `json:"reservationsMinDaysBefore,omitempty"`
	ReservationsMaxDaysBefore *int     `json:"reservationsMaxDaysBefore,omitempty"`
	ReservationStartInterval  string   `json:"reservationStartInterval,omitempty"`
	MetadataFields            []string `json:"metadataFields,omitempty"`
}

// RawBlackout is a reservation period closed to direct booking, as YYYY-MM-DD dates.
type RawBlackout struct {
	ReservationPeriodBegin string `json:"reservationPeriodBegin"`
	ReservationPeriodEnd   string `json:"reservationPeriodEnd"`
}

// RawSnapshot bundles everything fetched for one evaluation.
type RawSnapshot struct {
	Unit         RawUnitConfig     `json:"reservationUnit"`
	OpeningHours []RawOpeningHours `json:"openingHours"`
	Bookings     []RawBooking      `json:"reservations"`
	Blackouts    []RawBlackout     `json:"reservationPeriods"`
}

// Snapshot is the validated, immutable input of one evaluation.
type Snapshot struct {
	Unit      availability.Unit
	Bookings  []availability.ExistingBooking
	Blackouts []availability.Blackout
	// DroppedOpeningHours counts malformed opening-hours records that were skipped.
	DroppedOpeningHours int
}

// DecodeJSON parses and validates a JSON encoded RawSnapshot.
func DecodeJSON(data []byte) (*Snapshot, error) {
	var raw RawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return Decode(raw)
}

// Decode validates raw. Malformed opening hours are dropped and counted, since a
// missing window only makes slots unavailable; malformed bookings, blackouts or unit
// configuration are errors because ignoring them could allow a double booking.
func Decode(raw RawSnapshot) (*Snapshot, error) {
	unit, err := DecodeUnit(raw.Unit)
	if err != nil {
		return nil, err
	}
	windows, dropped := DecodeOpeningHours(raw.OpeningHours)
	unit.OpeningWindows = windows

	bookings, err := DecodeBookings(raw.Bookings)
	if err != nil {
		return nil, err
	}
	blackouts, err := DecodeBlackouts(raw.Blackouts)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Unit:                unit,
		Bookings:            bookings,
		Blackouts:           blackouts,
		DroppedOpeningHours: dropped,
	}, nil
}

// DecodeUnit validates a unit configuration. Opening windows are left empty.
func DecodeUnit(raw RawUnitConfig) (availability.Unit, error) {
	var c availability.UnitConstraints

	minDuration, err := optionalSeconds("minReservationDuration", raw.MinReservationDuration)
	if err != nil {
		return availability.Unit{}, err
	}
	maxDuration, err := optionalSeconds("maxReservationDuration", raw.MaxReservationDuration)
	if err != nil {
		return availability.Unit{}, err
	}
	c.MinDuration, c.MaxDuration = minDuration, maxDuration

	if c.WindowBegin, err = optionalInstant("reservationBegins", raw.ReservationBegins); err != nil {
		return availability.Unit{}, err
	}
	if c.WindowEnd, err = optionalInstant("reservationEnds", raw.ReservationEnds); err != nil {
		return availability.Unit{}, err
	}
	if raw.ReservationsMinDaysBefore != nil {
		c.LeadDays = availability.Some(*raw.ReservationsMinDaysBefore)
	}
	if raw.ReservationsMaxDaysBefore != nil {
		c.LagDays = availability.Some(*raw.ReservationsMaxDaysBefore)
	}
	if s := strings.TrimSpace(raw.ReservationStartInterval); s != "" {
		interval, ok := availability.ParseStartInterval(s)
		if !ok {
			return availability.Unit{}, fmt.Errorf("%w: reservationStartInterval %q", ErrInvalid, s)
		}
		c.StartInterval = availability.Some(interval)
	}

	var fields []string
	for _, f := range raw.MetadataFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}

	return availability.Unit{ID: raw.ID, Constraints: c, SupportedFields: fields}, nil
}

// DecodeOpeningHours keeps the well-formed records and reports how many were dropped.
func DecodeOpeningHours(raw []RawOpeningHours) ([]availability.OpeningWindow, int) {
	windows := make([]availability.OpeningWindow, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		w, err := decodeOpeningHours(r)
		if err != nil {
			dropped++
			continue
		}
		windows = append(windows, w)
	}
	return windows, dropped
}

func decodeOpeningHours(r RawOpeningHours) (availability.OpeningWindow, error) {
	start, err := parseInstant(r.StartTime)
	if err != nil {
		return availability.OpeningWindow{}, err
	}
	end, err := parseInstant(r.EndTime)
	if err != nil {
		return availability.OpeningWindow{}, err
	}
	if !start.Before(end) {
		return availability.OpeningWindow{}, fmt.Errorf("%w: opening hours end before start", ErrInvalid)
	}
	date := civil.DateOf(start)
	if s := strings.TrimSpace(r.Date); s != "" {
		if date, err = civil.ParseDate(s); err != nil {
			return availability.OpeningWindow{}, fmt.Errorf("%w: opening hours date %q", ErrInvalid, s)
		}
	}
	return availability.OpeningWindow{Date: date, Start: start, End: end, IsReservable: r.IsReservable}, nil
}

// DecodeBookings validates every booking; the first bad record fails the batch.
func DecodeBookings(raw []RawBooking) ([]availability.ExistingBooking, error) {
	bookings := make([]availability.ExistingBooking, 0, len(raw))
	for i, r := range raw {
		begin, err := parseInstant(r.Begin)
		if err != nil {
			return nil, fmt.Errorf("snapshot: booking %d begin: %w", i, err)
		}
		end, err := parseInstant(r.End)
		if err != nil {
			return nil, fmt.Errorf("snapshot: booking %d end: %w", i, err)
		}
		if !begin.Before(end) {
			return nil, fmt.Errorf("%w: booking %d ends before it begins", ErrInvalid, i)
		}
		before, err := optionalSeconds("bufferTimeBefore", r.BufferTimeBefore)
		if err != nil {
			return nil, fmt.Errorf("snapshot: booking %d: %w", i, err)
		}
		after, err := optionalSeconds("bufferTimeAfter", r.BufferTimeAfter)
		if err != nil {
			return nil, fmt.Errorf("snapshot: booking %d: %w", i, err)
		}
		bookings = append(bookings, availability.ExistingBooking{
			Begin:        begin,
			End:          end,
			BufferBefore: before.OrElse(0),
			BufferAfter:  after.OrElse(0),
		})
	}
	return bookings, nil
}

// DecodeBlackouts validates reservation periods closed to direct booking.
func DecodeBlackouts(raw []RawBlackout) ([]availability.Blackout, error) {
	blackouts := make([]availability.Blackout, 0, len(raw))
	for i, r := range raw {
		begin, err := civil.ParseDate(strings.TrimSpace(r.ReservationPeriodBegin))
		if err != nil {
			return nil, fmt.Errorf("%w: blackout %d begin %q", ErrInvalid, i, r.ReservationPeriodBegin)
		}
		end, err := civil.ParseDate(strings.TrimSpace(r.ReservationPeriodEnd))
		if err != nil {
			return nil, fmt.Errorf("%w: blackout %d end %q", ErrInvalid, i, r.ReservationPeriodEnd)
		}
		if end.Before(begin) {
			return nil, fmt.Errorf("%w: blackout %d ends before it begins", ErrInvalid, i)
		}
		blackouts = append(blackouts, availability.Blackout{Begin: begin, End: end})
	}
	return blackouts, nil
}

// Check runs the full reservation check against this snapshot.
func (s *Snapshot) Check(req availability.ReservationRequest, now time.Time) availability.Verdict {
	return availability.CheckReservation(s.Unit, s.Bookings, s.Blackouts, req, now)
}

// Shadows derives the buffer pseudo-events of the snapshot's bookings.
func (s *Snapshot) Shadows() []availability.BufferShadow {
	return availability.BuildShadows(s.Bookings)
}

func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalid)
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalid, s)
	}
	return t, nil
}

func optionalInstant(field string, s *string) (availability.Optional[time.Time], error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return availability.None[time.Time](), nil
	}
	t, err := parseInstant(*s)
	if err != nil {
		return availability.None[time.Time](), fmt.Errorf("snapshot: %s: %w", field, err)
	}
	return availability.Some(t), nil
}

func optionalSeconds(field string, seconds *int64) (availability.Optional[time.Duration], error) {
	if seconds == nil {
		return availability.None[time.Duration](), nil
	}
	if *seconds < 0 {
		return availability.None[time.Duration](), fmt.Errorf("%w: %s is negative", ErrInvalid, field)
	}
	return availability.Some(time.Duration(*seconds) * time.Second), nil
}
