// Package availability decides whether a candidate time slot on a reservable unit may be
// booked. Every function is a pure function of its arguments: callers hand in an
// immutable snapshot of opening hours, bookings, blackouts and unit configuration, plus
// the current time, and receive a verdict.
package availability

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidSlot is returned when a slot does not start strictly before it ends.
var ErrInvalidSlot = errors.New("availability: slot start must be before end")

// Optional is an explicitly tagged value. The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a set value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value, or fallback when unset.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.set {
		return fallback
	}
	return o.value
}

// TimeSlot is a half-open [Start, End) range.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// NewTimeSlot validates Start < End.
func NewTimeSlot(start, end time.Time) (TimeSlot, error) {
	if !start.Before(end) {
		return TimeSlot{}, ErrInvalidSlot
	}
	return TimeSlot{Start: start, End: end}, nil
}

// Duration returns End - Start.
func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// OpeningWindow is one contiguous open period on a date.
type OpeningWindow struct {
	Date         civil.Date
	Start        time.Time
	End          time.Time
	IsReservable bool
}

// Contains reports whether t falls inside the window. The end is exclusive unless
// inclusiveEnd is set.
func (w OpeningWindow) Contains(t time.Time, inclusiveEnd bool) bool {
	if t.Before(w.Start) {
		return false
	}
	if inclusiveEnd {
		return !t.After(w.End)
	}
	return t.Before(w.End)
}

// ExistingBooking is a reservation already on the unit's calendar. A zero buffer
// means none was configured.
type ExistingBooking struct {
	Begin        time.Time
	End          time.Time
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

// Slot returns the unbuffered booking interval.
func (b ExistingBooking) Slot() TimeSlot {
	return TimeSlot{Start: b.Begin, End: b.End}
}

// ShadowSide tells which side of its booking a shadow sits on.
type ShadowSide string

const (
	ShadowBefore ShadowSide = "before"
	ShadowAfter  ShadowSide = "after"
)

// BufferShadow is a display-only pseudo-event covering a booking's buffer.
type BufferShadow struct {
	Start  time.Time
	End    time.Time
	Side   ShadowSide
	Source ExistingBooking
}

// Blackout is a closed range of dates during which nothing may be booked.
type Blackout struct {
	Begin civil.Date
	End   civil.Date
}

// StartInterval is the granularity reservations may start on.
type StartInterval int

const (
	intervalInvalid StartInterval = iota
	Interval15Minutes
	Interval30Minutes
	Interval60Minutes
	Interval90Minutes
)

// Minutes returns the step length, or 0 for an unrecognized value.
func (i StartInterval) Minutes() int {
	switch i {
	case Interval15Minutes:
		return 15
	case Interval30Minutes:
		return 30
	case Interval60Minutes:
		return 60
	case Interval90Minutes:
		return 90
	default:
		return 0
	}
}

// Valid reports whether i is one of the four recognized granularities.
func (i StartInterval) Valid() bool {
	return i.Minutes() > 0
}

func (i StartInterval) String() string {
	if !i.Valid() {
		return "INVALID"
	}
	return "INTERVAL_" + strconv.Itoa(i.Minutes()) + "_MINS"
}

// ParseStartInterval accepts INTERVAL_15_MINS style tokens (any case) as well as bare
// minute counts such as "30".
func ParseStartInterval(s string) (StartInterval, bool) {
	token := strings.ToUpper(strings.TrimSpace(s))
	token = strings.TrimPrefix(token, "INTERVAL_")
	token = strings.TrimSuffix(token, "_MINS")
	token = strings.TrimSuffix(token, "_MINUTES")
	switch token {
	case "15":
		return Interval15Minutes, true
	case "30":
		return Interval30Minutes, true
	case "60":
		return Interval60Minutes, true
	case "90":
		return Interval90Minutes, true
	default:
		return intervalInvalid, false
	}
}

// UnitConstraints is the reservation configuration of a unit.
type UnitConstraints struct {
	MinDuration   Optional[time.Duration]
	MaxDuration   Optional[time.Duration]
	WindowBegin   Optional[time.Time]
	WindowEnd     Optional[time.Time]
	LeadDays      Optional[int]
	LagDays       Optional[int]
	StartInterval Optional[StartInterval]
}

// Unit is the snapshot of one reservable unit an evaluation runs against.
type Unit struct {
	ID              string
	Constraints     UnitConstraints
	OpeningWindows  []OpeningWindow
	SupportedFields []string
}

func absDays(days int) int {
	if days < 0 {
		return -days
	}
	return days
}
