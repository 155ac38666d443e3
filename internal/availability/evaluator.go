package availability

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrNotReservable is wrapped by Verdict.Err for rejected reservations.
var ErrNotReservable = errors.New("availability: not reservable")

// SlotOptions are the unit-level constraints AreSlotsReservable applies to each slot.
type SlotOptions struct {
	WindowBegin Optional[time.Time]
	WindowEnd   Optional[time.Time]
	LeadDays    int
	// StrictEndCheck makes opening windows inclusive of their end, for checking the
	// instant a reservation ends rather than starts.
	StrictEndCheck bool
	Now            time.Time
}

// AreSlotsReservable reports whether every instant in slots lies in a reservable opening
// window, passes the booking window and lead time, and avoids every blackout. It stops at
// the first failure; no slots is trivially reservable.
func AreSlotsReservable(slots []time.Time, windows []OpeningWindow, blackouts []Blackout, opts SlotOptions) bool {
	if len(slots) == 0 {
		return true
	}
	return areSlotsReservable(slots, NewOpeningIndex(windows), blackouts, opts)
}

func areSlotsReservable(slots []time.Time, ix *OpeningIndex, blackouts []Blackout, opts SlotOptions) bool {
	for _, slot := range slots {
		w, ok := ix.reservableWindowAt(slot, opts.StrictEndCheck)
		if !ok {
			return false
		}
		if !IsWithinLeadTime(slot, opts.WindowBegin, opts.WindowEnd, opts.LeadDays, opts.Now) {
			return false
		}
		// blackout dates are the unit's calendar dates
		if CollidesWithBlackoutIn(slot, w.Start.Location(), blackouts) {
			return false
		}
	}
	return true
}

// IsStartAlignedToInterval reports whether start sits on the unit's start-time grid.
// Without opening windows nothing is aligned; without an interval everything is.
func IsStartAlignedToInterval(start time.Time, windows []OpeningWindow, interval Optional[StartInterval]) bool {
	if len(windows) == 0 {
		return false
	}
	return isStartAligned(start, NewOpeningIndex(windows), interval)
}

func isStartAligned(start time.Time, ix *OpeningIndex, interval Optional[StartInterval]) bool {
	step, ok := interval.Get()
	if !ok {
		return true
	}
	w, found := ix.windowAt(start)
	if !found {
		return false
	}
	local := clockOf(start.In(w.Start.Location()))
	return slices.Contains(IntervalsBetween(clockOf(w.Start), clockOf(w.End), step), local)
}

// Reason is a stable code explaining why a reservation was rejected.
type Reason string

const (
	ReasonInvalidSlot      Reason = "invalid_slot"
	ReasonUnitNotBookable  Reason = "unit_not_bookable"
	ReasonTooShort         Reason = "too_short"
	ReasonTooLong          Reason = "too_long"
	ReasonStartMisaligned  Reason = "start_not_aligned"
	ReasonStartUnavailable Reason = "start_unavailable"
	ReasonEndUnavailable   Reason = "end_unavailable"
	ReasonClosedDuring     Reason = "closed_during"
	ReasonBeyondHorizon    Reason = "beyond_horizon"
	ReasonCollision        Reason = "collision"
)

// ReservationRequest is the reservation a user is about to submit.
type ReservationRequest struct {
	Begin        time.Time
	End          time.Time
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

// Verdict is the outcome of CheckReservation.
type Verdict struct {
	Reservable bool
	Reasons    []Reason
}

// Err returns nil for a reservable verdict and an error wrapping ErrNotReservable
// otherwise.
func (v Verdict) Err() error {
	if v.Reservable {
		return nil
	}
	codes := make([]string, len(v.Reasons))
	for i, r := range v.Reasons {
		codes[i] = string(r)
	}
	return fmt.Errorf("%w: %s", ErrNotReservable, strings.Join(codes, ", "))
}

// CheckReservation runs every gate a reservation must pass before submission and
// reports all the ones it fails.
func CheckReservation(unit Unit, bookings []ExistingBooking, blackouts []Blackout, req ReservationRequest, now time.Time) Verdict {
	slot, err := NewTimeSlot(req.Begin, req.End)
	if err != nil {
		return Verdict{Reasons: []Reason{ReasonInvalidSlot}}
	}

	c := unit.Constraints
	ix := NewOpeningIndex(unit.OpeningWindows)
	var reasons []Reason

	if !IsUnitCurrentlyBookable(unit, now) {
		reasons = append(reasons, ReasonUnitNotBookable)
	}
	if !IsLongEnough(slot.Start, slot.End, c.MinDuration) {
		reasons = append(reasons, ReasonTooShort)
	}
	if !IsShortEnough(slot.Start, slot.End, c.MaxDuration) {
		reasons = append(reasons, ReasonTooLong)
	}
	if ix.Len() == 0 || !isStartAligned(slot.Start, ix, c.StartInterval) {
		reasons = append(reasons, ReasonStartMisaligned)
	}

	opts := SlotOptions{
		WindowBegin: c.WindowBegin,
		WindowEnd:   c.WindowEnd,
		LeadDays:    c.LeadDays.OrElse(0),
		Now:         now,
	}
	startOK := areSlotsReservable([]time.Time{slot.Start}, ix, blackouts, opts)
	if !startOK {
		reasons = append(reasons, ReasonStartUnavailable)
	}
	opts.StrictEndCheck = true
	endOK := areSlotsReservable([]time.Time{slot.End}, ix, blackouts, opts)
	if !endOK {
		reasons = append(reasons, ReasonEndUnavailable)
	}
	if startOK && endOK && !ix.ReservableThrough(slot.Start, slot.End) {
		reasons = append(reasons, ReasonClosedDuring)
	}
	if !IsWithinLagTime(slot.Start, c.LagDays, now) {
		reasons = append(reasons, ReasonBeyondHorizon)
	}

	candidate := Candidate{Slot: slot, BufferBefore: req.BufferBefore, BufferAfter: req.BufferAfter}
	if DoesAnyBufferCollide(candidate, bookings) {
		reasons = append(reasons, ReasonCollision)
	}

	return Verdict{Reservable: len(reasons) == 0, Reasons: reasons}
}
