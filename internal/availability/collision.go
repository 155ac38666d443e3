package availability

import "time"

// Candidate is a slot being checked against existing bookings, together with the
// buffers the new reservation itself would require.
type Candidate struct {
	Slot         TimeSlot
	BufferBefore time.Duration
	BufferAfter  time.Duration
}

// DoBookingsOverlap is the half-open overlap test: touching ends do not overlap.
func DoBookingsOverlap(existing, candidate TimeSlot) bool {
	return existing.Start.Before(candidate.End) && candidate.Start.Before(existing.End)
}

// BufferedWindow widens slot by before and after.
func BufferedWindow(slot TimeSlot, before, after time.Duration) TimeSlot {
	return TimeSlot{Start: slot.Start.Add(-before), End: slot.End.Add(after)}
}

// DoBuffersOverlap checks the candidate against one booking with buffers applied. At
// each boundary the larger of the two parties' buffers wins: the candidate's start must
// clear max(existing after-buffer, candidate before-buffer) and its end must clear
// max(existing before-buffer, candidate after-buffer).
func DoBuffersOverlap(existing ExistingBooking, candidate Candidate) bool {
	before := max(existing.BufferAfter, candidate.BufferBefore)
	after := max(existing.BufferBefore, candidate.BufferAfter)
	return DoBookingsOverlap(existing.Slot(), BufferedWindow(candidate.Slot, before, after))
}

// DoesAnyBufferCollide reports whether the candidate collides with any booking once
// buffers are applied.
func DoesAnyBufferCollide(candidate Candidate, bookings []ExistingBooking) bool {
	for _, b := range bookings {
		if DoBuffersOverlap(b, candidate) {
			return true
		}
	}
	return false
}

// DoesAnyBookingCollide reports whether slot overlaps any booking, ignoring buffers.
func DoesAnyBookingCollide(slot TimeSlot, bookings []ExistingBooking) bool {
	for _, b := range bookings {
		if DoBookingsOverlap(b.Slot(), slot) {
			return true
		}
	}
	return false
}
