package availability

import "time"

// IsLongEnough reports whether [start, end) lasts at least minDuration. An unset limit always
// passes; an explicitly set zero is a real (trivially met) limit.
func IsLongEnough(start, end time.Time, minDuration Optional[time.Duration]) bool {
	limit, ok := minDuration.Get()
	if !ok {
		return true
	}
	return TimeSlot{Start: start, End: end}.Duration() >= limit
}

// IsShortEnough reports whether [start, end) lasts at most maxDuration. An unset limit always
// passes; an explicitly set zero rejects every non-empty slot.
func IsShortEnough(start, end time.Time, maxDuration Optional[time.Duration]) bool {
	limit, ok := maxDuration.Get()
	if !ok {
		return true
	}
	return TimeSlot{Start: start, End: end}.Duration() <= limit
}
