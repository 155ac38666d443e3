package availability

import "time"

// IsWithinBookingWindow reports whether start is strictly after begin and strictly before
// end. Unset bounds do not constrain.
func IsWithinBookingWindow(start time.Time, begin, end Optional[time.Time]) bool {
	if b, ok := begin.Get(); ok && !start.After(b) {
		return false
	}
	if e, ok := end.Get(); ok && !start.Before(e) {
		return false
	}
	return true
}

// IsWithinLeadTime combines IsWithinBookingWindow with the minimum notice: start must be
// strictly after now plus leadDays (sign ignored), or strictly after now without a lead.
func IsWithinLeadTime(start time.Time, begin, end Optional[time.Time], leadDays int, now time.Time) bool {
	if !IsWithinBookingWindow(start, begin, end) {
		return false
	}
	threshold := now
	if days := absDays(leadDays); days > 0 {
		threshold = now.AddDate(0, 0, days)
	}
	return start.After(threshold)
}

// IsWithinLagTime enforces the booking horizon: start must be strictly before now plus
// lagDays. Unset or zero lag days do not constrain.
func IsWithinLagTime(start time.Time, lagDays Optional[int], now time.Time) bool {
	days := absDays(lagDays.OrElse(0))
	if days == 0 {
		return true
	}
	return start.Before(now.AddDate(0, 0, days))
}

// IsUnitCurrentlyBookable reports whether the unit is configured well enough to take
// reservations and now lies inside its reservation period (bounds inclusive).
func IsUnitCurrentlyBookable(unit Unit, now time.Time) bool {
	c := unit.Constraints
	switch {
	case len(unit.SupportedFields) == 0:
		return false
	case len(unit.OpeningWindows) == 0:
		return false
	case !c.MinDuration.IsSet() || !c.MaxDuration.IsSet():
		return false
	}
	if b, ok := c.WindowBegin.Get(); ok && now.Before(b) {
		return false
	}
	if e, ok := c.WindowEnd.Get(); ok && now.After(e) {
		return false
	}
	return true
}

// IsBookingStartInFuture reports whether the unit's reservation period has yet to open,
// with the lead time pulling the opening earlier.
func IsBookingStartInFuture(unit Unit, now time.Time) bool {
	begin, ok := unit.Constraints.WindowBegin.Get()
	if !ok {
		return false
	}
	lead := absDays(unit.Constraints.LeadDays.OrElse(0))
	return now.Before(begin.AddDate(0, 0, -lead))
}
