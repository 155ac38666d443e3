package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

// Covers reports whether t falls on or between the blackout's dates, read in t's
// location. The end date counts through 23:59:59.
func (b Blackout) Covers(t time.Time) bool {
	return b.CoversIn(t, t.Location())
}

// CoversIn is Covers with the blackout's dates read in loc, so the verdict does not
// depend on the offset t happens to be written in.
func (b Blackout) CoversIn(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = t.Location()
	}
	from := b.Begin.In(loc)
	through := b.End.AddDays(1).In(loc).Add(-time.Second)
	return !t.Before(from) && !t.After(through)
}

// CollidesWithBlackout reports whether any blackout covers t.
func CollidesWithBlackout(t time.Time, blackouts []Blackout) bool {
	return CollidesWithBlackoutIn(t, t.Location(), blackouts)
}

// CollidesWithBlackoutIn reports whether any blackout, read in loc, covers t.
func CollidesWithBlackoutIn(t time.Time, loc *time.Location, blackouts []Blackout) bool {
	for _, b := range blackouts {
		if b.CoversIn(t, loc) {
			return true
		}
	}
	return false
}

// NewBlackout orders its bounds so Begin is never after End.
func NewBlackout(begin, end civil.Date) Blackout {
	if end.Before(begin) {
		begin, end = end, begin
	}
	return Blackout{Begin: begin, End: end}
}
