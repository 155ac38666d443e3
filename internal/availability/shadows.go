package availability

// BuildShadows derives the buffer pseudo-events for calendar rendering. Each booking
// contributes independently and in input order; overlapping shadows are not merged.
// Bookings missing a begin or end are skipped.
func BuildShadows(bookings []ExistingBooking) []BufferShadow {
	var shadows []BufferShadow
	for _, b := range bookings {
		if b.Begin.IsZero() || b.End.IsZero() {
			continue
		}
		if b.BufferBefore != 0 {
			shadows = append(shadows, BufferShadow{
				Start:  b.Begin.Add(-b.BufferBefore),
				End:    b.Begin,
				Side:   ShadowBefore,
				Source: b,
			})
		}
		if b.BufferAfter != 0 {
			shadows = append(shadows, BufferShadow{
				Start:  b.End,
				End:    b.End.Add(b.BufferAfter),
				Side:   ShadowAfter,
				Source: b,
			})
		}
	}
	return shadows
}
