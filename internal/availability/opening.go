package availability

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
)

// OpeningIndex groups opening windows by date. Windows whose start is not before their
// end are dropped, so they never cover anything.
type OpeningIndex struct {
	windows []OpeningWindow
	byDate  map[civil.Date][]OpeningWindow
}

// NewOpeningIndex builds an index over a copy of windows.
func NewOpeningIndex(windows []OpeningWindow) *OpeningIndex {
	ix := &OpeningIndex{byDate: make(map[civil.Date][]OpeningWindow)}
	for _, w := range windows {
		if !w.Start.Before(w.End) {
			continue
		}
		ix.windows = append(ix.windows, w)
		ix.byDate[w.Date] = append(ix.byDate[w.Date], w)
	}
	for d := range ix.byDate {
		slices.SortFunc(ix.byDate[d], func(a, b OpeningWindow) int {
			return a.Start.Compare(b.Start)
		})
	}
	return ix
}

// Len returns the number of usable windows.
func (ix *OpeningIndex) Len() int {
	return len(ix.windows)
}

// ForDate returns the windows of d ordered by start.
func (ix *OpeningIndex) ForDate(d civil.Date) []OpeningWindow {
	return slices.Clone(ix.byDate[d])
}

// ReservableAt reports whether a reservable window covers t.
func (ix *OpeningIndex) ReservableAt(t time.Time, inclusiveEnd bool) bool {
	_, ok := ix.reservableWindowAt(t, inclusiveEnd)
	return ok
}

func (ix *OpeningIndex) reservableWindowAt(t time.Time, inclusiveEnd bool) (OpeningWindow, bool) {
	for _, w := range ix.windows {
		if w.IsReservable && w.Contains(t, inclusiveEnd) {
			return w, true
		}
	}
	return OpeningWindow{}, false
}

// ReservableThrough reports whether reservable windows cover all of [start, end)
// without a gap. Back-to-back windows chain; a closed stretch between them does not.
func (ix *OpeningIndex) ReservableThrough(start, end time.Time) bool {
	cursor := start
	for cursor.Before(end) {
		next := cursor
		for _, w := range ix.windows {
			if w.IsReservable && w.Contains(cursor, false) && w.End.After(next) {
				next = w.End
			}
		}
		if !next.After(cursor) {
			return false
		}
		cursor = next
	}
	return true
}

// OpenDates lists, in ascending order, the dates with at least one reservable window.
func (ix *OpeningIndex) OpenDates() []civil.Date {
	var dates []civil.Date
	for d, ws := range ix.byDate {
		if slices.ContainsFunc(ws, func(w OpeningWindow) bool { return w.IsReservable }) {
			dates = append(dates, d)
		}
	}
	slices.SortFunc(dates, compareDates)
	return dates
}

// StartTimeLabels lists the "HH:MM" start times offered on d across its reservable
// windows, ascending and without duplicates.
func (ix *OpeningIndex) StartTimeLabels(d civil.Date, interval StartInterval) []string {
	var labels []string
	for _, w := range ix.byDate[d] {
		if !w.IsReservable {
			continue
		}
		closing := clockSeconds(clockOf(w.End))
		for _, t := range IntervalsBetween(clockOf(w.Start), clockOf(w.End), interval) {
			// a start at closing time cannot hold a reservation
			if closing != 0 && clockSeconds(t) >= closing {
				continue
			}
			labels = append(labels, FormatLabel(t))
		}
	}
	slices.Sort(labels)
	return slices.Compact(labels)
}

// windowAt finds the window on t's date whose [Start, End) contains t.
func (ix *OpeningIndex) windowAt(t time.Time) (OpeningWindow, bool) {
	for _, w := range ix.windows {
		if w.Date != civil.DateOf(t.In(w.Start.Location())) {
			continue
		}
		if w.Contains(t, false) {
			return w, true
		}
	}
	return OpeningWindow{}, false
}

// OpenDates is a convenience over NewOpeningIndex(windows).OpenDates().
func OpenDates(windows []OpeningWindow) []civil.Date {
	return NewOpeningIndex(windows).OpenDates()
}

// StartTimeLabels is a convenience over NewOpeningIndex(windows).StartTimeLabels(d, interval).
func StartTimeLabels(d civil.Date, windows []OpeningWindow, interval StartInterval) []string {
	return NewOpeningIndex(windows).StartTimeLabels(d, interval)
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
