package availability

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestOpeningIndex_DropsMalformedWindows(t *testing.T) {
	inverted := window(baseDay, 12, 9, true)
	empty := OpeningWindow{Date: baseDay, IsReservable: true}
	ix := NewOpeningIndex([]OpeningWindow{window(baseDay, 9, 12, true), inverted, empty})

	assert.Equal(t, 1, ix.Len())
	assert.Len(t, ix.ForDate(baseDay), 1)
	assert.False(t, ix.ReservableAt(at(baseDay, 12, 30), false))
}

func TestOpeningIndex_ReservableAt(t *testing.T) {
	ix := NewOpeningIndex([]OpeningWindow{
		window(baseDay, 9, 12, true),
		window(baseDay, 13, 16, false),
	})

	tests := []struct {
		name         string
		at           time.Time
		inclusiveEnd bool
		want         bool
	}{
		{"opening instant", at(baseDay, 9, 0), false, true},
		{"inside", at(baseDay, 11, 59), false, true},
		{"closing instant is exclusive", at(baseDay, 12, 0), false, false},
		{"closing instant with strict end check", at(baseDay, 12, 0), true, true},
		{"before opening", at(baseDay, 8, 59), false, false},
		{"inside a non-reservable window", at(baseDay, 14, 0), false, false},
		{"same instant in another zone", at(baseDay, 10, 0).UTC(), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.ReservableAt(tt.at, tt.inclusiveEnd))
		})
	}
}

func TestOpeningIndex_ReservableThrough(t *testing.T) {
	ix := NewOpeningIndex([]OpeningWindow{
		window(baseDay, 9, 12, true),
		window(baseDay, 12, 14, true),
		window(baseDay, 15, 17, true),
		window(baseDay, 17, 18, false),
		window(baseDay, 20, 24, true),
		window(baseDay.AddDays(1), 0, 2, true),
	})

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside one window", at(baseDay, 9, 30), at(baseDay, 11, 0), true},
		{"chained windows", at(baseDay, 10, 0), at(baseDay, 14, 0), true},
		{"gap between windows", at(baseDay, 13, 0), at(baseDay, 16, 0), false},
		{"into a non-reservable window", at(baseDay, 16, 0), at(baseDay, 17, 30), false},
		{"across midnight", at(baseDay, 23, 0), at(baseDay.AddDays(1), 1, 0), true},
		{"starting outside every window", at(baseDay, 8, 0), at(baseDay, 10, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ix.ReservableThrough(tt.start, tt.end))
		})
	}
}

func TestOpenDates(t *testing.T) {
	later := baseDay.AddDays(3)
	closed := baseDay.AddDays(1)
	dates := OpenDates([]OpeningWindow{
		window(later, 9, 17, true),
		window(closed, 9, 17, false),
		window(baseDay, 13, 17, true),
		window(baseDay, 9, 12, true),
	})

	assert.Equal(t, []civil.Date{baseDay, later}, dates)
}

func TestStartTimeLabels(t *testing.T) {
	windows := []OpeningWindow{
		window(baseDay, 13, 15, true),
		window(baseDay, 9, 11, true),
		window(baseDay, 10, 12, true),
		window(baseDay, 16, 18, false),
		window(baseDay.AddDays(1), 9, 10, true),
	}

	got := StartTimeLabels(baseDay, windows, Interval60Minutes)
	assert.Equal(t, []string{"09:00", "10:00", "11:00", "13:00", "14:00"}, got)
}

func TestStartTimeLabels_MidnightClose(t *testing.T) {
	got := StartTimeLabels(baseDay, []OpeningWindow{window(baseDay, 22, 24, true)}, Interval30Minutes)
	assert.Equal(t, []string{"22:00", "22:30", "23:00", "23:30"}, got)
}

func TestOpeningIndex_ForDateIsACopy(t *testing.T) {
	ix := NewOpeningIndex([]OpeningWindow{window(baseDay, 9, 12, true)})
	ws := ix.ForDate(baseDay)
	ws[0].IsReservable = false

	assert.True(t, ix.ForDate(baseDay)[0].IsReservable)
	assert.Empty(t, ix.ForDate(baseDay.AddDays(1)))
}
