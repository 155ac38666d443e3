package availability

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	secondsPerDay  = 24 * 60 * 60
	midnightCutoff = 23*60*60 + 59*60
)

// GenerateIntervals lists the candidate start times between windowStart and windowEnd
// ("HH:MM" or "HH:MM:SS") at the given granularity. See IntervalsBetween.
func GenerateIntervals(windowStart, windowEnd string, interval StartInterval) []civil.Time {
	start, err := ParseClock(windowStart)
	if err != nil {
		return nil
	}
	end, err := ParseClock(windowEnd)
	if err != nil {
		return nil
	}
	return IntervalsBetween(start, end, interval)
}

// IntervalsBetween steps from start to end inclusive. An end of midnight is read as
// 23:59 so a day closing at midnight keeps its last interval; that 23:59 sentinel itself
// is never offered as a start. Unrecognized intervals and empty or inverted windows
// yield nothing.
func IntervalsBetween(start, end civil.Time, interval StartInterval) []civil.Time {
	step := interval.Minutes() * 60
	if step == 0 {
		return nil
	}
	from := clockSeconds(start)
	to := clockSeconds(end)
	normalized := false
	if to == 0 {
		to = midnightCutoff
		normalized = true
	}
	if from >= to {
		return nil
	}

	out := make([]civil.Time, 0, (to-from)/step+1)
	for s := from; s <= to; s += step {
		if normalized && s == to {
			continue
		}
		out = append(out, clockFromSeconds(s))
	}
	return out
}

// ParseClock parses a time of day written as "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (civil.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == len("15:04") {
		s += ":00"
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return civil.Time{}, fmt.Errorf("availability: parse clock %q: %w", s, err)
	}
	return t, nil
}

// FormatLabel renders t as "HH:MM".
func FormatLabel(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func clockSeconds(t civil.Time) int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

func clockFromSeconds(s int) civil.Time {
	s %= secondsPerDay
	return civil.Time{Hour: s / 3600, Minute: (s % 3600) / 60, Second: s % 60}
}

// clockOf returns the wall-clock time of t in its own location, truncated to seconds.
func clockOf(t time.Time) civil.Time {
	c := civil.TimeOf(t)
	c.Nanosecond = 0
	return c
}
