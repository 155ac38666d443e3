package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

var helsinki = time.FixedZone("EET", 2*60*60)

// baseDay is a Monday.
var baseDay = civil.Date{Year: 2026, Month: time.March, Day: 2}

func at(d civil.Date, hour, minute int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, minute, 0, 0, helsinki)
}

func window(d civil.Date, openHour, closeHour int, reservable bool) OpeningWindow {
	end := at(d, closeHour, 0)
	if closeHour == 24 {
		end = at(d.AddDays(1), 0, 0)
	}
	return OpeningWindow{Date: d, Start: at(d, openHour, 0), End: end, IsReservable: reservable}
}

func clocks(ts []civil.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
