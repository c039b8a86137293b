package message

import (
	"fmt"
	"time"
)

// FormatBookingDate renders the human-facing announcement date, e.g.
// "Monday, January 2nd".
func FormatBookingDate(t time.Time) string {
	return fmt.Sprintf("%s, %s %s", t.Weekday(), t.Month(), ordinal(t.Day()))
}

// BookingDateForWeeksAhead returns midnight on the Monday the given number
// of weeks after the current week's Monday.
func BookingDateForWeeksAhead(now time.Time, weeks int) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monday = monday.AddDate(0, 0, -daysSinceMonday)
	return monday.AddDate(0, 0, 7*weeks)
}

func ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}
