package window

import (
	"fmt"
	"time"

	"econboard/internal/model"
)

const (
	// LabelAnnounced is the terminal countdown state; once crossed it never
	// reverts.
	LabelAnnounced = "Announced"
	// LabelUpcoming is the sub-minute sentinel.
	LabelUpcoming = "Upcoming"
)

// Countdown derives the label for the time remaining until ts, emitting the
// single largest non-zero unit pair. It is pure and is recomputed on every
// tick.
func Countdown(ts, now time.Time) string {
	if !ts.After(now) {
		return LabelAnnounced
	}

	d := ts.Sub(now)
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	case mins > 0:
		return fmt.Sprintf("%dm", mins)
	default:
		return LabelUpcoming
	}
}

// EventCountdown returns the countdown label for an event, or "" when the
// event's precision does not support one (session and date-only events show
// their session label or a dash instead).
func EventCountdown(ev model.Event, now time.Time) string {
	if ev.Precision != model.PrecisionExact {
		return ""
	}
	return Countdown(ev.Timestamp, now)
}
