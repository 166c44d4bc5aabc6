// Package icsfeed exports the upcoming event set as an iCalendar feed so the
// dashboard can be subscribed to from a regular calendar client.
package icsfeed

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"econboard/internal/model"
	"econboard/internal/window"
)

// defaultSlot is the block length used for exact-time entries; the upstream
// does not publish durations, so every announcement gets a nominal slot.
const defaultSlot = 30 * time.Minute

// Upcoming builds a VCALENDAR containing the events within the window,
// relative to now. Past events are excluded: the feed is a forward-looking
// queue, same as the dashboard's upcoming columns.
func Upcoming(events []model.Event, now time.Time, w window.Window) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//econboard//event feed//EN")

	end := w.End(now)
	for _, ev := range events {
		if ev.Timestamp.Before(now) || ev.Timestamp.After(end) {
			continue
		}

		entry := cal.AddEvent(ev.ID)
		entry.SetDtStampTime(now)
		entry.SetSummary(summaryFor(ev))
		entry.SetDescription(ev.Description)

		if ev.Precision == model.PrecisionDate {
			entry.SetAllDayStartAt(ev.Timestamp)
			entry.SetAllDayEndAt(ev.Timestamp.AddDate(0, 0, 1))
			continue
		}
		entry.SetStartAt(ev.Timestamp)
		entry.SetEndAt(ev.Timestamp.Add(defaultSlot))
	}

	return cal
}

// summaryFor prefixes session-period events with their session label, since
// the placeholder timestamp must not be read as a clock time.
func summaryFor(ev model.Event) string {
	if ev.Precision == model.PrecisionSession {
		return "[" + ev.Session.Label() + "] " + ev.Name
	}
	return ev.Name
}
