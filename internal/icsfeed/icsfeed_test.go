package icsfeed

import (
	"strings"
	"testing"
	"time"

	"econboard/internal/model"
	"econboard/internal/window"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func event(id string, ts time.Time, prec model.Precision) model.Event {
	return model.Event{
		ID:          id,
		Category:    model.CategoryMacro,
		Timestamp:   ts,
		Precision:   prec,
		Name:        "CPI Release",
		Description: "US inflation data",
	}
}

func TestUpcomingExcludesPastAndOutOfWindow(t *testing.T) {
	events := []model.Event{
		event("past", t0.Add(-time.Hour), model.PrecisionExact),
		event("in", t0.Add(2*time.Hour), model.PrecisionExact),
		event("far", t0.AddDate(0, 0, 9), model.PrecisionExact),
	}

	cal := Upcoming(events, t0, window.Week)
	out := cal.Serialize()

	if !strings.Contains(out, "UID:in") {
		t.Fatal("in-window event missing from feed")
	}
	if strings.Contains(out, "UID:past") {
		t.Fatal("past event must not appear in the feed")
	}
	if strings.Contains(out, "UID:far") {
		t.Fatal("event beyond the window must not appear in the feed")
	}
}

func TestSessionEventsAreLabeled(t *testing.T) {
	ev := event("s", t0.Add(2*time.Hour), model.PrecisionSession)
	ev.Session = model.SessionPostMarket

	out := Upcoming([]model.Event{ev}, t0, window.Week).Serialize()
	if !strings.Contains(out, "[Post-market] CPI Release") {
		t.Fatalf("session events must carry the session label in the summary:\n%s", out)
	}
}

func TestDateOnlyEventsAreAllDay(t *testing.T) {
	ev := event("d", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), model.PrecisionDate)

	out := Upcoming([]model.Event{ev}, t0, window.Week).Serialize()
	if !strings.Contains(out, "VALUE=DATE") {
		t.Fatalf("date-only events must be exported as all-day entries:\n%s", out)
	}
}

func TestCalendarEnvelope(t *testing.T) {
	out := Upcoming(nil, t0, window.Week).Serialize()
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "METHOD:PUBLISH") {
		t.Fatalf("unexpected calendar envelope:\n%s", out)
	}
}
