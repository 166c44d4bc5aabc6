package parse

import (
	"fmt"
	"strings"
	"time"

	"econboard/internal/model"
)

// SessionHours are the canonical UTC hours at which pre/post-market events
// are placed on the timeline. They exist purely so session-period rows sort
// and bucket sensibly; they are never displayed as clock times.
type SessionHours struct {
	PreMarket  int
	PostMarket int
}

// DefaultSessionHours approximates early and late U.S. market hours.
func DefaultSessionHours() SessionHours {
	return SessionHours{PreMarket: 13, PostMarket: 21}
}

// dateLayouts are the date-token forms the upstream has been seen to emit.
// The first entry is the requested format; the rest are tolerated drift.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Resolve disambiguates a (date, time) token pair into a single UTC instant
// plus a precision tag. The time token is checked in order for: a pre-market
// session, a post-market session, the absence sentinel, and finally an HH:MM
// UTC clock time. It is a pure function; a failure means the caller must
// drop the record.
func (p *Parser) Resolve(dateTok, timeTok string) (time.Time, model.Precision, model.Session, error) {
	day, err := parseDate(dateTok)
	if err != nil {
		return time.Time{}, "", model.SessionNone, err
	}

	switch normalizeSession(timeTok) {
	case "premarket":
		return day.Add(time.Duration(p.hours.PreMarket) * time.Hour),
			model.PrecisionSession, model.SessionPreMarket, nil
	case "postmarket":
		return day.Add(time.Duration(p.hours.PostMarket) * time.Hour),
			model.PrecisionSession, model.SessionPostMarket, nil
	}

	if timeTok == "" || strings.EqualFold(timeTok, sentinel) {
		// Day-only event: pinned to midnight UTC.
		return day, model.PrecisionDate, model.SessionNone, nil
	}

	clock, err := time.Parse("15:04", timeTok)
	if err != nil {
		return time.Time{}, "", model.SessionNone,
			fmt.Errorf("unresolvable time token %q: %w", timeTok, err)
	}
	ts := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
	return ts, model.PrecisionExact, model.SessionNone, nil
}

func parseDate(tok string) (time.Time, error) {
	tok = strings.TrimSpace(tok)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, tok); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unresolvable date token %q", tok)
}

// normalizeSession collapses the session spellings the upstream produces
// ("Pre-market", "pre market", "PREMARKET", ...) into a canonical key.
func normalizeSession(tok string) string {
	s := strings.ToLower(strings.TrimSpace(tok))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	switch s {
	case "premarket", "postmarket":
		return s
	default:
		return ""
	}
}
