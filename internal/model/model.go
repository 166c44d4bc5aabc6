package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category identifies which kind of announcement an event describes.
// It is fixed at parse time and never changes afterwards.
type Category string

const (
	CategoryMacro     Category = "macro"
	CategoryCorporate Category = "corporate"
)

// Precision records how much we actually know about an event's time.
// The upstream source mixes exact clock times, named market sessions and
// day-only rows; the resolved timestamp is always a concrete instant, but
// only PrecisionExact timestamps may be displayed as a clock time or drive
// a countdown.
type Precision string

const (
	// PrecisionExact means the timestamp carries a real HH:MM UTC time.
	PrecisionExact Precision = "exact"
	// PrecisionSession means the timestamp is a canonical placeholder hour
	// for a named market session, used only for sorting and bucketing.
	PrecisionSession Precision = "session"
	// PrecisionDate means only the calendar day is known; the timestamp is
	// pinned to midnight UTC of that day.
	PrecisionDate Precision = "date"
)

// Session is the named market session for PrecisionSession events.
type Session string

const (
	SessionNone       Session = ""
	SessionPreMarket  Session = "pre-market"
	SessionPostMarket Session = "post-market"
)

// Label returns the human-readable session label.
func (s Session) Label() string {
	switch s {
	case SessionPreMarket:
		return "Pre-market"
	case SessionPostMarket:
		return "Post-market"
	default:
		return ""
	}
}

// Impact is the expected market impact of a macro event.
type Impact string

const (
	ImpactUnknown Impact = ""
	ImpactHigh    Impact = "high"
	ImpactMedium  Impact = "medium"
	ImpactLow     Impact = "low"
)

// ParseImpact maps a raw impact token to an Impact. Unrecognized tokens
// (including the absence sentinel) map to ImpactUnknown.
func ParseImpact(s string) Impact {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ImpactHigh
	case "medium", "med":
		return ImpactMedium
	case "low":
		return ImpactLow
	default:
		return ImpactUnknown
	}
}

// Sentiment classifies a past macro event's actual figure against
// expectations. It drives the color coding of the Actual value.
type Sentiment string

const (
	SentimentNone    Sentiment = ""
	SentimentGood    Sentiment = "good"
	SentimentBad     Sentiment = "bad"
	SentimentNeutral Sentiment = "neutral"
)

// ParseSentiment maps a raw sentiment token to a Sentiment.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good", "positive":
		return SentimentGood
	case "bad", "negative":
		return SentimentBad
	case "neutral":
		return SentimentNeutral
	default:
		return SentimentNone
	}
}

// Color returns the display color name associated with a sentiment.
func (s Sentiment) Color() string {
	switch s {
	case SentimentGood:
		return "green"
	case SentimentBad:
		return "red"
	case SentimentNeutral:
		return "gray"
	default:
		return ""
	}
}

// Event is the central entity of the dashboard: one scheduled or past
// macroeconomic release or corporate earnings announcement.
//
// Optional free-text fields use the empty string for "absent"; the parser
// never stores the upstream "N/A" sentinel literally. Name and Description
// are required and default to "N/A" when the source omits them.
//
// Macro-only and Corporate-only fields are disjoint: the parser only ever
// populates the set belonging to the event's Category.
type Event struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"` // always UTC, always valid
	Precision Precision `json:"precision"`
	Session   Session   `json:"session,omitempty"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`

	// Macro only.
	Impact    Impact    `json:"impact,omitempty"`
	Actual    string    `json:"actual,omitempty"`
	Forecast  string    `json:"forecast,omitempty"`
	Previous  string    `json:"previous,omitempty"`
	Sentiment Sentiment `json:"sentiment,omitempty"`

	// Corporate only.
	InfoType          string `json:"info_type,omitempty"`
	AnalystPrediction string `json:"analyst_prediction,omitempty"`
}

// NewID returns a fresh event identifier.
func NewID() string {
	return uuid.NewString()
}

// Historical reports whether the event lies strictly before now.
// This is derived at read time, never stored.
func (e Event) Historical(now time.Time) bool {
	return e.Timestamp.Before(now)
}

// DisplayTime returns what the renderer should show in the time slot:
// a local clock time for exact events, the session label for session
// events, and a placeholder dash for date-only events.
func (e Event) DisplayTime(loc *time.Location) string {
	switch e.Precision {
	case PrecisionExact:
		return e.Timestamp.In(loc).Format("15:04")
	case PrecisionSession:
		return e.Session.Label()
	default:
		return "-"
	}
}
