package parse

import (
	"strings"
	"testing"
	"time"

	"econboard/internal/model"
)

func newParser() *Parser {
	return New(DefaultSessionHours())
}

func TestSeparatorGate(t *testing.T) {
	raw := strings.Join([]string{
		"Here are the upcoming macroeconomic events:",
		"",
		"# Economic Calendar",
		"date | time | impact",
		"No events found for this period.",
	}, "\n")

	events, dropped := newParser().Parse(raw, model.CategoryMacro, false)
	if len(events) != 0 {
		t.Fatalf("expected 0 events from separator-free text, got %d", len(events))
	}
	if dropped != 0 {
		t.Fatalf("separator-free lines are not candidate records; expected 0 dropped, got %d", dropped)
	}
}

func TestMacroFutureRecord(t *testing.T) {
	raw := "2024-06-01::09:30::High::CPI Release::US inflation data::N/A::3.1%::Source A"

	events, dropped := newParser().Parse(raw, model.CategoryMacro, false)
	if dropped != 0 {
		t.Fatalf("expected 0 dropped, got %d", dropped)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	want := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("expected timestamp %v, got %v", want, ev.Timestamp)
	}
	if ev.Precision != model.PrecisionExact {
		t.Fatalf("expected exact precision, got %q", ev.Precision)
	}
	if ev.Category != model.CategoryMacro {
		t.Fatalf("expected macro category, got %q", ev.Category)
	}
	if ev.Impact != model.ImpactHigh {
		t.Fatalf("expected high impact, got %q", ev.Impact)
	}
	if ev.Name != "CPI Release" || ev.Description != "US inflation data" {
		t.Fatalf("unexpected name/description: %q / %q", ev.Name, ev.Description)
	}
	if ev.Forecast != "" {
		t.Fatalf("N/A forecast must normalize to absent, got %q", ev.Forecast)
	}
	if ev.Previous != "3.1%" {
		t.Fatalf("expected previous 3.1%%, got %q", ev.Previous)
	}
	if ev.Source != "Source A" {
		t.Fatalf("expected source 'Source A', got %q", ev.Source)
	}
	if ev.ID == "" {
		t.Fatal("expected a generated event ID")
	}
}

func TestCorporateFutureSessionRecord(t *testing.T) {
	raw := "2024-06-01::Pre-market::ACME (ACM)::Q2 results::Q2 Earnings::EPS $1.10::Source B"

	events, dropped := newParser().Parse(raw, model.CategoryCorporate, false)
	if dropped != 0 || len(events) != 1 {
		t.Fatalf("expected 1 event / 0 dropped, got %d / %d", len(events), dropped)
	}

	ev := events[0]
	if ev.Precision != model.PrecisionSession || ev.Session != model.SessionPreMarket {
		t.Fatalf("expected pre-market session precision, got %q/%q", ev.Precision, ev.Session)
	}
	want := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("expected canonical pre-market timestamp %v, got %v", want, ev.Timestamp)
	}
	if ev.InfoType != "Q2 Earnings" {
		t.Fatalf("expected infoType 'Q2 Earnings', got %q", ev.InfoType)
	}
	if ev.AnalystPrediction != "EPS $1.10" {
		t.Fatalf("expected prediction 'EPS $1.10', got %q", ev.AnalystPrediction)
	}
	// Macro-only fields must stay empty on a corporate event.
	if ev.Impact != model.ImpactUnknown || ev.Forecast != "" || ev.Sentiment != model.SentimentNone {
		t.Fatalf("macro-only fields populated on corporate event: %+v", ev)
	}
}

func TestSentinelNormalization(t *testing.T) {
	// All optional fields carry the sentinel, in mixed case.
	raw := "2024-06-01::09:30::n/a::CPI::Inflation::n/a::N/A::n/A"

	events, _ := newParser().Parse(raw, model.CategoryMacro, false)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Impact != model.ImpactUnknown {
		t.Fatalf("expected unknown impact, got %q", ev.Impact)
	}
	for name, got := range map[string]string{
		"forecast": ev.Forecast,
		"previous": ev.Previous,
		"source":   ev.Source,
	} {
		if got != "" {
			t.Fatalf("optional field %s must be absent, got %q", name, got)
		}
	}
}

func TestRequiredFieldsDefaultToSentinel(t *testing.T) {
	raw := strings.Join([]string{
		"2024-06-01", "09:30", "High", "", "", "N/A", "3.1%", "Source A",
	}, "::")

	events, _ := newParser().Parse(raw, model.CategoryMacro, false)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Name != "N/A" || events[0].Description != "N/A" {
		t.Fatalf("empty required fields must default to N/A, got %q / %q",
			events[0].Name, events[0].Description)
	}
}

func TestMalformedRecordIsolation(t *testing.T) {
	raw := strings.Join([]string{
		"2024-06-01::09:30::High::CPI::Inflation::N/A::3.1%::BLS",
		"not-a-date::09:30::High::PPI::Producer prices::N/A::2.2%::BLS",
		"2024-06-02::14:00::Medium::FOMC Minutes::Fed minutes::N/A::N/A::Fed",
		"2024-06-03::08:30::Low::Jobless Claims::Weekly claims::220K::230K::DOL",
	}, "\n")

	events, dropped := newParser().Parse(raw, model.CategoryMacro, false)
	if len(events) != 3 {
		t.Fatalf("one bad date must drop exactly one record: expected 3 events, got %d", len(events))
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}
}

func TestTooFewFieldsDropped(t *testing.T) {
	// Macro/past needs 10 fields; this has 3.
	raw := "2024-06-01::09:30::High"

	events, dropped := newParser().Parse(raw, model.CategoryMacro, true)
	if len(events) != 0 {
		t.Fatalf("expected 0 events, got %d", len(events))
	}
	if dropped != 1 {
		t.Fatalf("expected 1 dropped, got %d", dropped)
	}
}

func TestMacroPastRecord(t *testing.T) {
	raw := "2024-05-28::12:30::High::PCE Index::Core inflation::2.8%::2.7%::2.9%::Bad::BEA"

	events, _ := newParser().Parse(raw, model.CategoryMacro, true)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Actual != "2.8%" || ev.Forecast != "2.7%" || ev.Previous != "2.9%" {
		t.Fatalf("unexpected figures: actual=%q forecast=%q previous=%q",
			ev.Actual, ev.Forecast, ev.Previous)
	}
	if ev.Sentiment != model.SentimentBad {
		t.Fatalf("expected bad sentiment, got %q", ev.Sentiment)
	}
}

func TestCorporatePastRecord(t *testing.T) {
	raw := "2024-05-30::Post-market::MegaCorp (MGC)::Q1 results::Q1 Earnings::EPS $2.05::EPS $1.98::Reuters"

	events, _ := newParser().Parse(raw, model.CategoryCorporate, true)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.Session != model.SessionPostMarket {
		t.Fatalf("expected post-market session, got %q", ev.Session)
	}
	if ev.Actual != "EPS $2.05" || ev.AnalystPrediction != "EPS $1.98" {
		t.Fatalf("unexpected actual/prediction: %q / %q", ev.Actual, ev.AnalystPrediction)
	}
}

func TestDateMarkupStripped(t *testing.T) {
	for _, raw := range []string{
		"**2024-06-01**::09:30::High::CPI::Inflation::N/A::N/A::N/A",
		"- 2024-06-01::09:30::High::CPI::Inflation::N/A::N/A::N/A",
		"  2024-06-01 ::09:30::High::CPI::Inflation::N/A::N/A::N/A",
	} {
		events, dropped := newParser().Parse(raw, model.CategoryMacro, false)
		if len(events) != 1 || dropped != 0 {
			t.Fatalf("markup on date field must be stripped (%q): %d events, %d dropped",
				raw, len(events), dropped)
		}
	}
}
