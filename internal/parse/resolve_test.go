package parse

import (
	"testing"
	"time"

	"econboard/internal/model"
)

const dateTok = "2024-06-01"

func TestResolveDisambiguationTotality(t *testing.T) {
	p := newParser()

	type resolved struct {
		ts   time.Time
		prec model.Precision
	}
	out := make(map[string]resolved)

	for _, tok := range []string{"Pre-market", "Post-market", "N/A", "09:30"} {
		ts, prec, _, err := p.Resolve(dateTok, tok)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tok, err)
		}
		out[tok] = resolved{ts, prec}
	}

	// Four distinct precisions... (session appears twice but with distinct
	// session values, checked elsewhere) and four distinct timestamps.
	seen := make(map[time.Time]string)
	for tok, r := range out {
		if prev, dup := seen[r.ts]; dup {
			t.Fatalf("tokens %q and %q resolved to the same timestamp %v", prev, tok, r.ts)
		}
		seen[r.ts] = tok
	}

	if out["Pre-market"].prec != model.PrecisionSession || out["Post-market"].prec != model.PrecisionSession {
		t.Fatal("session tokens must resolve to session precision")
	}
	if out["N/A"].prec != model.PrecisionDate {
		t.Fatalf("sentinel must resolve to date-only precision, got %q", out["N/A"].prec)
	}
	if out["09:30"].prec != model.PrecisionExact {
		t.Fatalf("clock token must resolve to exact precision, got %q", out["09:30"].prec)
	}

	if !out["Pre-market"].ts.Before(out["Post-market"].ts) {
		t.Fatal("pre-market must sort before post-market on the same date")
	}
	midnight := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !out["N/A"].ts.Equal(midnight) {
		t.Fatalf("date-only must pin to midnight UTC, got %v", out["N/A"].ts)
	}
}

func TestResolveSessionSpellings(t *testing.T) {
	p := newParser()
	for _, tok := range []string{"pre-market", "PRE-MARKET", "Premarket", "pre market"} {
		_, prec, sess, err := p.Resolve(dateTok, tok)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", tok, err)
		}
		if prec != model.PrecisionSession || sess != model.SessionPreMarket {
			t.Fatalf("Resolve(%q) = %q/%q, want session/pre-market", tok, prec, sess)
		}
	}
}

func TestResolveConfigurableHours(t *testing.T) {
	p := New(SessionHours{PreMarket: 11, PostMarket: 22})

	ts, _, _, err := p.Resolve(dateTok, "Pre-market")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ts.Hour() != 11 {
		t.Fatalf("expected configured pre-market hour 11, got %d", ts.Hour())
	}

	ts, _, _, err = p.Resolve(dateTok, "Post-market")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ts.Hour() != 22 {
		t.Fatalf("expected configured post-market hour 22, got %d", ts.Hour())
	}
}

func TestResolveEmptyTimeIsDateOnly(t *testing.T) {
	ts, prec, _, err := newParser().Resolve(dateTok, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if prec != model.PrecisionDate {
		t.Fatalf("empty time token must be date-only, got %q", prec)
	}
	if ts.Hour() != 0 || ts.Minute() != 0 {
		t.Fatalf("date-only must be midnight, got %v", ts)
	}
}

func TestResolveFailures(t *testing.T) {
	p := newParser()
	cases := []struct {
		date, tok string
	}{
		{"soon", "09:30"},
		{"2024-13-40", "09:30"},
		{"", "09:30"},
		{dateTok, "25:99"},
		{dateTok, "around noon"},
	}
	for _, c := range cases {
		if _, _, _, err := p.Resolve(c.date, c.tok); err == nil {
			t.Fatalf("Resolve(%q, %q) should fail", c.date, c.tok)
		}
	}
}

func TestResolveDateLayoutDrift(t *testing.T) {
	p := newParser()
	for _, d := range []string{"2024-06-01", "2024/06/01", "Jun 1, 2024", "June 1, 2024"} {
		ts, _, _, err := p.Resolve(d, "09:30")
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", d, err)
		}
		want := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
		if !ts.Equal(want) {
			t.Fatalf("Resolve(%q) = %v, want %v", d, ts, want)
		}
	}
}
