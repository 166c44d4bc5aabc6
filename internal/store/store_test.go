package store

import (
	"errors"
	"testing"
	"time"

	"econboard/internal/model"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReplaceIsFullReplacement(t *testing.T) {
	s := New()

	first := []model.Event{{ID: "a"}, {ID: "b"}}
	s.Replace(first, t0)

	second := []model.Event{{ID: "c"}}
	s.Replace(second, t0.Add(time.Hour))

	events, at := s.Snapshot()
	if len(events) != 1 || events[0].ID != "c" {
		t.Fatalf("replace must swap the whole set, got %v", events)
	}
	if !at.Equal(t0.Add(time.Hour)) {
		t.Fatalf("unexpected refreshed-at: %v", at)
	}
}

func TestLoadErrorKeepsPreviousSnapshot(t *testing.T) {
	s := New()
	s.Replace([]model.Event{{ID: "a"}}, t0)

	s.SetLoadError(errors.New("upstream down"))

	events, _ := s.Snapshot()
	if len(events) != 1 {
		t.Fatal("a failed refresh must not clear the previous snapshot")
	}
	if s.LoadError() == nil {
		t.Fatal("load error must be surfaced")
	}

	// A later successful refresh clears the error.
	s.Replace([]model.Event{{ID: "b"}}, t0.Add(time.Hour))
	if s.LoadError() != nil {
		t.Fatal("successful replace must clear the load error")
	}
}

func TestEmpty(t *testing.T) {
	s := New()
	if !s.Empty() {
		t.Fatal("new store must be empty")
	}
	s.Replace(nil, t0)
	if s.Empty() {
		t.Fatal("a store that has loaded (even zero events) is not empty")
	}
}

func TestCountdownsReturnsCopy(t *testing.T) {
	s := New()
	s.SetCountdowns(map[string]string{"a": "5m"})

	got := s.Countdowns()
	got["a"] = "mutated"

	if s.Countdowns()["a"] != "5m" {
		t.Fatal("Countdowns must return a copy, not the internal map")
	}
}

func TestClock(t *testing.T) {
	s := New()
	s.SetClock("Mon Jun 1 12:00:00 UTC")
	if s.Clock() != "Mon Jun 1 12:00:00 UTC" {
		t.Fatalf("unexpected clock: %q", s.Clock())
	}
}
