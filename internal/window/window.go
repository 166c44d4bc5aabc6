// Package window partitions the event snapshot for presentation: past vs
// upcoming relative to "now", a forward horizon bound on the upcoming set,
// and grouping by calendar day in the display timezone.
package window

import (
	"fmt"
	"sort"
	"time"

	"econboard/internal/model"
)

// Window is the user-selected forward-looking horizon bounding the
// upcoming event set.
type Window string

const (
	// Day keeps upcoming events within the next 24 hours.
	Day Window = "24h"
	// Week keeps upcoming events within the next 7 calendar days.
	Week Window = "7d"
	// Default is the horizon applied when no filter is active.
	Default = Week
)

// Parse validates a window token from a request or config.
func Parse(s string) (Window, error) {
	switch Window(s) {
	case Day, Week:
		return Window(s), nil
	case "":
		return Default, nil
	default:
		return "", fmt.Errorf("unknown window %q (want 24h or 7d)", s)
	}
}

// End returns the inclusive upper bound of the window starting at now.
func (w Window) End(now time.Time) time.Time {
	if w == Day {
		return now.Add(24 * time.Hour)
	}
	return now.AddDate(0, 0, 7)
}

// DayGroup is the unit of display grouping: all events sharing one calendar
// day in the display timezone, sorted ascending by timestamp.
type DayGroup struct {
	// Key is the local calendar day in YYYY-MM-DD form.
	Key string
	// Label is the locale-formatted day heading (e.g. "Mon, Jun 3").
	Label string
	// Events are ordered ascending by timestamp regardless of whether the
	// group is in the past or upcoming set.
	Events []model.Event
}

// Grouped holds the day groups of one past/upcoming subset, per category.
type Grouped struct {
	Macro     []DayGroup
	Corporate []DayGroup
}

// Result is the full partition consumed by the renderer.
type Result struct {
	// Upcoming groups are ordered ascending (soonest day first) and bounded
	// by the window.
	Upcoming Grouped
	// Past groups are ordered descending (most recent day first) and are
	// not bounded by the window.
	Past Grouped
}

// Partition splits events into past and upcoming relative to now, applies
// the window bound to the upcoming set only, and groups each subset by
// calendar day in loc.
//
// An event is past iff its timestamp is strictly before now; the split is
// independent of the window filter.
func Partition(events []model.Event, now time.Time, w Window, loc *time.Location) Result {
	if loc == nil {
		loc = time.UTC
	}
	end := w.End(now)

	var pastMacro, pastCorp, upMacro, upCorp []model.Event
	for _, ev := range events {
		if ev.Timestamp.Before(now) {
			if ev.Category == model.CategoryMacro {
				pastMacro = append(pastMacro, ev)
			} else {
				pastCorp = append(pastCorp, ev)
			}
			continue
		}
		if ev.Timestamp.After(end) {
			continue
		}
		if ev.Category == model.CategoryMacro {
			upMacro = append(upMacro, ev)
		} else {
			upCorp = append(upCorp, ev)
		}
	}

	return Result{
		Upcoming: Grouped{
			Macro:     groupByDay(upMacro, loc, true),
			Corporate: groupByDay(upCorp, loc, true),
		},
		Past: Grouped{
			Macro:     groupByDay(pastMacro, loc, false),
			Corporate: groupByDay(pastCorp, loc, false),
		},
	}
}

// groupByDay buckets events by their calendar day in loc. Events within a
// group are ascending by timestamp; group order is ascending when asc is
// true, descending otherwise.
func groupByDay(events []model.Event, loc *time.Location, asc bool) []DayGroup {
	if len(events) == 0 {
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	byKey := make(map[string]*DayGroup)
	keys := make([]string, 0)
	for _, ev := range events {
		local := ev.Timestamp.In(loc)
		key := local.Format("2006-01-02")
		g, ok := byKey[key]
		if !ok {
			g = &DayGroup{
				Key:   key,
				Label: local.Format("Mon, Jan 2"),
			}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.Events = append(g.Events, ev)
	}

	// Events were appended in ascending timestamp order, so groups and their
	// contents are already ascending; reverse the group order for past sets.
	sort.Strings(keys)
	if !asc {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	out := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out
}
