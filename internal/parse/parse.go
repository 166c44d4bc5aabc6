// Package parse turns the semi-structured text payloads returned by the
// generative upstream into typed events.
//
// The upstream contract is best-effort prose: the model is asked to emit one
// event per line as "field1::field2::...::fieldN" but may wrap the rows in
// headers, explanations or markdown. The separator gate plus per-record error
// isolation below is the defense: a line either looks like a record and
// decodes fully, or it is dropped without affecting the rest of the batch.
package parse

import (
	"strings"

	appLog "econboard/internal/log"
	"econboard/internal/model"
)

const (
	// fieldSep is the field-separator token; lines without it are never
	// candidate records.
	fieldSep = "::"
	// sentinel is the upstream absence marker. Optional fields equal to it
	// (case-insensitively) are normalized to empty, never stored literally.
	sentinel = "N/A"
)

// Parser decodes raw payload text for one (category, direction) query at a
// time. It is safe for concurrent use; all state is immutable after New.
type Parser struct {
	hours SessionHours
}

// New returns a Parser that resolves session-period rows using the given
// canonical hours.
func New(hours SessionHours) *Parser {
	return &Parser{hours: hours}
}

// Parse splits raw text into candidate records and decodes each against the
// positional schema selected by (category, historical). It returns the
// decoded events plus the number of candidate records that were dropped.
//
// One malformed record never aborts the batch: short rows, unresolvable
// dates and decode errors are logged and skipped.
func (p *Parser) Parse(raw string, cat model.Category, historical bool) ([]model.Event, int) {
	sc := schemaFor(cat, historical)
	dropped := 0
	events := make([]model.Event, 0)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, fieldSep) {
			// Header, prose or blank line around the structured rows.
			continue
		}

		fields := splitFields(line)
		if len(fields) < sc.minFields {
			appLog.Warn("record dropped: too few fields",
				"schema", sc.name, "want", sc.minFields, "got", len(fields))
			dropped++
			continue
		}

		ev, err := sc.decode(p, fields)
		if err != nil {
			appLog.Warn("record dropped: "+err.Error(), "schema", sc.name)
			dropped++
			continue
		}

		ev.ID = model.NewID()
		ev.Category = cat
		events = append(events, ev)
	}

	return events, dropped
}

// splitFields splits a candidate record on the separator, trims each field
// and strips leading formatting markup (emphasis markers, list bullets) from
// the date field.
func splitFields(line string) []string {
	parts := strings.Split(line, fieldSep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 0 {
		date := strings.TrimLeft(parts[0], "-#> ")
		date = strings.Trim(date, "*_` ")
		parts[0] = strings.TrimSpace(date)
	}
	return parts
}

// optional normalizes an optional field: the absence sentinel and the empty
// string both become "absent" (empty).
func optional(s string) string {
	if s == "" || strings.EqualFold(s, sentinel) {
		return ""
	}
	return s
}

// required normalizes a required field: absent values fall back to the
// sentinel so the renderer always has something to show. This is policy,
// not an error.
func required(s string) string {
	if s == "" {
		return sentinel
	}
	return s
}
