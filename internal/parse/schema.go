package parse

import (
	"econboard/internal/model"
)

// schema describes one of the four positional record layouts. The layout
// depends on both the category and the temporal direction of the query, so
// there is one decode function per (category, historical) variant.
type schema struct {
	name      string
	minFields int
	decode    func(p *Parser, fields []string) (model.Event, error)
}

var (
	// Macro/future: date, time, impact, name, description, forecast,
	// previous, source.
	schemaMacroFuture = schema{
		name:      "macro/future",
		minFields: 8,
		decode:    decodeMacroFuture,
	}
	// Macro/past: date, time, impact, name, description, actual, forecast,
	// previous, sentiment, source.
	schemaMacroPast = schema{
		name:      "macro/past",
		minFields: 10,
		decode:    decodeMacroPast,
	}
	// Corporate/future: date, time-or-period, name, description, infoType,
	// prediction, source.
	schemaCorpFuture = schema{
		name:      "corporate/future",
		minFields: 7,
		decode:    decodeCorpFuture,
	}
	// Corporate/past: date, time-or-period, name, description, infoType,
	// actual, prediction, source.
	schemaCorpPast = schema{
		name:      "corporate/past",
		minFields: 8,
		decode:    decodeCorpPast,
	}
)

func schemaFor(cat model.Category, historical bool) schema {
	if cat == model.CategoryMacro {
		if historical {
			return schemaMacroPast
		}
		return schemaMacroFuture
	}
	if historical {
		return schemaCorpPast
	}
	return schemaCorpFuture
}

func decodeMacroFuture(p *Parser, f []string) (model.Event, error) {
	ts, prec, sess, err := p.Resolve(f[0], f[1])
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Timestamp:   ts,
		Precision:   prec,
		Session:     sess,
		Impact:      model.ParseImpact(f[2]),
		Name:        required(f[3]),
		Description: required(f[4]),
		Forecast:    optional(f[5]),
		Previous:    optional(f[6]),
		Source:      optional(f[7]),
	}, nil
}

func decodeMacroPast(p *Parser, f []string) (model.Event, error) {
	ts, prec, sess, err := p.Resolve(f[0], f[1])
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Timestamp:   ts,
		Precision:   prec,
		Session:     sess,
		Impact:      model.ParseImpact(f[2]),
		Name:        required(f[3]),
		Description: required(f[4]),
		Actual:      optional(f[5]),
		Forecast:    optional(f[6]),
		Previous:    optional(f[7]),
		Sentiment:   model.ParseSentiment(f[8]),
		Source:      optional(f[9]),
	}, nil
}

func decodeCorpFuture(p *Parser, f []string) (model.Event, error) {
	ts, prec, sess, err := p.Resolve(f[0], f[1])
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Timestamp:         ts,
		Precision:         prec,
		Session:           sess,
		Name:              required(f[2]),
		Description:       required(f[3]),
		InfoType:          optional(f[4]),
		AnalystPrediction: optional(f[5]),
		Source:            optional(f[6]),
	}, nil
}

func decodeCorpPast(p *Parser, f []string) (model.Event, error) {
	ts, prec, sess, err := p.Resolve(f[0], f[1])
	if err != nil {
		return model.Event{}, err
	}
	return model.Event{
		Timestamp:         ts,
		Precision:         prec,
		Session:           sess,
		Name:              required(f[2]),
		Description:       required(f[3]),
		InfoType:          optional(f[4]),
		Actual:            optional(f[5]),
		AnalystPrediction: optional(f[6]),
		Source:            optional(f[7]),
	}, nil
}
