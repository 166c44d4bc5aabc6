package feed

import (
	"fmt"
	"time"
)

// Prompt construction. Each prompt spells out the exact line format so the
// upstream emits rows the parser's positional schemas can decode. The
// upstream is still free to wrap the rows in prose; only lines containing
// "::" are ever considered.

const promptPreamble = "You are an economic calendar data service. " +
	"Reply with one event per line, no numbering, no markdown tables. " +
	"Use the literal string N/A for any value you do not know. " +
	"All dates are YYYY-MM-DD and all clock times are HH:MM in UTC.\n\n"

// BuildPrompt returns the instruction text for one query, anchored at now.
func BuildPrompt(q Query, now time.Time) string {
	today := now.UTC().Format("2006-01-02")
	switch {
	case q.Category == "macro" && !q.Historical:
		return promptPreamble + fmt.Sprintf(
			"List major scheduled macroeconomic releases (inflation, rates, employment, GDP) "+
				"for the 7 days starting %s. Format each line exactly as:\n"+
				"date::time::impact::name::description::forecast::previous::source\n"+
				"impact is High, Medium or Low.", today)
	case q.Category == "macro" && q.Historical:
		return promptPreamble + fmt.Sprintf(
			"List major macroeconomic releases from the 7 days before %s with their published figures. "+
				"Format each line exactly as:\n"+
				"date::time::impact::name::description::actual::forecast::previous::sentiment::source\n"+
				"impact is High, Medium or Low; sentiment is Good, Bad or Neutral relative to expectations.", today)
	case q.Category == "corporate" && !q.Historical:
		return promptPreamble + fmt.Sprintf(
			"List notable upcoming corporate earnings announcements for the 7 days starting %s. "+
				"Format each line exactly as:\n"+
				"date::time::name::description::infoType::analystPrediction::source\n"+
				"time is HH:MM UTC, or Pre-market / Post-market when only the session is known.", today)
	default:
		return promptPreamble + fmt.Sprintf(
			"List notable corporate earnings announcements from the 7 days before %s with reported results. "+
				"Format each line exactly as:\n"+
				"date::time::name::description::infoType::actual::analystPrediction::source\n"+
				"time is HH:MM UTC, or Pre-market / Post-market when only the session is known.", today)
	}
}
