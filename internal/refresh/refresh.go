// Package refresh orchestrates the full load cycle: fan out the four
// upstream queries, parse the payloads, and replace the event snapshot. It
// also owns the cron schedule for periodic re-fetch and the two 1-second
// tickers (wall clock, countdown labels) that run for the life of the
// process without ever re-invoking fetch or parse.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"econboard/internal/feed"
	appLog "econboard/internal/log"
	"econboard/internal/metrics"
	"econboard/internal/model"
	"econboard/internal/parse"
	"econboard/internal/store"
	"econboard/internal/window"
)

// Runner wires the feed client, parser and store together.
type Runner struct {
	client *feed.Client
	parser *parse.Parser
	store  *store.Store
	loc    *time.Location
}

// NewRunner creates a Runner. loc is the display timezone used for the
// wall-clock snapshot.
func NewRunner(client *feed.Client, parser *parse.Parser, st *store.Store, loc *time.Location) *Runner {
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{client: client, parser: parser, store: st, loc: loc}
}

// Refresh performs one full fetch-parse-replace cycle. The four queries are
// all-or-nothing: if any fails, the store keeps its previous snapshot and
// the error is recorded for the UI. Parse-level problems never fail a
// refresh; malformed records are dropped inside the parser.
func (r *Runner) Refresh(ctx context.Context) error {
	started := time.Now()
	appLog.Info("refresh started")

	results, err := r.client.FetchAll(ctx, started)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("error").Inc()
		r.store.SetLoadError(err)
		appLog.Error("refresh failed", err)
		return err
	}

	events := make([]model.Event, 0)
	for _, res := range results {
		parsed, dropped := r.parser.Parse(res.Text, res.Query.Category, res.Query.Historical)

		dir := "future"
		if res.Query.Historical {
			dir = "past"
		}
		metrics.RecordsParsed.WithLabelValues(string(res.Query.Category), dir).Add(float64(len(parsed)))
		metrics.RecordsDropped.WithLabelValues(string(res.Query.Category), dir).Add(float64(dropped))

		appLog.Info("payload parsed",
			"query", res.Query.Name(), "events", len(parsed), "dropped", dropped)
		events = append(events, parsed...)
	}

	r.store.Replace(events, time.Now())
	metrics.EventsStored.Set(float64(len(events)))
	metrics.RefreshTotal.WithLabelValues("ok").Inc()

	appLog.Info("refresh completed",
		"events", len(events), "elapsed", time.Since(started).Round(time.Millisecond))
	return nil
}

// StartCron schedules periodic refreshes using the given cron spec and
// returns the started scheduler so the caller can stop it on shutdown.
func (r *Runner) StartCron(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := r.Refresh(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	appLog.Info("refresh schedule started", "cron", spec)
	return c, nil
}

// StartTickers launches the two 1-second tickers. Both are idempotent
// read-only passes over the current snapshot: one formats the wall clock in
// the display timezone, one recomputes countdown labels for exact-precision
// events. They stop when ctx is canceled.
func (r *Runner) StartTickers(ctx context.Context) {
	go r.runClockTicker(ctx)
	go r.runCountdownTicker(ctx)
}

func (r *Runner) runClockTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.store.SetClock(now.In(r.loc).Format("Mon Jan 2 15:04:05 MST"))
		}
	}
}

func (r *Runner) runCountdownTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			events, _ := r.store.Snapshot()
			labels := make(map[string]string, len(events))
			for _, ev := range events {
				if label := window.EventCountdown(ev, now); label != "" {
					labels[ev.ID] = label
				}
			}
			r.store.SetCountdowns(labels)
		}
	}
}
