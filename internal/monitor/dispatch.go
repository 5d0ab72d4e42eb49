package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tweetwatch/internal/metrics"
	"tweetwatch/internal/model"
)

// Pusher is the messaging collaborator.
type Pusher interface {
	Push(ctx context.Context, to, text string) error
}

// Summarizer optionally condenses an item's text into one line.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// AdvancePolicy decides whether a failed push still moves the watermark.
type AdvancePolicy string

const (
	// AdvanceAlways moves the watermark past every matched item, dropping failed pushes.
	AdvanceAlways AdvancePolicy = "always"
	// AdvanceOnSuccess moves the watermark only past pushed items older than
	// every failed one, so failed pushes are fetched again next cycle.
	AdvanceOnSuccess AdvancePolicy = "on_success"
)

// Dispatcher runs fetch-filter-notify-advance cycles.
type Dispatcher struct {
	Searcher    Searcher
	Pusher      Pusher
	Filter      FilterConfig
	Destination string
	Formatter   Formatter
	Lookback    time.Duration
	MaxResults  int
	Advance     AdvancePolicy
	Summarizer  Summarizer       // optional
	Now         func() time.Time // defaults to time.Now
	OnFetched   func(n int)      // optional, called once the fetch succeeded
}

// Run executes one dispatch cycle. A fetch failure returns an unsuccessful
// result together with the error and leaves wm untouched. Push failures are
// logged and never abort the cycle.
func (d *Dispatcher) Run(ctx context.Context, wm *Watermark) (model.DispatchResult, error) {
	log := Logger(ctx)
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	res, err := Fetch(ctx, d.Searcher, d.Filter, wm, FetchOptions{
		Lookback:   d.Lookback,
		MaxResults: d.MaxResults,
		Now:        now(),
	})
	if err != nil {
		log.Error("dispatch: fetch failed", "error", err)
		return model.DispatchResult{Success: false, Message: fmt.Sprintf("fetch failed: %v", err)}, err
	}
	if d.OnFetched != nil {
		d.OnFetched(len(res.Items))
	}
	metrics.Items.WithLabelValues("fetched").Add(float64(len(res.Items)))
	if len(res.Items) == 0 {
		log.Info("dispatch: no new posts")
		return model.DispatchResult{Success: true, Message: "no new posts"}, nil
	}

	matchedCount, pushed := 0, 0
	var delivered []string // on_success only, applied after the loop
	failed := ""           // on_success only, oldest item whose push failed
	for _, it := range res.Items {
		ok, matched := Match(it.Text, d.Filter.Keywords)
		if !ok {
			continue
		}
		matchedCount++
		metrics.Items.WithLabelValues("matched").Inc()

		var author *model.Author
		if a, found := res.AuthorsByID[it.AuthorID]; found {
			author = &a
		}
		msg := d.Formatter.Render(it, author, matched)
		if d.Summarizer != nil {
			if s, err := d.Summarizer.Summarize(ctx, it.Text); err != nil {
				log.Warn("dispatch: summarize failed", "id", it.ID, "error", err)
			} else {
				msg = WithSummary(msg, s)
			}
		}

		if err := d.Pusher.Push(ctx, d.Destination, msg); err != nil {
			metrics.Items.WithLabelValues("push_failed").Inc()
			log.Error("dispatch: push failed", "id", it.ID, "error", err)
			if d.Advance == AdvanceOnSuccess {
				if failed == "" || CompareIDs(it.ID, failed) < 0 {
					failed = it.ID
				}
				continue
			}
		} else {
			pushed++
			metrics.Items.WithLabelValues("pushed").Inc()
			log.Info("dispatch: notification sent", "id", it.ID, "keywords", matched)
		}
		if d.Advance == AdvanceOnSuccess {
			delivered = append(delivered, it.ID)
			continue
		}
		wm.Advance(it.ID)
	}
	advanceBelow(wm, delivered, failed)

	log.Info("dispatch: cycle done", "fetched", len(res.Items), "matched", matchedCount, "pushed", pushed, "watermark", wm.LastSeen())
	return model.DispatchResult{
		Success:        true,
		ProcessedCount: pushed,
		Message:        fmt.Sprintf("processed %d of %d matching posts", pushed, matchedCount),
	}, nil
}

// advanceBelow moves wm to the newest of ids that is older than ceiling, so
// the next since_id still covers the failed item. An empty ceiling means no
// push failed.
func advanceBelow(wm *Watermark, ids []string, ceiling string) {
	for _, id := range ids {
		if ceiling != "" && CompareIDs(id, ceiling) >= 0 {
			continue
		}
		wm.Advance(id)
	}
}

type runIDKey struct{}

// WithRunID tags ctx with a cycle id used in log lines.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the cycle id stored in ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Logger returns the default logger annotated with the cycle id from ctx.
func Logger(ctx context.Context) *slog.Logger {
	if id := RunID(ctx); id != "" {
		return slog.Default().With("run_id", id)
	}
	return slog.Default()
}
