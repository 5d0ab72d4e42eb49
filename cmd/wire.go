package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"tweetwatch/internal/ai"
	"tweetwatch/internal/config"
	"tweetwatch/internal/line"
	"tweetwatch/internal/monitor"
	"tweetwatch/internal/redisclient"
	"tweetwatch/internal/storage"
	"tweetwatch/internal/xapi"
	"tweetwatch/worker"

	"github.com/redis/go-redis/v9"
)

// app holds the collaborators shared by serve and run.
type app struct {
	Scheduler *worker.Scheduler
	Line      *line.Client
	rdb       *redis.Client
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

// filterFromConfig picks author-scoped search when an account is configured.
func filterFromConfig(m config.MonitorConfig) monitor.FilterConfig {
	var f monitor.FilterConfig
	if m.Account != "" {
		f = monitor.AuthorScoped(m.Account, m.Keywords...)
	} else {
		f = monitor.KeywordSearch(m.Keywords...)
	}
	f.Query = m.Query
	return f
}

func newLineClient(cfg config.Config) (*line.Client, error) {
	timeout, err := config.ParseDuration(cfg.Line.Timeout)
	if err != nil {
		return nil, fmt.Errorf("line.timeout: %w", err)
	}
	return line.New(cfg.Line.BaseURL, cfg.Line.ChannelToken, timeout, cfg.Line.RatePerSec), nil
}

// buildApp wires a scheduler from a validated configuration.
func buildApp(cfg config.Config) (*app, error) {
	xTimeout, err := config.ParseDuration(cfg.X.Timeout)
	if err != nil {
		return nil, fmt.Errorf("x.timeout: %w", err)
	}
	lookback, _ := config.ParseDuration(cfg.Monitor.Lookback)
	recovery, _ := config.ParseDuration(cfg.Schedule.RecoveryDelay)
	cycleTimeout, _ := config.ParseDuration(cfg.Schedule.CycleTimeout)
	interval, _ := config.ParseDuration(cfg.Schedule.Interval)

	loc, err := time.LoadLocation(cfg.Monitor.Timezone)
	if err != nil {
		return nil, fmt.Errorf("monitor.timezone: %w", err)
	}
	sched, err := worker.ParseSchedule(cfg.Schedule.Cron, interval)
	if err != nil {
		return nil, fmt.Errorf("schedule.cron: %w", err)
	}
	lc, err := newLineClient(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{Line: lc}
	s := &worker.Scheduler{
		Watermark:     &monitor.Watermark{},
		Schedule:      sched,
		RecoveryDelay: recovery,
		CycleTimeout:  cycleTimeout,
	}
	d := &monitor.Dispatcher{
		Searcher:    xapi.NewClient(cfg.X.BaseURL, cfg.X.BearerToken, xTimeout),
		Pusher:      lc,
		Filter:      filterFromConfig(cfg.Monitor),
		Destination: cfg.Line.GroupID,
		Formatter:   monitor.Formatter{Location: loc, PermalinkBase: cfg.X.PermalinkBase},
		Lookback:    lookback,
		MaxResults:  cfg.Monitor.MaxResults,
		Advance:     monitor.AdvancePolicy(cfg.Monitor.Advance),
		OnFetched:   s.Fetched,
	}

	if cfg.OpenAI.APIKey != "" {
		oa, err := ai.NewOpenAI(ai.Config{
			APIKey:   cfg.OpenAI.APIKey,
			Model:    cfg.OpenAI.Model,
			BaseURL:  cfg.OpenAI.BaseURL,
			Language: cfg.OpenAI.Language,
		})
		if err != nil {
			return nil, err
		}
		d.Summarizer = oa
		slog.Info("openai summaries enabled", "model", cfg.OpenAI.Model)
	}

	if cfg.Redis.Addr != "" {
		a.rdb = redisclient.New(cfg.Redis)
		s.History = storage.NewRedisStore(a.rdb, cfg.Redis.HistorySize)
		slog.Info("cycle history enabled", "redis", cfg.Redis.Addr)
	}

	s.Cycle = d
	a.Scheduler = s
	slog.Info("monitor configured",
		"query", d.Filter.QueryString(),
		"pass_through", d.Filter.PassThrough(),
		"destination", cfg.Line.GroupID,
	)
	return a, nil
}
