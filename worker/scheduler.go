package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tweetwatch/internal/metrics"
	"tweetwatch/internal/model"
	"tweetwatch/internal/monitor"
	"tweetwatch/internal/xapi"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// State is the scheduler's position in its cycle.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateDispatching
	StateSleeping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDispatching:
		return "dispatching"
	case StateSleeping:
		return "sleeping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Trigger names the source of a cycle in logs and history.
const (
	TriggerLoop  = "loop"
	TriggerHTTP  = "http"
	TriggerEvent = "event"
	TriggerCLI   = "cli"
)

// Cycle runs one dispatch cycle against a watermark.
type Cycle interface {
	Run(ctx context.Context, wm *monitor.Watermark) (model.DispatchResult, error)
}

// HistoryRecorder persists cycle records.
type HistoryRecorder interface {
	RecordCycle(ctx context.Context, rec model.CycleRecord) error
}

// Scheduler runs dispatch cycles one at a time, either on demand (RunOnce)
// or in a loop (Start).
type Scheduler struct {
	Cycle         Cycle
	Watermark     *monitor.Watermark
	Schedule      cron.Schedule   // defaults to every 15 minutes
	RecoveryDelay time.Duration   // wait after an unexpected cycle error, default 60s
	CycleTimeout  time.Duration   // zero means no bound
	History       HistoryRecorder // optional

	mu sync.Mutex // one cycle at a time; guards the watermark read/advance

	stateMu sync.Mutex
	state   State
	resting State // where the loop is when no cycle runs
	busy    bool

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// State reports the current state.
func (s *Scheduler) State() State {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// rest records the loop position; it shows once no cycle is running.
func (s *Scheduler) rest(st State) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.resting = st
	if !s.busy {
		s.state = st
	}
}

func (s *Scheduler) beginCycle() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.busy = true
	s.state = StateFetching
}

func (s *Scheduler) endCycle() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.busy = false
	s.state = s.resting
}

// Fetched moves a running cycle from fetching to dispatching. Wire it to
// monitor.Dispatcher.OnFetched.
func (s *Scheduler) Fetched(int) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.busy {
		s.state = StateDispatching
	}
}

// RunOnce executes exactly one cycle. Panics inside the cycle are recovered
// and returned as errors so a trigger never crashes the process.
func (s *Scheduler) RunOnce(ctx context.Context, trigger string) (model.DispatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	ctx = monitor.WithRunID(ctx, runID)
	if s.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.CycleTimeout)
		defer cancel()
	}
	log := monitor.Logger(ctx)
	log.Info("scheduler: cycle start", "trigger", trigger, "since_id", s.Watermark.LastSeen())

	start := s.clock()
	s.beginCycle()
	res, err := s.safeRun(ctx)
	s.endCycle()
	dur := s.clock().Sub(start)

	metrics.CycleDuration.Observe(dur.Seconds())
	metrics.Cycles.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		log.Error("scheduler: cycle failed", "trigger", trigger, "error", err, "duration", dur)
	} else {
		metrics.LastSuccess.SetToCurrentTime()
		log.Info("scheduler: cycle done", "trigger", trigger, "processed", res.ProcessedCount, "duration", dur)
	}

	if s.History != nil {
		rec := model.CycleRecord{
			RunID:     runID,
			Trigger:   trigger,
			StartedAt: start.UTC(),
			Duration:  dur,
			Result:    res,
			Watermark: s.Watermark.LastSeen(),
		}
		if err != nil {
			rec.Error = err.Error()
		}
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		if herr := s.History.RecordCycle(hctx, rec); herr != nil {
			log.Warn("scheduler: record history failed", "error", herr)
		}
		cancel()
	}
	return res, err
}

func (s *Scheduler) safeRun(ctx context.Context) (res model.DispatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
			res = model.DispatchResult{Success: false, Message: err.Error()}
		}
	}()
	return s.Cycle.Run(ctx, s.Watermark)
}

// Start runs cycles until ctx is cancelled. Cancellation is only observed
// between cycles; a running cycle finishes on a detached context bounded by
// CycleTimeout.
func (s *Scheduler) Start(ctx context.Context) error {
	defer s.rest(StateStopped)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_, err := s.RunOnce(context.WithoutCancel(ctx), TriggerLoop)
		wait := s.nextDelay(err)
		s.rest(StateSleeping)
		slog.Info("scheduler: sleeping", "wait", wait)
		if err := s.doSleep(ctx, wait); err != nil {
			slog.Info("scheduler: stopped", "reason", err)
			return nil
		}
		s.rest(StateIdle)
	}
}

// nextDelay picks the wait after a cycle: search failures and successes
// wait for the next scheduled slot, anything else for the recovery delay.
func (s *Scheduler) nextDelay(err error) time.Duration {
	var fe *xapi.FetchError
	if err != nil && !errors.As(err, &fe) {
		if s.RecoveryDelay > 0 {
			return s.RecoveryDelay
		}
		return 60 * time.Second
	}
	sched := s.Schedule
	if sched == nil {
		sched = cron.Every(15 * time.Minute)
	}
	now := s.clock()
	wait := sched.Next(now).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait
}

func (s *Scheduler) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *Scheduler) doSleep(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var fe *xapi.FetchError
	if errors.As(err, &fe) {
		return "fetch_error"
	}
	return "error"
}

// ParseSchedule returns a cron schedule for expr, or a fixed interval when expr is empty.
func ParseSchedule(expr string, interval time.Duration) (cron.Schedule, error) {
	if expr != "" {
		return cron.ParseStandard(expr)
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return cron.Every(interval), nil
}
