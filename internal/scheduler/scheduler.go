package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kodbot/internal/domain"
	"kodbot/internal/metrics"

	"github.com/robfig/cron/v3"
)

const (
	PollSpec              = "* * * * *"
	Timezone              = "Asia/Ashgabat"
	TimezoneOffsetSeconds = 5 * 60 * 60

	pollInterval         = time.Minute
	defaultFiringTimeout = 10 * time.Minute
	dateLayout           = "2006-01-02"
)

// Location is the fixed deployment timezone.
func Location() *time.Location {
	return time.FixedZone(Timezone, TimezoneOffsetSeconds)
}

// Runner runs the pipeline for one scheduled slot.
type Runner interface {
	PublishScheduled(ctx context.Context, entry domain.ScheduleEntry) error
}

type slot struct {
	entry domain.ScheduleEntry
	// lastFired is the local date of the last firing, so the slot re-arms at
	// local midnight.
	lastFired string
}

type Scheduler struct {
	ctx           context.Context
	cron          *cron.Cron
	runner        Runner
	loc           *time.Location
	firingTimeout time.Duration
	metrics       *metrics.Collector
	log           *slog.Logger

	mu    sync.Mutex
	slots []*slot
	wg    sync.WaitGroup
}

func New(
	ctx context.Context,
	runner Runner,
	entries []domain.ScheduleEntry,
	firingTimeout time.Duration,
	metrics *metrics.Collector,
	log *slog.Logger,
) *Scheduler {
	loc := Location()
	cronLog := cronLogger{log: log}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if firingTimeout <= 0 {
		firingTimeout = defaultFiringTimeout
	}

	return &Scheduler{
		ctx:           ctx,
		cron:          c,
		runner:        runner,
		loc:           loc,
		firingTimeout: firingTimeout,
		metrics:       metrics,
		log:           log,
		slots:         newSlots(entries),
	}
}

func newSlots(entries []domain.ScheduleEntry) []*slot {
	seen := make(map[domain.ScheduleEntry]struct{}, len(entries))
	slots := make([]*slot, 0, len(entries))

	for _, entry := range entries {
		if _, ok := seen[entry]; ok {
			continue
		}

		seen[entry] = struct{}{}
		slots = append(slots, &slot{entry: entry})
	}

	return slots
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(PollSpec, func() { s.tick(time.Now()) }); err != nil {
		return fmt.Errorf("add poll func: %w", err)
	}

	s.cron.Start()

	return nil
}

// Stop ends polling and waits for in-flight firings until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.InfoContext(ctx, "In-flight firings are finished")
	case <-ctx.Done():
		s.log.WarnContext(ctx, "In-flight firings are abandoned",
			"error", ctx.Err())
	}
}

func (s *Scheduler) Clocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	clocks := make([]string, 0, len(s.slots))
	for _, sl := range s.slots {
		clocks = append(clocks, sl.entry.Clock())
	}

	return clocks
}

// tick fires every slot due at now without waiting for the firings.
func (s *Scheduler) tick(now time.Time) {
	select {
	case <-s.ctx.Done():
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	default:
	}

	for _, entry := range s.due(now.In(s.loc)) {
		s.wg.Add(1)
		go s.fire(entry)
	}
}

func (s *Scheduler) due(now time.Time) []domain.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.Format(dateLayout)

	var due []domain.ScheduleEntry
	for _, sl := range s.slots {
		if sl.lastFired == today {
			continue
		}

		start := sl.entry.On(now)
		if now.Before(start) || !now.Before(start.Add(pollInterval)) {
			continue
		}

		sl.lastFired = today
		due = append(due, sl.entry)
	}

	return due
}

func (s *Scheduler) fire(entry domain.ScheduleEntry) {
	defer s.wg.Done()

	// Stopping the scheduler must not cancel a firing already in flight.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), s.firingTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			s.log.ErrorContext(ctx, "Scheduled firing panicked",
				"panic", fmt.Sprint(p),
				"slot", entry.Clock())
		}
	}()

	s.metrics.ObserveFiring(entry.Clock())

	if err := s.runner.PublishScheduled(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "Scheduled firing failed",
			"error", err,
			"slot", entry.Clock())
	}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{"error", err}, keysAndValues...)...)
}
