package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
	"github.com/jsamuelsen/quote-keeper/internal/ports"
)

// Trigger says what started a sync cycle.
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerTimer   Trigger = "timer"
	TriggerManual  Trigger = "manual"
)

// Cycle outcomes reported to the observer.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	defaultPageSize = 10
	defaultInterval = 15 * time.Second

	msgSyncFailed = "Sync failed: could not reach the server."
)

// CycleReport describes one finished sync cycle.
type CycleReport struct {
	ID        uint64
	Trigger   Trigger
	Started   time.Time
	Finished  time.Time
	Fetched   int
	Added     int
	Conflicts int
	Err       error
}

// Duration is how long the cycle ran.
func (r CycleReport) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Outcome is OutcomeSuccess or OutcomeFailure.
func (r CycleReport) Outcome() string {
	if r.Err != nil {
		return OutcomeFailure
	}

	return OutcomeSuccess
}

// SyncServiceConfig contains the dependencies of the sync engine.
type SyncServiceConfig struct {
	Quotes   *QuoteService
	Remote   ports.RemoteQuoteSource
	Observer ports.SyncObserver
	Logger   *slog.Logger

	// Interval between timer cycles. Defaults to 15s.
	Interval time.Duration

	// PageSize is how many remote quotes a cycle fetches. Defaults to 10.
	PageSize int

	// RunOnStartup runs a cycle as soon as Run starts.
	RunOnStartup bool
}

// SyncService reconciles the local collection with the remote list.
// Cycles never overlap: a trigger that arrives while a cycle is running
// waits for that cycle and shares its report.
type SyncService struct {
	quotes       *QuoteService
	remote       ports.RemoteQuoteSource
	observer     ports.SyncObserver
	logger       *slog.Logger
	interval     time.Duration
	pageSize     int
	runOnStartup bool
	now          func() time.Time

	group    singleflight.Group
	inflight sync.WaitGroup
	cycles   atomic.Uint64
	last     atomic.Pointer[CycleReport]
}

// NewSyncService panics if Quotes or Remote is nil.
func NewSyncService(cfg SyncServiceConfig) *SyncService {
	if cfg.Quotes == nil {
		panic("SyncService: Quotes is required")
	}

	if cfg.Remote == nil {
		panic("SyncService: Remote is required")
	}

	s := &SyncService{
		quotes:       cfg.Quotes,
		remote:       cfg.Remote,
		observer:     cfg.Observer,
		logger:       cfg.Logger,
		interval:     cfg.Interval,
		pageSize:     cfg.PageSize,
		runOnStartup: cfg.RunOnStartup,
		now:          time.Now,
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.interval <= 0 {
		s.interval = defaultInterval
	}

	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}

	return s
}

// Sync runs a cycle, or joins the one in flight. If ctx ends first Sync
// returns ctx.Err(), but the cycle itself keeps running to completion.
// The returned error is the cycle's error, if any.
func (s *SyncService) Sync(ctx context.Context, trigger Trigger) (CycleReport, error) {
	s.inflight.Add(1)

	shared := s.group.DoChan("sync", func() (any, error) {
		report := s.runCycle(context.WithoutCancel(ctx), trigger)

		return report, report.Err
	})

	ch := make(chan singleflight.Result, 1)
	go func() {
		defer s.inflight.Done()
		ch <- <-shared
	}()

	select {
	case <-ctx.Done():
		return CycleReport{}, ctx.Err()
	case res := <-ch:
		report, _ := res.Val.(CycleReport)
		if res.Shared {
			logging.FromContext(ctx).DebugContext(ctx, "joined in-flight sync cycle", slog.Uint64("sync_cycle", report.ID))
		}

		return report, res.Err
	}
}

// Wait blocks until every cycle started through Sync has finished, including
// cycles whose callers stopped waiting.
func (s *SyncService) Wait() {
	s.inflight.Wait()
}

// LastReport returns the most recently finished cycle.
func (s *SyncService) LastReport() (CycleReport, bool) {
	if r := s.last.Load(); r != nil {
		return *r, true
	}

	return CycleReport{}, false
}

// Interval returns the timer period.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}

// Run optionally syncs once, then syncs on every tick until ctx is done.
// Cycle failures are reported, never returned.
func (s *SyncService) Run(ctx context.Context) error {
	ctx = logging.WithContext(ctx, s.logger.With(slog.String("component", "sync")))

	s.logger.InfoContext(ctx, "sync loop started",
		slog.Duration("interval", s.interval),
		slog.Int("page_size", s.pageSize))

	if s.runOnStartup {
		_, _ = s.Sync(ctx, TriggerStartup)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sync loop stopped")

			return nil
		case <-ticker.C:
			_, _ = s.Sync(ctx, TriggerTimer)
		}
	}
}

func (s *SyncService) runCycle(ctx context.Context, trigger Trigger) CycleReport {
	id := s.cycles.Add(1)
	ctx = logging.WithCycleID(ctx, id)
	logger := logging.FromContext(ctx)

	report := CycleReport{ID: id, Trigger: trigger, Started: s.now()}

	logger.InfoContext(ctx, "sync cycle started", slog.String("trigger", string(trigger)))

	remote, err := runPhase(ctx, id, PhaseFetch, func(ctx context.Context) ([]domain.Quote, error) {
		return s.remote.FetchQuotes(ctx, s.pageSize)
	})
	if err != nil {
		report.Err = err
		s.quotes.Notify(ctx, ports.Notification{Level: ports.NotificationWarning, Message: msgSyncFailed})

		return s.finish(ctx, report)
	}

	report.Fetched = len(remote)

	result, _ := runPhase(ctx, id, PhaseReconcile, func(ctx context.Context) (domain.MergeResult, error) {
		return s.quotes.Reconcile(ctx, remote), nil
	})

	report.Added = result.Added
	report.Conflicts = result.Conflicts
	s.quotes.Notify(ctx, ports.Notification{Level: ports.NotificationInfo, Message: result.Summary()})

	return s.finish(ctx, report)
}

func (s *SyncService) finish(ctx context.Context, report CycleReport) CycleReport {
	report.Finished = s.now()
	s.last.Store(&report)

	if s.observer != nil {
		s.observer.ObserveCycle(ctx, report.Outcome(), report.Duration(), report.Added, report.Conflicts)
	}

	logging.FromContext(ctx).InfoContext(ctx, "sync cycle finished",
		slog.String("outcome", report.Outcome()),
		slog.Int("fetched", report.Fetched),
		slog.Int("added", report.Added),
		slog.Int("conflicts", report.Conflicts),
		slog.Duration("duration", report.Duration()))

	return report
}

// Pusher sends locally added quotes to the remote in the background.
// It implements ports.QuotePublisher.
type Pusher struct {
	remote   ports.RemoteQuoteSource
	notifier ports.Notifier
	logger   *slog.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewPusher panics if remote is nil. A nil notifier discards failures.
func NewPusher(remote ports.RemoteQuoteSource, notifier ports.Notifier, logger *slog.Logger, timeout time.Duration) *Pusher {
	if remote == nil {
		panic("Pusher: remote is required")
	}

	if notifier == nil {
		notifier = ports.NopNotifier{}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Pusher{remote: remote, notifier: notifier, logger: logger, timeout: timeout}
}

// Publish pushes q on its own goroutine and returns immediately. The push
// outlives ctx's cancellation but is bounded by the pusher's timeout.
func (p *Pusher) Publish(ctx context.Context, q domain.Quote) {
	ctx = context.WithoutCancel(ctx)

	p.wg.Go(func() {
		if p.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		if err := p.remote.PushQuote(ctx, q); err != nil {
			p.logger.WarnContext(ctx, "push failed",
				slog.String("quote_id", q.ID),
				slog.Any("error", err))
			p.notifier.Notify(ctx, ports.Notification{
				Level:   ports.NotificationWarning,
				Message: "Could not send the new quote to the server.",
				Time:    time.Now(),
			})

			return
		}

		p.logger.DebugContext(ctx, "quote pushed", slog.String("quote_id", q.ID))
	})
}

// Wait blocks until every in-flight push has finished.
func (p *Pusher) Wait() {
	p.wg.Wait()
}
