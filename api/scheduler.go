/*
scheduler.go - Automated month-close scheduler

PURPOSE:
  Periodically closes the previous calendar month: every active employee's
  punches are classified against their roster, summarized, and the summary
  is persisted for payroll.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Skips a month that already has a completed run
  - Fans out across employees with a bounded errgroup (Workers)
  - One employee's failure is recorded on the run and never aborts the batch
  - Records a run row per batch for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to check (default: 24 hours)
  - Workers: Concurrent employees per run (default: 4)
  - Enabled: Whether the background loop starts (default: true)

USAGE:
  scheduler := handler.MonthClose
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ProcessMonthClose endpoint (manual month close)
  - attendance/summary.go: ClassifyPeriod and Summarize
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/warp/hr-engine/attendance"
	"github.com/warp/hr-engine/generic"
	"github.com/warp/hr-engine/store/sqlite"
	"golang.org/x/sync/errgroup"
)

// MonthCloseScheduler handles automated month close.
type MonthCloseScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	Logger        *slog.Logger
	CheckInterval time.Duration
	Workers       int
	Enabled       bool

	ticker *time.Ticker
	cancel context.CancelFunc
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	closing sync.Mutex // held for the duration of one CloseMonth
}

// NewMonthCloseScheduler creates a new scheduler.
func NewMonthCloseScheduler(store *sqlite.Store, handler *Handler, logger *slog.Logger) *MonthCloseScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonthCloseScheduler{
		Store:         store,
		Handler:       handler,
		Logger:        logger.With(slog.String("component", "month_close")),
		CheckInterval: 24 * time.Hour,
		Workers:       4,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (s *MonthCloseScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stop = make(chan struct{})
	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run(ctx)

	s.Logger.Info("scheduler started", slog.Duration("interval", s.CheckInterval), slog.Int("workers", s.Workers))
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (s *MonthCloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		s.cancel()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("scheduler stopped")
	}
}

func (s *MonthCloseScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	// Run immediately on start
	s.checkAndProcess(ctx)

	for {
		select {
		case <-s.ticker.C:
			s.checkAndProcess(ctx)
		case <-s.stop:
			return
		}
	}
}

// checkAndProcess closes the month before today if it is still open.
func (s *MonthCloseScheduler) checkAndProcess(ctx context.Context) {
	month := s.Handler.currentMonth().PreviousMonth()

	closed, err := s.Store.IsMonthClosed(ctx, month.Label())
	if err != nil {
		s.Logger.Error("failed to check month status", slog.String("month", month.Label()), slog.Any("error", err))
		return
	}
	if closed {
		s.Logger.Debug("month already closed", slog.String("month", month.Label()))
		return
	}

	if _, err := s.CloseMonth(ctx, month, false); err != nil {
		s.Logger.Error("month close failed", slog.String("month", month.Label()), slog.Any("error", err))
	}
}

// CloseMonth classifies and summarizes month for every employee on the rolls
// during it. Without force, a month with a completed run returns
// generic.ErrMonthAlreadyClosed. The returned run is persisted.
func (s *MonthCloseScheduler) CloseMonth(ctx context.Context, month generic.Period, force bool) (*sqlite.MonthCloseRun, error) {
	s.closing.Lock()
	defer s.closing.Unlock()

	label := month.Label()
	if !force {
		closed, err := s.Store.IsMonthClosed(ctx, label)
		if err != nil {
			return nil, err
		}
		if closed {
			return nil, fmt.Errorf("%w: %s", generic.ErrMonthAlreadyClosed, label)
		}
	}

	all, err := s.Store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	employees := make([]sqlite.Employee, 0, len(all))
	for _, emp := range all {
		if _, ok := employmentPeriod(&emp, month); ok {
			employees = append(employees, emp)
		}
	}

	started := time.Now().UTC()
	run := &sqlite.MonthCloseRun{
		Month:     label,
		Status:    sqlite.RunRunning,
		Employees: len(employees),
		StartedAt: &started,
	}
	if err := s.Store.SaveMonthCloseRun(ctx, run); err != nil {
		return nil, err
	}
	s.Logger.Info("month close started", slog.String("month", label), slog.String("run_id", run.ID), slog.Int("employees", len(employees)))

	var (
		mu        sync.Mutex
		processed int
		failures  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))
	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.closeEmployee(gctx, &emp, month, run.ID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", emp.ID, err))
				return nil
			}
			processed++
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Strings(failures)
	completed := time.Now().UTC()
	run.Processed = processed
	run.Failed = len(failures)
	run.Errors = failures
	run.CompletedAt = &completed
	run.Status = sqlite.RunCompleted
	if waitErr != nil || (run.Employees > 0 && processed == 0) {
		run.Status = sqlite.RunFailed
	}
	if waitErr != nil {
		run.Errors = append(run.Errors, waitErr.Error())
	}

	// The run record outlives a cancelled request context.
	if err := s.Store.SaveMonthCloseRun(context.WithoutCancel(ctx), run); err != nil {
		return nil, err
	}

	s.Logger.Info("month close finished",
		slog.String("month", label),
		slog.String("run_id", run.ID),
		slog.String("status", run.Status),
		slog.Int("processed", run.Processed),
		slog.Int("failed", run.Failed),
	)
	return run, nil
}

func (s *MonthCloseScheduler) closeEmployee(ctx context.Context, emp *sqlite.Employee, month generic.Period, runID string) error {
	cm, err := s.Handler.classifyMonth(ctx, emp, month)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(attendance.Statuses))
	for status, n := range cm.Summary.StatusCounts {
		counts[string(status)] = n
	}
	return s.Store.SaveMonthSummary(ctx, sqlite.MonthSummary{
		EmployeeID:   emp.ID,
		Month:        month.Label(),
		RosterID:     string(cm.Roster.ID),
		StatusCounts: counts,
		WorkingDays:  cm.Summary.WorkingDays,
		WorkHours:    cm.Summary.WorkHours,
		Overtime:     cm.Summary.Overtime,
		Flagged:      cm.Summary.Flagged,
		RunID:        runID,
	})
}
