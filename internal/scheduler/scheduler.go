// Package scheduler runs the periodic background jobs of the API binary:
// the recurring bill sweep, the budget alert sweep and the rate refresh.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
	"github.com/SscSPs/finance_ledger/internal/platform/config"
	"golang.org/x/sync/errgroup"
)

// JobFunc performs one run of a job for the tick time now.
type JobFunc func(ctx context.Context, now time.Time) error

type job struct {
	name     string
	interval time.Duration
	run      JobFunc
}

// Scheduler runs each registered job on its own ticker.
type Scheduler struct {
	jobs   []job
	logger *slog.Logger
	now    func() time.Time
}

func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger, now: time.Now}
}

// Add registers a job. A non-positive interval disables it.
func (s *Scheduler) Add(name string, interval time.Duration, run JobFunc) {
	if interval <= 0 {
		s.logger.Info("Scheduled job disabled", slog.String("job", name))
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Jobs returns the names of the enabled jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, j := range s.jobs {
		names[i] = j.name
	}
	return names
}

// Run starts every job and blocks until ctx is cancelled. Jobs run once
// immediately and then on every tick. Job errors are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, j := range s.jobs {
		j := j
		g.Go(func() error {
			s.loop(ctx, j)
			return nil
		})
	}
	s.logger.Info("Scheduler started", slog.Int("jobs", len(s.jobs)))
	err := g.Wait()
	s.logger.Info("Scheduler stopped")
	return err
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	logger := s.logger.With(slog.String("job", j.name))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	s.runOnce(ctx, logger, j, s.now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, logger, j, s.now())
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, logger *slog.Logger, j job, now time.Time) {
	start := time.Now()
	if err := j.run(ctx, now); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("Scheduled job failed", slog.String("error", err.Error()))
		return
	}
	logger.Debug("Scheduled job finished",
		slog.Duration("took", time.Since(start)),
		slog.Time("next_run", now.Add(j.interval)))
}

// Jobs wired by NewFromConfig.
const (
	JobBillSweep   = "recurring_bill_sweep"
	JobBudgetSweep = "budget_alert_sweep"
	JobRateRefresh = "exchange_rate_refresh"
)

// NewFromConfig registers the standard jobs. A nil service disables its job.
func NewFromConfig(
	cfg *config.Config,
	logger *slog.Logger,
	bills portssvc.RecurringBillEngineSvc,
	budgets portssvc.BudgetAlerter,
	rates portssvc.ExchangeRateWriterSvc,
) *Scheduler {
	s := New(logger)

	if bills != nil {
		s.Add(JobBillSweep, cfg.BillSweepInterval, func(ctx context.Context, now time.Time) error {
			report, err := bills.SweepDueBills(ctx, now)
			if err != nil {
				return err
			}
			s.logger.Info("Recurring bill sweep complete",
				slog.Int("selected", report.Selected),
				slog.Int("generated", report.Generated),
				slog.Int("skipped", report.Skipped),
				slog.Int("advanced", report.Advanced),
				slog.Int("failed", report.Failed))
			return nil
		})
	}

	if budgets != nil {
		s.Add(JobBudgetSweep, cfg.BudgetSweepInterval, func(ctx context.Context, now time.Time) error {
			sent, err := budgets.CheckBudgetAlerts(ctx, now)
			if err != nil {
				return err
			}
			s.logger.Info("Budget alert sweep complete", slog.Int("alerts", sent))
			return nil
		})
	}

	if rates != nil && cfg.RatesBaseCurrency != "" && len(cfg.RatesTargetCurrencies) > 0 {
		s.Add(JobRateRefresh, cfg.RateRefreshInterval, func(ctx context.Context, _ time.Time) error {
			stored, err := rates.FetchAndStoreRates(ctx, cfg.RatesBaseCurrency, cfg.RatesTargetCurrencies)
			if err != nil {
				return err
			}
			s.logger.Info("Exchange rates refreshed",
				slog.String("base", cfg.RatesBaseCurrency),
				slog.Int("stored", stored))
			return nil
		})
	}

	return s
}
