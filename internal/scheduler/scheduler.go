package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
)

const (
	JobScheduleRefresh = "schedule_refresh"
	JobMonitor         = "monitor"
	JobCleanup         = "cache_cleanup"

	defaultRefreshHour     = 8
	defaultMonitorInterval = 30 * time.Second
	defaultStartHour       = 12
	defaultEndHour         = 3
	cleanupCron            = "0 * * * *"
)

// ScheduleSource rebuilds the daily schedule and purges stale cache entries.
type ScheduleSource interface {
	InitializeTodaysGames(ctx context.Context) error
	CleanupCache() int
}

// Checker runs one monitoring pass; false means the pass was skipped.
type Checker interface {
	CheckGames(ctx context.Context) bool
}

// Config holds the job timings. Hours are interpreted in Location.
type Config struct {
	Location         *time.Location
	DailyRefreshHour int
	MonitorInterval  time.Duration
	MonitorStartHour int
	MonitorEndHour   int
}

// DefaultConfig returns the standard cadence: refresh at 08:00, monitor every
// 30s between 12:00 and 03:59.
func DefaultConfig() Config {
	return Config{
		Location:         time.UTC,
		DailyRefreshHour: defaultRefreshHour,
		MonitorInterval:  defaultMonitorInterval,
		MonitorStartHour: defaultStartHour,
		MonitorEndHour:   defaultEndHour,
	}
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.MonitorInterval <= 0 {
		c.MonitorInterval = defaultMonitorInterval
	}
	return c
}

// Status describes the recent health of the schedule refresh.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
	LastCheck           time.Time `json:"lastCheck"`
	LastCleanup         time.Time `json:"lastCleanup"`
	Running             bool      `json:"running"`
}

// IsReady reports whether the schedule has loaded and refreshes are not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// Scheduler owns the daily refresh, the gated monitoring tick and the hourly
// cache cleanup.
type Scheduler struct {
	source  ScheduleSource
	checker Checker
	logger  *slog.Logger
	metrics *metrics.Recorder
	cfg     Config
	now     func() time.Time

	cron *gocron.Scheduler

	startMu  sync.Mutex
	started  bool
	stopOnce sync.Once
	runCtx   context.Context
	cancel   context.CancelFunc

	statusMu sync.RWMutex
	status   Status
}

// New registers the jobs without starting them.
func New(source ScheduleSource, checker Checker, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	s := &Scheduler{
		source:  source,
		checker: checker,
		logger:  logger,
		metrics: recorder,
		cfg:     cfg,
		now:     time.Now,
		cron:    gocron.NewScheduler(cfg.Location),
		runCtx:  context.Background(),
		cancel:  func() {},
	}

	at := fmt.Sprintf("%02d:00", cfg.DailyRefreshHour)
	if _, err := s.cron.Every(1).Day().At(at).WaitForSchedule().Do(s.refreshJob); err != nil {
		return nil, fmt.Errorf("schedule %s job: %w", JobScheduleRefresh, err)
	}
	if _, err := s.cron.Every(cfg.MonitorInterval).SingletonMode().Do(s.monitorJob); err != nil {
		return nil, fmt.Errorf("schedule %s job: %w", JobMonitor, err)
	}
	if _, err := s.cron.Cron(cleanupCron).Do(s.cleanupJob); err != nil {
		return nil, fmt.Errorf("schedule %s job: %w", JobCleanup, err)
	}
	return s, nil
}

// Start warms the schedule and then starts the jobs, until ctx is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.runCtx, s.cancel = context.WithCancel(ctx)
	runCtx := s.runCtx
	s.startMu.Unlock()

	go func() {
		logging.Info(s.logger, "scheduler started",
			"refresh_hour", s.cfg.DailyRefreshHour,
			"monitor_interval", s.cfg.MonitorInterval.String(),
			"monitor_hours", fmt.Sprintf("%02d-%02d", s.cfg.MonitorStartHour, s.cfg.MonitorEndHour),
		)
		// Initial refresh to warm the schedule on boot.
		_ = s.RefreshSchedule(runCtx)
		if runCtx.Err() != nil {
			return
		}

		s.startMu.Lock()
		stopped := !s.started
		if !stopped {
			s.cron.StartAsync()
			s.setRunning(true)
		}
		s.startMu.Unlock()

		<-runCtx.Done()
		s.shutdown()
	}()
}

// Stop halts every job and waits for running ones to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	_ = ctx
	s.startMu.Lock()
	s.started = false
	cancel := s.cancel
	s.startMu.Unlock()

	cancel()
	s.shutdown()
	return nil
}

func (s *Scheduler) shutdown() {
	s.stopOnce.Do(func() {
		s.cron.Stop()
		s.setRunning(false)
		logging.Info(s.logger, "scheduler stopped")
	})
}

// RefreshSchedule rebuilds today's schedule and records the outcome.
func (s *Scheduler) RefreshSchedule(ctx context.Context) error {
	start := time.Now()
	s.recordAttempt(s.now())
	err := s.source.InitializeTodaysGames(ctx)
	s.metrics.RecordJobRun(JobScheduleRefresh, time.Since(start), err)
	if err != nil {
		logging.Error(s.logger, "schedule refresh failed", err,
			logging.FieldJob, JobScheduleRefresh,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
		s.recordFailure(err)
		return err
	}
	s.recordSuccess(s.now())
	logging.Info(s.logger, "schedule refreshed",
		logging.FieldJob, JobScheduleRefresh,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

// CheckNow runs one monitoring pass regardless of the active hours.
func (s *Scheduler) CheckNow(ctx context.Context) bool {
	start := time.Now()
	ran := s.checker.CheckGames(ctx)
	s.metrics.RecordJobRun(JobMonitor, time.Since(start), nil)
	if ran {
		s.statusMu.Lock()
		s.status.LastCheck = s.now()
		s.statusMu.Unlock()
	}
	return ran
}

// Cleanup purges stale cache entries and returns how many were removed.
func (s *Scheduler) Cleanup() int {
	start := time.Now()
	removed := s.source.CleanupCache()
	s.metrics.RecordJobRun(JobCleanup, time.Since(start), nil)

	s.statusMu.Lock()
	s.status.LastCleanup = s.now()
	s.statusMu.Unlock()

	logging.Info(s.logger, "cache cleanup completed", logging.FieldJob, JobCleanup, logging.FieldCount, removed)
	return removed
}

// InActiveHours reports whether the monitoring tick should run now.
func (s *Scheduler) InActiveHours() bool {
	hour := s.now().In(s.cfg.Location).Hour()
	return inHours(hour, s.cfg.MonitorStartHour, s.cfg.MonitorEndHour)
}

// inHours checks hour against an inclusive range that may wrap midnight.
func inHours(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

func (s *Scheduler) refreshJob() {
	_ = s.RefreshSchedule(s.context())
}

func (s *Scheduler) monitorJob() {
	if !s.InActiveHours() {
		logging.Debug(s.logger, "outside monitoring hours, skipping tick", logging.FieldJob, JobMonitor)
		return
	}
	s.CheckNow(s.context())
}

func (s *Scheduler) cleanupJob() {
	s.Cleanup()
}

func (s *Scheduler) context() context.Context {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	return s.runCtx
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Jobs())
}

func (s *Scheduler) setRunning(running bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Running = running
}

func (s *Scheduler) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastAttempt = at
}

func (s *Scheduler) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
}

func (s *Scheduler) recordFailure(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	if err != nil {
		s.status.LastError = err.Error()
	}
}

// Status returns a snapshot of the scheduler's recent health.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
