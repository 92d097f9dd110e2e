package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/finsight-ai/finsight/internal/domain"
	"github.com/finsight-ai/finsight/internal/service"
)

const (
	// dailyBatchSize limits how many companies the daily refresh touches so
	// a single run stays inside upstream rate limits.
	dailyBatchSize = 5

	// minFreeDiskBytes is the free space floor for the data dir below which
	// the health check reports failure.
	minFreeDiskBytes = 500 * 1024 * 1024

	scheduleDaily       = "0 9 * * *"
	scheduleWeeklySync  = "0 1 * * 0"
	scheduleHealthCheck = "0 */6 * * *"
)

// BatchExtractor runs extraction over a ticker/period grid.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, tickers []string, periods []domain.Period, onProgress func(service.BatchOutcome)) (*service.BatchSummary, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ScheduledJob describes one registered job and its last run.
type ScheduledJob struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Running   bool       `json:"running"`
}

type scheduledJob struct {
	name     string
	schedule string
	entryID  cron.EntryID
	run      func(ctx context.Context) error

	mu        sync.Mutex
	lastRun   *time.Time
	lastError string
	running   bool
}

// Scheduler runs periodic extraction and health jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*scheduledJob
	timeout time.Duration
}

// NewScheduler registers the standard job set: a daily refresh of the current
// quarter for the leading companies in the registry, a weekly full sync
// covering the previous and current quarters, and a periodic dependency
// health check over the database, the LLM endpoint, and the data dir.
func NewScheduler(extractor BatchExtractor, db Pinger, llm Pinger, dataDir string) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(),
		jobs:    make(map[string]*scheduledJob),
		timeout: 30 * time.Minute,
	}

	s.register("daily-extraction", scheduleDaily, func(ctx context.Context) error {
		return runDailyExtraction(ctx, extractor)
	})
	s.register("weekly-sync", scheduleWeeklySync, func(ctx context.Context) error {
		return runWeeklySync(ctx, extractor)
	})
	s.register("health-check", scheduleHealthCheck, func(ctx context.Context) error {
		return runHealthCheck(ctx, db, llm, dataDir)
	})

	return s
}

func (s *Scheduler) register(name, schedule string, run func(ctx context.Context) error) {
	job := &scheduledJob{name: name, schedule: schedule, run: run}
	s.jobs[name] = job

	entryID, err := s.cron.AddFunc(schedule, func() { s.execute(job) })
	if err != nil {
		// Schedules are compile-time constants; a parse failure is a bug.
		panic(fmt.Sprintf("invalid cron schedule for %s: %v", name, err))
	}
	job.entryID = entryID
}

func (s *Scheduler) execute(job *scheduledJob) {
	job.mu.Lock()
	if job.running {
		job.mu.Unlock()
		log.Printf("Scheduled job %s still running, skipping this tick", job.name)
		return
	}
	job.running = true
	job.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log.Printf("Scheduled job %s starting", job.name)
	err := job.run(ctx)

	now := time.Now().UTC()
	job.mu.Lock()
	job.running = false
	job.lastRun = &now
	if err != nil {
		job.lastError = err.Error()
	} else {
		job.lastError = ""
	}
	job.mu.Unlock()

	if err != nil {
		log.Printf("Scheduled job %s failed: %v", job.name, err)
		return
	}
	log.Printf("Scheduled job %s completed", job.name)
}

// Start begins the cron loop.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("Scheduler started with %d jobs", len(s.jobs))
}

// Stop stops the cron loop and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("Scheduler stopped")
}

// List returns the registered jobs sorted by name.
func (s *Scheduler) List() []ScheduledJob {
	out := make([]ScheduledJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		var nextRun *time.Time
		if next := s.cron.Entry(job.entryID).Next; !next.IsZero() {
			nextRun = &next
		}
		job.mu.Lock()
		out = append(out, ScheduledJob{
			Name:      job.name,
			Schedule:  job.schedule,
			NextRun:   nextRun,
			LastRun:   job.lastRun,
			LastError: job.lastError,
			Running:   job.running,
		})
		job.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow triggers a registered job outside its schedule. The job executes
// asynchronously; its outcome lands in List.
func (s *Scheduler) RunNow(name string) error {
	job, ok := s.jobs[name]
	if !ok {
		return domain.ErrJobNotFound
	}
	go s.execute(job)
	return nil
}

func runDailyExtraction(ctx context.Context, extractor BatchExtractor) error {
	tickers := domain.AllTickers()
	if len(tickers) > dailyBatchSize {
		tickers = tickers[:dailyBatchSize]
	}

	period := domain.CurrentPeriod(time.Now().UTC())
	summary, err := extractor.ExtractBatch(ctx, tickers, []domain.Period{period}, nil)
	if err != nil {
		return err
	}
	log.Printf("Daily extraction: %d stored, %d failed of %d", summary.Stored, summary.Failed, summary.Requested)
	return nil
}

func runWeeklySync(ctx context.Context, extractor BatchExtractor) error {
	current := domain.CurrentPeriod(time.Now().UTC())
	periods := []domain.Period{current.Previous(), current}

	summary, err := extractor.ExtractBatch(ctx, domain.AllTickers(), periods, nil)
	if err != nil {
		return err
	}
	log.Printf("Weekly sync: %d stored, %d failed of %d", summary.Stored, summary.Failed, summary.Requested)
	return nil
}

func runHealthCheck(ctx context.Context, db Pinger, llm Pinger, dataDir string) error {
	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if llm != nil {
		if err := llm.Ping(ctx); err != nil {
			return fmt.Errorf("llm unreachable: %w", err)
		}
	}
	return checkDataDir(ctx, dataDir)
}

// checkDataDir verifies the raw-payload directory is writable and its
// filesystem has room left for new extractions.
func checkDataDir(ctx context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		return fmt.Errorf("data dir unavailable: %w", err)
	}
	if usage.Free < minFreeDiskBytes {
		return fmt.Errorf("low disk space in %s: %d MB free", dir, usage.Free/(1024*1024))
	}
	return nil
}
