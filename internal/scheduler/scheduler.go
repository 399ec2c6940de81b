// Package scheduler runs the recurring maintenance work: warming the
// Redis caches for the year-level reference tables so the first
// calculation of the day does not pay the database round trips.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/paca/jungsi/backend/pkg/logger"
)

// Job is one schedulable unit of work.
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression (seconds field included),
	// e.g. "0 0 5 * * *" for 매일 새벽 5시
	Schedule() string
}

// JobResult records one execution.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron   *cron.Cron
	logger *logger.Logger

	mu      sync.RWMutex
	jobs    map[string]Job
	lastRun map[string]JobResult

	maxRetries int
	retryDelay time.Duration
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds()),
		logger:     log,
		jobs:       make(map[string]Job),
		lastRun:    make(map[string]JobResult),
		maxRetries: 3,
		retryDelay: 1 * time.Minute,
	}
}

// AddJob registers a job with the cron runner.
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already exists", name)
	}

	_, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = job
	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"schedule": job.Schedule(),
	}).Info("스케줄 작업 등록")

	return nil
}

// Start starts the cron runner.
func (s *Scheduler) Start() {
	s.logger.Info("스케줄러 시작")
	s.cron.Start()
}

// Stop stops the cron runner, waiting for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("스케줄러 종료 중")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("스케줄러 종료됨")
}

// RunJob runs a registered job immediately, outside its schedule.
func (s *Scheduler) RunJob(name string) error {
	s.mu.RLock()
	job, exists := s.jobs[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %s not found", name)
	}

	go s.runJob(job)
	return nil
}

// Jobs returns the registered job names.
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// LastResult returns the most recent execution result for a job.
func (s *Scheduler) LastResult(name string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.lastRun[name]
	return res, ok
}

// runJob executes a job with retries.
func (s *Scheduler) runJob(job Job) {
	name := job.Name()
	start := time.Now()

	s.logger.WithField("job", name).Info("스케줄 작업 시작")

	var lastErr error
	success := false
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := job.Run(context.Background()); err == nil {
			success = true
			break
		} else {
			lastErr = err
			s.logger.WithFields(map[string]interface{}{
				"job":     name,
				"attempt": attempt + 1,
				"error":   err.Error(),
			}).Warn("스케줄 작업 실패, 재시도 예정")
		}

		if attempt < s.maxRetries {
			time.Sleep(s.retryDelay)
		}
	}

	result := JobResult{
		JobName:   name,
		StartTime: start,
		Duration:  time.Since(start),
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	s.lastRun[name] = result
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
		}).Info("스케줄 작업 완료")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      name,
			"duration": result.Duration,
			"error":    result.Error,
		}).Error("스케줄 작업이 재시도 후에도 실패")
	}
}
