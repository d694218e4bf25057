package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultTickInterval is how often the scheduler checks for due tasks
const defaultTickInterval = 1 * time.Minute

// ErrSchedulerNotRunning is returned when a manual trigger hits a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// ErrUnknownTask is returned when a manual trigger names an unregistered task
var ErrUnknownTask = errors.New("unknown task")

// Config holds the scheduled-procedure runner configuration
type Config struct {
	Enabled       bool
	TickInterval  time.Duration
	TaskTimeout   time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		TickInterval:  defaultTickInterval,
		TaskTimeout:   10 * time.Minute,
		RetryAttempts: 3,
		RetryDelay:    5 * time.Minute,
	}
}

// Task is one scheduled procedure: a name, a fire time and the procedure
// itself. Procedures are idempotent, so a retry after a partial failure is
// always safe.
type Task struct {
	Name   string
	Day    int // 1-31 for monthly tasks, 0 fires every day
	Hour   int // 0-23
	Minute int // 0-59
	Run    func(ctx context.Context) error
}

// taskState tracks per-task execution bookkeeping
type taskState struct {
	task      Task
	lastRunAt *time.Time
	lastError error
}

// ProcedureScheduler runs the registered reconciliation procedures at their
// daily fire times. One procedure runs at a time: the batch passes touch
// overlapping tables and gain nothing from racing each other.
type ProcedureScheduler struct {
	config Config
	logger *zap.Logger

	mu        sync.Mutex
	tasks     map[string]*taskState
	order     []string
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewProcedureScheduler creates a new ProcedureScheduler
func NewProcedureScheduler(config Config, logger *zap.Logger) *ProcedureScheduler {
	return &ProcedureScheduler{
		config: config,
		logger: logger.Named("scheduler"),
		tasks:  make(map[string]*taskState),
	}
}

// Register adds a task to the schedule. Must be called before Start.
func (s *ProcedureScheduler) Register(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.Name]; exists {
		return
	}
	s.tasks[task.Name] = &taskState{task: task}
	s.order = append(s.order, task.Name)
}

// Start starts the scheduler loop
func (s *ProcedureScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("procedure scheduler started",
		zap.Int("tasks", len(s.order)),
	)
	return nil
}

// Stop stops the scheduler, waiting for a running task to finish
func (s *ProcedureScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("procedure scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("procedure scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerNow runs one task immediately, outside its schedule
func (s *ProcedureScheduler) TriggerNow(ctx context.Context, name string) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	state, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownTask
	}

	s.runTask(ctx, state)
	return nil
}

// LastRun returns when the named task last ran and its last error
func (s *ProcedureScheduler) LastRun(name string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.tasks[name]
	if !ok {
		return nil, ErrUnknownTask
	}
	return state.lastRunAt, state.lastError
}

// loop is the main ticker loop
func (s *ProcedureScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	interval := s.config.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, name := range s.orderedDue(now) {
				s.mu.Lock()
				state := s.tasks[name]
				s.mu.Unlock()
				s.runTask(ctx, state)
			}
		}
	}
}

// orderedDue returns the names of tasks whose fire time matches now,
// in registration order
func (s *ProcedureScheduler) orderedDue(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []string
	for _, name := range s.order {
		t := s.tasks[name].task
		if t.Day != 0 && now.Day() != t.Day {
			continue
		}
		if now.Hour() == t.Hour && now.Minute() == t.Minute {
			due = append(due, name)
		}
	}
	return due
}

// runTask runs one task with timeout and retries
func (s *ProcedureScheduler) runTask(ctx context.Context, state *taskState) {
	name := state.task.Name
	started := time.Now()

	var err error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			s.logger.Warn("retrying task",
				zap.String("task", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.config.RetryDelay):
			}
		}

		taskCtx, cancel := context.WithTimeout(ctx, s.config.TaskTimeout)
		err = state.task.Run(taskCtx)
		cancel()
		if err == nil {
			break
		}
	}

	s.mu.Lock()
	state.lastRunAt = &started
	state.lastError = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("task failed after retries",
			zap.String("task", name),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("task completed",
		zap.String("task", name),
		zap.Duration("duration", time.Since(started)),
	)
}
