package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is a recurring unit of background work.
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// Scheduler runs each registered task on its own ticker until stopped.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	tasks  []Task
	wg     sync.WaitGroup
}

// New creates a scheduler bound to the given parent context.
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddTask registers a task. Not safe to call after Start.
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start launches every registered task in its own goroutine.
func (s *Scheduler) Start() {
	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.runTask(task)
	}
	slog.Info("Scheduler started", "task_count", len(s.tasks))
}

// Stop cancels all tasks and waits for them to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Scheduler stopped")
}

// runTask drives a single task on its interval. Task errors are logged,
// never fatal to the loop.
func (s *Scheduler) runTask(task Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(task.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := task.Run(s.ctx); err != nil {
				slog.Error("Task failed", "task", task.Name(), "error", err)
			}
		}
	}
}
