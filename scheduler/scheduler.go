// Package scheduler defers and repeats voice commands: a scheduled task fires
// its command through the planner and executor on the scheduler's goroutines.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/types"
)

// Planner turns a command into a plan. planner.Cascade satisfies this.
type Planner interface {
	Plan(ctx context.Context, command string) types.Plan
}

// Runner executes a plan. executor.Executor satisfies this.
type Runner interface {
	Execute(ctx context.Context, plan types.Plan) (<-chan struct{}, error)
}

// Task is one scheduled command. Zero Repeat means one-shot.
type Task struct {
	ID      string
	Command string
	Delay   time.Duration
	Repeat  time.Duration
}

// ErrStopped is returned by Schedule after Stop.
var ErrStopped = errors.New("scheduler: stopped")

type entry struct {
	task   Task
	cancel context.CancelFunc
}

// Scheduler owns the timers for scheduled tasks. Safe for concurrent use.
type Scheduler struct {
	planner Planner
	runner  Runner
	log     *logger.Logger

	mu      sync.Mutex
	tasks   map[string]*entry
	stopped bool
	wg      sync.WaitGroup
}

// New builds a Scheduler wired to the given planner and runner.
func New(planner Planner, runner Runner) *Scheduler {
	return &Scheduler{
		planner: planner,
		runner:  runner,
		log:     logger.New("scheduler"),
		tasks:   make(map[string]*entry),
	}
}

// Schedule registers task and returns its id, generating one when unset.
// Scheduling an existing id replaces the prior timer.
func (s *Scheduler) Schedule(task Task) (string, error) {
	if task.Command == "" {
		return "", errors.New("scheduler: empty command")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	if old, ok := s.tasks[task.ID]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{task: task, cancel: cancel}
	s.tasks[task.ID] = e
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runTask(ctx, task, e)
	s.log.Info("scheduled %q in %s (repeat %s)", task.Command, task.Delay, task.Repeat)
	return task.ID, nil
}

// ScheduleAt schedules command for the next occurrence of hh:mm local time,
// rolling to tomorrow when the time has already passed today.
func (s *Scheduler) ScheduleAt(command string, hour, minute int) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", errors.New("scheduler: invalid time")
	}
	now := time.Now()
	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.Add(24 * time.Hour)
	}
	return s.Schedule(Task{Command: command, Delay: time.Until(at)})
}

// Cancel stops the task's timer. Unknown ids are ignored.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	e, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	if ok {
		e.cancel()
		s.log.Info("cancelled task %s", id)
	}
}

// Tasks returns the currently registered tasks.
func (s *Scheduler) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, e := range s.tasks {
		out = append(out, e.task)
	}
	return out
}

// Stop cancels all tasks and waits for in-flight firings to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, e := range s.tasks {
		e.cancel()
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, task Task, e *entry) {
	defer s.wg.Done()
	defer s.forget(task.ID, e)

	if task.Delay > 0 {
		t := time.NewTimer(task.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}

	s.fire(ctx, task)
	if task.Repeat <= 0 {
		return
	}

	tick := time.NewTicker(task.Repeat)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.fire(ctx, task)
		}
	}
}

// fire plans and executes one occurrence, waiting for the execution to end so
// repeats never overlap their own runs.
func (s *Scheduler) fire(ctx context.Context, task Task) {
	if ctx.Err() != nil {
		return
	}
	s.log.Info("firing scheduled command %q", task.Command)
	plan := s.planner.Plan(ctx, task.Command)
	if len(plan) == 0 {
		s.log.Warn("scheduled command %q produced no actions", task.Command)
		return
	}
	done, err := s.runner.Execute(ctx, plan)
	if err != nil {
		s.log.Error("scheduled command %q not executed: %v", task.Command, err)
		return
	}
	select {
	case <-ctx.Done():
	case <-done:
	}
}

// forget drops the entry only if it is still the registered one, so a
// replacement scheduled under the same id survives the old timer's exit.
func (s *Scheduler) forget(id string, e *entry) {
	s.mu.Lock()
	if cur, ok := s.tasks[id]; ok && cur == e {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
}
