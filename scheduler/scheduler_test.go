package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/voxa-project/voxa-agent/types"
)

type fakePlanner struct {
	mu       sync.Mutex
	commands []string
}

func (p *fakePlanner) Plan(_ context.Context, command string) types.Plan {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.commands = append(p.commands, command)
	if command == "nothing" {
		return nil
	}
	return types.Plan{{Type: types.ActionBack, Delay: 1}}
}

func (p *fakePlanner) planned() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.commands))
	copy(out, p.commands)
	return out
}

type fakeRunner struct {
	mu    sync.Mutex
	plans []types.Plan
}

func (r *fakeRunner) Execute(_ context.Context, plan types.Plan) (<-chan struct{}, error) {
	r.mu.Lock()
	r.plans = append(r.plans, plan)
	r.mu.Unlock()
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (r *fakeRunner) executions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.plans)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestScheduleFiresAfterDelay(t *testing.T) {
	planner := &fakePlanner{}
	runner := &fakeRunner{}
	s := New(planner, runner)
	defer s.Stop()

	id, err := s.Schedule(Task{Command: "open whatsapp", Delay: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if id == "" {
		t.Fatal("Schedule returned empty id")
	}

	waitFor(t, 2*time.Second, func() bool { return runner.executions() == 1 })
}

func TestScheduleRepeats(t *testing.T) {
	planner := &fakePlanner{}
	runner := &fakeRunner{}
	s := New(planner, runner)
	defer s.Stop()

	if _, err := s.Schedule(Task{
		Command: "volume up",
		Repeat:  20 * time.Millisecond,
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return runner.executions() >= 3 })
}

func TestCancelPreventsFiring(t *testing.T) {
	planner := &fakePlanner{}
	runner := &fakeRunner{}
	s := New(planner, runner)
	defer s.Stop()

	id, err := s.Schedule(Task{Command: "open whatsapp", Delay: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	s.Cancel(id)

	time.Sleep(300 * time.Millisecond)
	if n := runner.executions(); n != 0 {
		t.Fatalf("cancelled task fired %d times", n)
	}
	if len(s.Tasks()) != 0 {
		t.Fatal("cancelled task still registered")
	}
}

func TestEmptyPlanNotExecuted(t *testing.T) {
	planner := &fakePlanner{}
	runner := &fakeRunner{}
	s := New(planner, runner)
	defer s.Stop()

	if _, err := s.Schedule(Task{Command: "nothing", Delay: time.Millisecond}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return len(planner.planned()) == 1 })
	time.Sleep(20 * time.Millisecond)
	if runner.executions() != 0 {
		t.Fatal("empty plan reached the runner")
	}
}

func TestScheduleAtRejectsInvalidTime(t *testing.T) {
	s := New(&fakePlanner{}, &fakeRunner{})
	defer s.Stop()

	if _, err := s.ScheduleAt("open whatsapp", 24, 0); err == nil {
		t.Fatal("hour 24 accepted")
	}
	if _, err := s.ScheduleAt("open whatsapp", 9, 60); err == nil {
		t.Fatal("minute 60 accepted")
	}
}

func TestStopRejectsNewTasks(t *testing.T) {
	s := New(&fakePlanner{}, &fakeRunner{})
	s.Stop()

	if _, err := s.Schedule(Task{Command: "open whatsapp"}); err != ErrStopped {
		t.Fatalf("Schedule after Stop = %v, want ErrStopped", err)
	}
}

func TestScheduleReplacesSameID(t *testing.T) {
	planner := &fakePlanner{}
	runner := &fakeRunner{}
	s := New(planner, runner)
	defer s.Stop()

	if _, err := s.Schedule(Task{ID: "morning", Command: "open gmail", Delay: time.Hour}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if _, err := s.Schedule(Task{ID: "morning", Command: "open whatsapp", Delay: 10 * time.Millisecond}); err != nil {
		t.Fatalf("Schedule replace: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return runner.executions() == 1 })
	got := planner.planned()
	if len(got) != 1 || got[0] != "open whatsapp" {
		t.Fatalf("planned = %v, want just the replacement", got)
	}
}
