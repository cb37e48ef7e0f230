package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

// fakeBackend records every call and fails any listed in failOn.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]bool
}

func newFakeBackend(failOn ...string) *fakeBackend {
	f := &fakeBackend{failOn: make(map[string]bool)}
	for _, name := range failOn {
		f.failOn[name] = true
	}
	return f
}

func (f *fakeBackend) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn[call] {
		return errors.New("backend failure")
	}
	return nil
}

func (f *fakeBackend) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeBackend) OpenApp(_ context.Context, pkg string) error {
	return f.record("open_app:" + pkg)
}
func (f *fakeBackend) ClickText(_ context.Context, target string) error {
	return f.record("click:" + target)
}
func (f *fakeBackend) ClickAt(_ context.Context, x, y int) error { return f.record("click_at") }
func (f *fakeBackend) TypeText(_ context.Context, text string) error {
	return f.record("type:" + text)
}
func (f *fakeBackend) PressEnter(_ context.Context) error { return f.record("enter") }
func (f *fakeBackend) Home(_ context.Context) error       { return f.record("home") }
func (f *fakeBackend) Back(_ context.Context) error       { return f.record("back") }
func (f *fakeBackend) Recents(_ context.Context) error    { return f.record("recents") }
func (f *fakeBackend) Scroll(_ context.Context, dir string) error {
	return f.record("scroll:" + dir)
}
func (f *fakeBackend) Swipe(_ context.Context, dir string) error { return f.record("swipe:" + dir) }
func (f *fakeBackend) Search(_ context.Context, q string) error  { return f.record("search:" + q) }
func (f *fakeBackend) OpenURL(_ context.Context, u string) error { return f.record("url:" + u) }
func (f *fakeBackend) Dial(_ context.Context, num string) error  { return f.record("dial:" + num) }
func (f *fakeBackend) OpenDialer(_ context.Context) error        { return f.record("open_dialer") }
func (f *fakeBackend) VolumeUp(_ context.Context) error          { return f.record("volume_up") }
func (f *fakeBackend) VolumeDown(_ context.Context) error        { return f.record("volume_down") }
func (f *fakeBackend) Mute(_ context.Context) error              { return f.record("mute") }
func (f *fakeBackend) Unmute(_ context.Context) error            { return f.record("unmute") }
func (f *fakeBackend) SetBrightness(_ context.Context, level int) error {
	return f.record("brightness")
}
func (f *fakeBackend) BrightnessUp(_ context.Context) error   { return f.record("brightness_up") }
func (f *fakeBackend) BrightnessDown(_ context.Context) error { return f.record("brightness_down") }
func (f *fakeBackend) MediaKey(_ context.Context, key string) error {
	return f.record("media:" + key)
}
func (f *fakeBackend) Screenshot(_ context.Context) error { return f.record("screenshot") }

// fakeSink captures everything the executor reports.
type fakeSink struct {
	mu        sync.Mutex
	updates   []string
	percents  []int
	errors    []string
	successes []string
}

func (s *fakeSink) Update(msg string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, msg)
	s.percents = append(s.percents, percent)
}

func (s *fakeSink) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, msg)
}

func (s *fakeSink) ShowSuccess(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successes = append(s.successes, msg)
}

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	m, err := memory.Open("")
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	return m
}

func runPlan(t *testing.T, e *Executor, plan types.Plan) {
	t.Helper()
	done, err := e.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not finish")
	}
}

func TestExecuteCompletesPlan(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	mem := newTestMemory(t)
	e := New(backend, sink, mem)

	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: "com.whatsapp", Delay: 1},
		{Type: types.ActionClick, Target: "Search", Delay: 1},
		{Type: types.ActionTypeText, Text: "hello", Delay: 1},
	}
	runPlan(t, e, plan)

	if e.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", e.State())
	}
	calls := backend.recorded()
	want := []string{"open_app:com.whatsapp", "click:Search", "type:hello"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
	if len(sink.successes) != 1 {
		t.Fatalf("successes = %v, want one summary", sink.successes)
	}
	if mem.LastApp() != "com.whatsapp" {
		t.Errorf("LastApp = %q, want com.whatsapp", mem.LastApp())
	}
	if got := mem.LastPlan(); len(got) != 3 {
		t.Errorf("LastPlan has %d actions, want 3", len(got))
	}
}

func TestExecuteReportsProgress(t *testing.T) {
	sink := &fakeSink{}
	e := New(newFakeBackend(), sink, nil)

	plan := types.Plan{
		{Type: types.ActionVolumeUp, Delay: 1},
		{Type: types.ActionVolumeUp, Delay: 1},
		{Type: types.ActionVolumeUp, Delay: 1},
		{Type: types.ActionVolumeUp, Delay: 1},
	}
	runPlan(t, e, plan)

	wantPercents := []int{25, 50, 75, 100}
	if len(sink.percents) != len(wantPercents) {
		t.Fatalf("percents = %v, want %v", sink.percents, wantPercents)
	}
	for i, p := range wantPercents {
		if sink.percents[i] != p {
			t.Errorf("percent %d = %d, want %d", i, sink.percents[i], p)
		}
	}
	for _, u := range sink.updates {
		if !strings.Contains(u, "volume_up") {
			t.Errorf("update %q does not name the action", u)
		}
	}
}

func TestPartialFailureContinues(t *testing.T) {
	backend := newFakeBackend("click:Missing")
	sink := &fakeSink{}
	e := New(backend, sink, nil)

	plan := types.Plan{
		{Type: types.ActionOpenApp, PackageName: "com.whatsapp", Delay: 1},
		{Type: types.ActionClick, Target: "Missing", Delay: 1},
		{Type: types.ActionBack, Delay: 1},
	}
	runPlan(t, e, plan)

	if e.State() != StateCompleted {
		t.Fatalf("state = %s, want completed despite failure", e.State())
	}
	calls := backend.recorded()
	if calls[len(calls)-1] != "back" {
		t.Fatalf("plan stopped early, calls = %v", calls)
	}
	if len(sink.errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", sink.errors)
	}
	if len(sink.successes) != 1 || !strings.Contains(sink.successes[0], "1 failed") {
		t.Fatalf("success summary = %v, want failure count", sink.successes)
	}
}

func TestEmptyRequiredFieldContinues(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	e := New(backend, sink, nil)

	plan := types.Plan{
		{Type: types.ActionTypeText, Delay: 1}, // no text
		{Type: types.ActionHome, Delay: 1},
	}
	runPlan(t, e, plan)

	if e.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", e.State())
	}
	calls := backend.recorded()
	if len(calls) != 1 || calls[0] != "home" {
		t.Fatalf("calls = %v, want just home", calls)
	}
	if len(sink.errors) != 1 {
		t.Fatalf("errors = %v, want one", sink.errors)
	}
}

func TestSafetyBrake(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	e := New(backend, sink, nil)
	e.cooldown = 200 * time.Millisecond

	plan := make(types.Plan, MaxActions+5)
	for i := range plan {
		plan[i] = types.Action{Type: types.ActionVolumeUp, Delay: 1}
	}
	runPlan(t, e, plan)

	if e.State() != StateAborted {
		t.Fatalf("state = %s, want aborted", e.State())
	}
	calls := backend.recorded()
	// MaxActions volume presses plus the forced home.
	if len(calls) != MaxActions+1 {
		t.Fatalf("got %d backend calls, want %d", len(calls), MaxActions+1)
	}
	if calls[len(calls)-1] != "home" {
		t.Fatalf("last call = %q, want forced home", calls[len(calls)-1])
	}
	found := false
	for _, msg := range sink.errors {
		if strings.Contains(msg, "Safety limit") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no safety notification in %v", sink.errors)
	}

	// Counter clears after the cooldown and the executor goes idle.
	time.Sleep(400 * time.Millisecond)
	if e.Executed() != 0 {
		t.Fatalf("counter = %d after cooldown, want 0", e.Executed())
	}
	if e.State() != StateIdle {
		t.Fatalf("state = %s after cooldown, want idle", e.State())
	}
}

func TestConfiguredCeilingOverridesDefault(t *testing.T) {
	backend := newFakeBackend()
	sink := &fakeSink{}
	e := New(backend, sink, nil)
	e.SetSafetyCeiling(3)
	e.SetCooldown(time.Hour)

	plan := types.Plan{
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionBack, Delay: 1},
	}
	runPlan(t, e, plan)

	if e.State() != StateAborted {
		t.Fatalf("state = %s, want aborted at the lowered ceiling", e.State())
	}
	calls := backend.recorded()
	// Three backs plus the forced home.
	if len(calls) != 4 || calls[3] != "home" {
		t.Fatalf("calls = %v, want three backs then home", calls)
	}
	found := false
	for _, msg := range sink.errors {
		if strings.Contains(msg, "3 actions") {
			found = true
		}
	}
	if !found {
		t.Fatalf("safety notification does not report the configured ceiling: %v", sink.errors)
	}

	// Non-positive overrides are ignored.
	e.SetSafetyCeiling(0)
	if e.maxActions != 3 {
		t.Fatalf("maxActions = %d after zero override, want 3", e.maxActions)
	}
}

func TestSafetyCounterAccumulatesAcrossPlans(t *testing.T) {
	e := New(newFakeBackend(), nil, nil)
	e.cooldown = time.Hour // never reset during the test

	short := types.Plan{
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionBack, Delay: 1},
	}
	runPlan(t, e, short)
	runPlan(t, e, short)

	if e.Executed() != 4 {
		t.Fatalf("counter = %d, want 4 across two plans", e.Executed())
	}
}

func TestStopCancelsSession(t *testing.T) {
	backend := newFakeBackend()
	e := New(backend, nil, nil)

	plan := types.Plan{
		{Type: types.ActionBack, Delay: 1},
		{Type: types.ActionWait, Delay: 10_000},
		{Type: types.ActionHome, Delay: 1},
	}
	done, err := e.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	e.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not end the session")
	}

	if e.State() != StateAborted {
		t.Fatalf("state = %s, want aborted", e.State())
	}
	for _, c := range backend.recorded() {
		if c == "home" {
			t.Fatal("action after cancellation still ran")
		}
	}
}

func TestExecuteRejectsConcurrentSessions(t *testing.T) {
	e := New(newFakeBackend(), nil, nil)
	plan := types.Plan{{Type: types.ActionWait, Delay: 500}, {Type: types.ActionBack, Delay: 1}}

	done, err := e.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := e.Execute(context.Background(), plan); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Execute = %v, want ErrBusy", err)
	}
	e.Stop()
	<-done
}

func TestCountRepeatsVolume(t *testing.T) {
	backend := newFakeBackend()
	e := New(backend, nil, nil)

	plan := types.Plan{{Type: types.ActionVolumeUp, Count: 3, Delay: 1}}
	runPlan(t, e, plan)

	n := 0
	for _, c := range backend.recorded() {
		if c == "volume_up" {
			n++
		}
	}
	if n != 3 {
		t.Fatalf("volume_up pressed %d times, want 3", n)
	}
}

func TestBrightnessLevelFromTarget(t *testing.T) {
	backend := newFakeBackend()
	e := New(backend, nil, nil)

	plan := types.Plan{{Type: types.ActionBrightness, Target: "80", Delay: 1}}
	runPlan(t, e, plan)

	calls := backend.recorded()
	if len(calls) != 1 || calls[0] != "brightness" {
		t.Fatalf("calls = %v, want brightness", calls)
	}
}

func TestDialPrefersPhoneNumber(t *testing.T) {
	backend := newFakeBackend()
	e := New(backend, nil, nil)

	plan := types.Plan{
		{Type: types.ActionDial, PhoneNumber: "+15551234567", ContactName: "Mom", Delay: 1},
	}
	runPlan(t, e, plan)

	calls := backend.recorded()
	if len(calls) != 1 || calls[0] != "dial:+15551234567" {
		t.Fatalf("calls = %v, want dial by number", calls)
	}
}
