package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

// MaxActions is the safety ceiling on actions executed without a cooldown.
// The counter accumulates across plans; hitting the ceiling aborts the
// session, forces the device home and holds new work until the cooldown
// clears the counter.
const MaxActions = 25

// safetyCooldown is how long after a completed (or aborted) session the
// safety counter is kept before resetting.
const safetyCooldown = 10 * time.Second

// State is the executor lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// ErrBusy is returned by Execute when a session is already in flight.
var ErrBusy = errors.New("executor: session already running")

// Executor drives a plan through a Backend one action at a time. It owns the
// safety counter and all last-plan memory writes; nothing else in the process
// mutates those.
type Executor struct {
	backend Backend
	sink    ProgressSink
	mem     *memory.Store
	log     *logger.Logger

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	executed int
	lastErr  string

	maxActions   int
	cooldown     time.Duration
	defaultDelay time.Duration
	resetTimer   *time.Timer
}

// New builds an Executor. sink may be nil, in which case progress is
// discarded. mem may be nil for tests that don't care about recall.
func New(backend Backend, sink ProgressSink, mem *memory.Store) *Executor {
	if sink == nil {
		sink = NopSink{}
	}
	return &Executor{
		backend:    backend,
		sink:       sink,
		mem:        mem,
		log:        logger.New("executor"),
		state:      StateIdle,
		maxActions: MaxActions,
		cooldown:   safetyCooldown,
	}
}

// SetSafetyCeiling overrides the action ceiling. Non-positive values are
// ignored.
func (e *Executor) SetSafetyCeiling(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	e.maxActions = n
	e.mu.Unlock()
}

// SetCooldown overrides the counter-reset cooldown. Non-positive values are
// ignored.
func (e *Executor) SetCooldown(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.cooldown = d
	e.mu.Unlock()
}

// SetDefaultDelay sets the inter-action pause used when an action carries no
// delay of its own. Non-positive values are ignored.
func (e *Executor) SetDefaultDelay(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.defaultDelay = d
	e.mu.Unlock()
}

// State returns the current lifecycle state.
func (e *Executor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Executed returns the safety counter: actions run since the last cooldown.
func (e *Executor) Executed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executed
}

// LastError returns the most recent per-action or abort error message, empty
// when the last session was clean.
func (e *Executor) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Execute starts running plan on its own goroutine. It returns ErrBusy while
// a previous session is still in flight. The returned channel is closed when
// the session finishes, whatever the outcome.
func (e *Executor) Execute(ctx context.Context, plan types.Plan) (<-chan struct{}, error) {
	e.mu.Lock()
	if e.state == StateRunning {
		e.mu.Unlock()
		return nil, ErrBusy
	}
	if e.resetTimer != nil {
		e.resetTimer.Stop()
		e.resetTimer = nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.state = StateRunning
	e.cancel = cancel
	e.done = done
	e.lastErr = ""
	e.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		e.run(runCtx, plan)
	}()
	return done, nil
}

// Stop cancels the in-flight session, if any.
func (e *Executor) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (e *Executor) run(ctx context.Context, plan types.Plan) {
	total := len(plan)
	e.log.Info("executing plan: %s (%d actions)", plan.String(), total)

	failures := 0
	for i, action := range plan {
		if err := ctx.Err(); err != nil {
			e.log.Warn("execution cancelled at action %d/%d", i+1, total)
			e.finish(StateAborted, "cancelled")
			return
		}
		if e.overBudget() {
			e.safetyAbort()
			return
		}

		msg := fmt.Sprintf("%s %s", actionIcon(action.Type), action.Type)
		if err := e.dispatch(ctx, action); err != nil {
			failures++
			e.log.Warn("action %d (%s) failed: %v", i+1, action.Type, err)
			e.sink.ShowError(fmt.Sprintf("%s failed: %v", action.Type, err))
			e.setLastErr(err.Error())
		}
		e.sink.Update(msg, (i+1)*100/total)

		if i < total-1 {
			if !e.pause(ctx, action.Delay) {
				e.finish(StateAborted, "cancelled")
				return
			}
		}
	}

	summary := fmt.Sprintf("Completed %d actions", total)
	if failures > 0 {
		summary = fmt.Sprintf("Completed %d actions (%d failed)", total, failures)
	}
	e.sink.ShowSuccess(summary)
	if e.mem != nil {
		e.mem.StoreLastPlan(plan)
	}
	e.finish(StateCompleted, "")
}

// dispatch performs one action, repeating count-honoring types per their
// Count with the action delay between steps.
func (e *Executor) dispatch(ctx context.Context, a types.Action) error {
	e.mu.Lock()
	e.executed++
	e.mu.Unlock()

	if repeatable(a.Type) && a.Count > 1 {
		for i := 0; i < a.Count; i++ {
			if err := e.dispatchOnce(ctx, a); err != nil {
				return err
			}
			if i < a.Count-1 && !e.pause(ctx, a.Delay) {
				return ctx.Err()
			}
		}
		return nil
	}
	return e.dispatchOnce(ctx, a)
}

func (e *Executor) dispatchOnce(ctx context.Context, a types.Action) error {
	switch a.Type {
	case types.ActionOpenApp:
		if a.PackageName == "" {
			return errors.New("open_app: missing package name")
		}
		if err := e.backend.OpenApp(ctx, a.PackageName); err != nil {
			return err
		}
		if e.mem != nil {
			e.mem.StoreLastApp(a.PackageName)
		}
		return nil

	case types.ActionClick:
		if a.Target != "" {
			return e.backend.ClickText(ctx, a.Target)
		}
		if a.X > 0 && a.Y > 0 {
			return e.backend.ClickAt(ctx, a.X, a.Y)
		}
		return errors.New("click: no target or coordinates")

	case types.ActionTypeText:
		if a.Text == "" {
			return errors.New("type: empty text")
		}
		return e.backend.TypeText(ctx, a.Text)

	case types.ActionSend:
		return e.backend.PressEnter(ctx)

	case types.ActionBack:
		return e.backend.Back(ctx)
	case types.ActionHome:
		return e.backend.Home(ctx)
	case types.ActionRecents:
		return e.backend.Recents(ctx)

	case types.ActionWait:
		// The inter-action pause covers the delay.
		return nil

	case types.ActionScroll:
		return e.backend.Scroll(ctx, direction(a))
	case types.ActionSwipe:
		return e.backend.Swipe(ctx, direction(a))

	case types.ActionSearch:
		q := a.Text
		if q == "" {
			q = a.Target
		}
		if q == "" {
			return errors.New("search: empty query")
		}
		return e.backend.Search(ctx, q)

	case types.ActionOpenURL:
		if a.URL == "" {
			return errors.New("open_url: empty url")
		}
		return e.backend.OpenURL(ctx, a.URL)

	case types.ActionCall, types.ActionDial:
		if a.PhoneNumber != "" {
			return e.backend.Dial(ctx, a.PhoneNumber)
		}
		if a.ContactName != "" {
			return e.backend.ClickText(ctx, a.ContactName)
		}
		return errors.New("dial: no number or contact")

	case types.ActionOpenContact:
		if a.ContactName == "" {
			return errors.New("open_contact: empty contact name")
		}
		return e.backend.ClickText(ctx, a.ContactName)

	case types.ActionMessage:
		if a.Text == "" {
			return errors.New("message: empty text")
		}
		if err := e.backend.TypeText(ctx, a.Text); err != nil {
			return err
		}
		return e.backend.PressEnter(ctx)

	case types.ActionOpenDialer:
		return e.backend.OpenDialer(ctx)

	case types.ActionVolumeUp:
		return e.backend.VolumeUp(ctx)
	case types.ActionVolumeDown:
		return e.backend.VolumeDown(ctx)
	case types.ActionMute:
		return e.backend.Mute(ctx)
	case types.ActionUnmute:
		return e.backend.Unmute(ctx)

	case types.ActionBrightness:
		level := 50
		if a.Target != "" {
			if n, err := strconv.Atoi(a.Target); err == nil {
				level = n
			}
		}
		return e.backend.SetBrightness(ctx, level)
	case types.ActionBrightnessUp:
		return e.backend.BrightnessUp(ctx)
	case types.ActionBrightnessDown:
		return e.backend.BrightnessDown(ctx)

	case types.ActionPlayPause, types.ActionNext, types.ActionPrevious:
		return e.backend.MediaKey(ctx, string(a.Type))

	case types.ActionScreenshot:
		return e.backend.Screenshot(ctx)
	}
	return fmt.Errorf("unknown action type %q", a.Type)
}

// pause sleeps ms milliseconds, falling back to the configured default delay
// when the action carries none. Returns false when the context is cancelled
// first.
func (e *Executor) pause(ctx context.Context, ms int) bool {
	d := time.Duration(ms) * time.Millisecond
	if ms <= 0 {
		e.mu.Lock()
		d = e.defaultDelay
		e.mu.Unlock()
	}
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (e *Executor) overBudget() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.executed >= e.maxActions
}

// safetyAbort forces the device home, notifies the user and schedules the
// counter reset. Home bypasses the backend error path: there is nothing
// sensible to do if even that fails.
func (e *Executor) safetyAbort() {
	e.mu.Lock()
	limit := e.maxActions
	e.mu.Unlock()
	e.log.Error("safety limit reached (%d actions), aborting", limit)
	_ = e.backend.Home(context.Background())
	e.sink.ShowError(fmt.Sprintf("Safety limit reached (%d actions). Returning home.", limit))
	e.setLastErr("safety limit reached")
	e.finish(StateAborted, "")
}

func (e *Executor) setLastErr(msg string) {
	e.mu.Lock()
	e.lastErr = msg
	e.mu.Unlock()
}

// finish transitions out of Running and arms the cooldown that clears the
// safety counter.
func (e *Executor) finish(final State, errMsg string) {
	e.mu.Lock()
	e.state = final
	e.cancel = nil
	if errMsg != "" {
		e.lastErr = errMsg
	}
	if e.resetTimer != nil {
		e.resetTimer.Stop()
	}
	e.resetTimer = time.AfterFunc(e.cooldown, e.resetCounter)
	e.mu.Unlock()
}

func (e *Executor) resetCounter() {
	e.mu.Lock()
	e.executed = 0
	if e.state != StateRunning {
		e.state = StateIdle
	}
	e.mu.Unlock()
	e.log.Debug("safety counter reset")
}

func direction(a types.Action) string {
	if a.Direction != "" {
		return a.Direction
	}
	return "down"
}

func repeatable(t types.ActionType) bool {
	switch t {
	case types.ActionVolumeUp, types.ActionVolumeDown,
		types.ActionBrightnessUp, types.ActionBrightnessDown:
		return true
	}
	return false
}

func actionIcon(t types.ActionType) string {
	switch t {
	case types.ActionOpenApp:
		return "🚀"
	case types.ActionClick:
		return "👆"
	case types.ActionTypeText:
		return "⌨️"
	case types.ActionSend:
		return "📤"
	case types.ActionBack:
		return "🔙"
	case types.ActionHome:
		return "🏠"
	case types.ActionRecents:
		return "📱"
	case types.ActionWait:
		return "⏳"
	case types.ActionScroll, types.ActionSwipe:
		return "📜"
	case types.ActionSearch:
		return "🔍"
	case types.ActionOpenURL:
		return "🌐"
	case types.ActionCall, types.ActionDial, types.ActionOpenDialer:
		return "📞"
	case types.ActionMessage:
		return "💬"
	case types.ActionOpenContact:
		return "👤"
	case types.ActionScreenshot:
		return "📸"
	case types.ActionVolumeUp, types.ActionUnmute:
		return "🔊"
	case types.ActionVolumeDown:
		return "🔉"
	case types.ActionMute:
		return "🔇"
	case types.ActionBrightness, types.ActionBrightnessUp, types.ActionBrightnessDown:
		return "☀️"
	case types.ActionPlayPause:
		return "⏯️"
	case types.ActionNext:
		return "⏭️"
	case types.ActionPrevious:
		return "⏮️"
	}
	return "⚡"
}
