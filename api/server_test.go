package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/voxa-project/voxa-agent/executor"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/types"
)

type fakePlanner struct{}

func (fakePlanner) Plan(_ context.Context, command string) types.Plan {
	if command == "go back" {
		return types.Plan{{Type: types.ActionBack, Delay: 500}}
	}
	return types.Plan{{Type: types.ActionOpenApp, PackageName: "com.whatsapp", Delay: 2000}}
}

type fakeRunner struct {
	mu      sync.Mutex
	plans   []types.Plan
	stopped bool
	busy    bool
}

func (r *fakeRunner) Execute(_ context.Context, plan types.Plan) (<-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return nil, executor.ErrBusy
	}
	r.plans = append(r.plans, plan)
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (r *fakeRunner) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

func (r *fakeRunner) State() executor.State { return executor.StateIdle }
func (r *fakeRunner) Executed() int         { return 7 }
func (r *fakeRunner) LastError() string     { return "" }

func newTestServer(t *testing.T, runner *fakeRunner) (*Server, *memory.Store) {
	t.Helper()
	mem, err := memory.Open("")
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	return NewServer(fakePlanner{}, runner, mem, nil), mem
}

func TestCommandPlansAndStarts(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/command",
		strings.NewReader(`{"command": "go back"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp commandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Started {
		t.Fatal("execution not started")
	}
	if len(resp.Actions) != 1 || resp.Actions[0].Type != types.ActionBack {
		t.Fatalf("actions = %v", resp.Actions)
	}
	if len(runner.plans) != 1 {
		t.Fatalf("runner got %d plans", len(runner.plans))
	}
}

func TestCommandAcceptsPlainText(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader("open whatsapp"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp commandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Command != "open whatsapp" {
		t.Fatalf("command = %q", resp.Command)
	}
}

func TestCommandRejectsEmpty(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(""))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCommandRejectsGet(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/command", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestCommandReportsBusyExecutor(t *testing.T) {
	runner := &fakeRunner{busy: true}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/command",
		strings.NewReader(`{"command": "go back"}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp commandResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Started {
		t.Fatal("busy executor reported as started")
	}
	if resp.Error == "" {
		t.Fatal("busy error not surfaced")
	}
}

func TestStatus(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.State != "idle" || resp.Executed != 7 {
		t.Fatalf("status = %+v", resp)
	}
}

func TestHistory(t *testing.T) {
	s, mem := newTestServer(t, &fakeRunner{})
	mem.AddToHistory("open whatsapp")
	mem.AddToHistory("go back")

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var resp struct {
		History []string `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.History) != 2 {
		t.Fatalf("history = %v", resp.History)
	}
}

func TestStop(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(t, runner)

	req := httptest.NewRequest(http.MethodPost, "/stop", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !runner.stopped {
		t.Fatal("Stop not forwarded to the executor")
	}
}

func TestScheduleDisabledWithoutScheduler(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})

	req := httptest.NewRequest(http.MethodPost, "/schedule",
		strings.NewReader(`{"command": "open gmail", "delay_ms": 1000}`))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", w.Code)
	}
}
