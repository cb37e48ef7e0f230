// Package api is the HTTP control surface: submit a command, watch status,
// read history, stop the current session, manage scheduled commands.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voxa-project/voxa-agent/executor"
	"github.com/voxa-project/voxa-agent/logger"
	"github.com/voxa-project/voxa-agent/memory"
	"github.com/voxa-project/voxa-agent/scheduler"
	"github.com/voxa-project/voxa-agent/types"
)

// Planner produces a plan for a raw command.
type Planner interface {
	Plan(ctx context.Context, command string) types.Plan
}

// Runner is the executor surface the API drives.
type Runner interface {
	Execute(ctx context.Context, plan types.Plan) (<-chan struct{}, error)
	Stop()
	State() executor.State
	Executed() int
	LastError() string
}

// Server wires the planner, executor, memory and scheduler behind HTTP.
type Server struct {
	planner Planner
	runner  Runner
	mem     *memory.Store
	sched   *scheduler.Scheduler
	log     *logger.Logger
	started time.Time
}

// NewServer builds the API server. sched may be nil, which disables the
// schedule endpoints.
func NewServer(planner Planner, runner Runner, mem *memory.Store, sched *scheduler.Scheduler) *Server {
	return &Server{
		planner: planner,
		runner:  runner,
		mem:     mem,
		sched:   sched,
		log:     logger.New("api"),
		started: time.Now(),
	}
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/command", s.handleCommand)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/schedule", s.handleSchedule)
	return mux
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Command string     `json:"command"`
	Actions types.Plan `json:"actions"`
	Started bool       `json:"started"`
	Error   string     `json:"error,omitempty"`
}

// handleCommand plans the command and starts execution asynchronously,
// returning the planned actions. A plain-text body is accepted as the
// command when JSON decoding fails.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	var req commandRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Command == "" {
		req.Command = strings.TrimSpace(string(raw))
	}
	if req.Command == "" {
		http.Error(w, "empty command", http.StatusBadRequest)
		return
	}

	s.log.Info("command received: %q", req.Command)
	plan := s.planner.Plan(r.Context(), req.Command)

	resp := commandResponse{Command: req.Command, Actions: plan}
	if _, err := s.runner.Execute(context.Background(), plan); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Started = true
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	State     string `json:"state"`
	Executed  int    `json:"executed"`
	LastError string `json:"last_error,omitempty"`
	Uptime    string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		State:     string(s.runner.State()),
		Executed:  s.runner.Executed(),
		LastError: s.runner.LastError(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	history := []string{}
	if s.mem != nil {
		if h := s.mem.History(); h != nil {
			history = h
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.runner.Stop()
	s.log.Info("stop requested")
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

type scheduleRequest struct {
	Command string `json:"command"`
	DelayMS int    `json:"delay_ms,omitempty"`
	Hour    *int   `json:"hour,omitempty"`
	Minute  int    `json:"minute,omitempty"`
	RepeatS int    `json:"repeat_seconds,omitempty"`
}

// handleSchedule registers (POST) or cancels (DELETE ?id=...) a scheduled
// command.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if s.sched == nil {
		http.Error(w, "scheduling disabled", http.StatusNotImplemented)
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		var (
			id  string
			err error
		)
		if req.Hour != nil {
			id, err = s.sched.ScheduleAt(req.Command, *req.Hour, req.Minute)
		} else {
			id, err = s.sched.Schedule(scheduler.Task{
				Command: req.Command,
				Delay:   time.Duration(req.DelayMS) * time.Millisecond,
				Repeat:  time.Duration(req.RepeatS) * time.Second,
			})
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		s.sched.Cancel(id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
