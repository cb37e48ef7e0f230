// Package memory is the process-wide flat key→value store backing "repeat
// last" semantics, last-opened-app tracking, and the bounded command history.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxa-project/voxa-agent/types"
)

// HistoryCap bounds the command history ring.
const HistoryCap = 100

const (
	keyLastApp     = "last_app"
	keyLastActions = "last_actions"
	keyLastContact = "last_contact"
	keyLastMessage = "last_message"
	keyContext     = "context"
	keyHistory     = "command_history"
)

// Store persists small JSON blobs under string keys, mirrored to a single
// file. All methods are safe for concurrent use; persistence failures are
// swallowed (memory is a convenience, never load-bearing for correctness).
type Store struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

// Open loads (or creates) the store file at path. An empty path keeps the
// store purely in-memory.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: make(map[string]json.RawMessage)}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// A corrupt memory file is discarded, not fatal.
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

func (s *Store) flushLocked() {
	if s.path == "" {
		return
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, raw, 0o644)
}

func (s *Store) put(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.data[key] = raw
	s.flushLocked()
	s.mu.Unlock()
}

func (s *Store) get(key string, out any) bool {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// StoreLastPlan overwrites the most-recently planned action list.
func (s *Store) StoreLastPlan(plan types.Plan) { s.put(keyLastActions, plan) }

// LastPlan returns a clone of the cached plan, or nil when none is cached.
func (s *Store) LastPlan() types.Plan {
	var plan types.Plan
	if !s.get(keyLastActions, &plan) || len(plan) == 0 {
		return nil
	}
	return plan.Clone()
}

// StoreLastApp records the package id of the most recently opened app.
func (s *Store) StoreLastApp(pkg string) { s.put(keyLastApp, pkg) }

// LastApp returns the last opened package id, or "".
func (s *Store) LastApp() string {
	var pkg string
	s.get(keyLastApp, &pkg)
	return pkg
}

// StoreLastContact records the last contact a plan targeted.
func (s *Store) StoreLastContact(name string) { s.put(keyLastContact, name) }

// LastContact returns the last targeted contact name, or "".
func (s *Store) LastContact() string {
	var name string
	s.get(keyLastContact, &name)
	return name
}

// StoreLastMessage records the last message body a plan typed.
func (s *Store) StoreLastMessage(body string) { s.put(keyLastMessage, body) }

// LastMessage returns the last typed message body, or "".
func (s *Store) LastMessage() string {
	var body string
	s.get(keyLastMessage, &body)
	return body
}

// SetContext stores one free-form context value, merging under the lock the
// same way AddToHistory does.
func (s *Store) SetContext(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := make(map[string]string)
	if raw, ok := s.data[keyContext]; ok {
		_ = json.Unmarshal(raw, &ctx)
	}
	ctx[key] = value
	raw, err := json.Marshal(ctx)
	if err != nil {
		return
	}
	s.data[keyContext] = raw
	s.flushLocked()
}

// Context returns one free-form context value, or "".
func (s *Store) Context(key string) string {
	return s.contextMap()[key]
}

func (s *Store) contextMap() map[string]string {
	ctx := make(map[string]string)
	s.get(keyContext, &ctx)
	return ctx
}

// AddToHistory appends a timestamped command, evicting the oldest past
// HistoryCap entries. The read-modify-write happens under one lock so
// concurrent appenders never drop each other's entries.
func (s *Store) AddToHistory(command string) {
	entry := fmt.Sprintf("%d: %s", time.Now().UnixMilli(), command)
	s.mu.Lock()
	defer s.mu.Unlock()
	var history []string
	if raw, ok := s.data[keyHistory]; ok {
		_ = json.Unmarshal(raw, &history)
	}
	history = append(history, entry)
	if len(history) > HistoryCap {
		history = history[len(history)-HistoryCap:]
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return
	}
	s.data[keyHistory] = raw
	s.flushLocked()
}

// History returns the recorded command history, oldest first.
func (s *Store) History() []string {
	var history []string
	s.get(keyHistory, &history)
	return history
}

// Clear wipes all stored state.
func (s *Store) Clear() {
	s.mu.Lock()
	s.data = make(map[string]json.RawMessage)
	s.flushLocked()
	s.mu.Unlock()
}

// Stats summarizes what the store currently holds.
func (s *Store) Stats() map[string]any {
	lastApp := s.LastApp()
	if lastApp == "" {
		lastApp = "none"
	}
	lastContact := s.LastContact()
	if lastContact == "" {
		lastContact = "none"
	}
	return map[string]any{
		"last_app":              lastApp,
		"last_contact":          lastContact,
		"context_entries":       len(s.contextMap()),
		"command_history_count": len(s.History()),
	}
}
