// Package contacts defines the contacts-store collaborator used by the
// planner's call/message resolution.
package contacts

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
)

// ErrNotFound is returned when no contact matches the query.
var ErrNotFound = errors.New("contacts: no match")

// Contact is one address-book entry. Number may be empty.
type Contact struct {
	Name   string
	Number string
}

// Store looks up a contact by fuzzy display-name query. Implementations may
// be backed by a platform contacts provider; callers must treat every call as
// fallible.
type Store interface {
	FindByName(ctx context.Context, query string) (Contact, error)
}

var nonDialable = regexp.MustCompile(`[^+0-9]`)

// NormalizeNumber strips everything a dialer can't consume.
func NormalizeNumber(raw string) string {
	return nonDialable.ReplaceAllString(raw, "")
}

// MemoryStore is a mutex-guarded in-memory Store, used by tests and as a
// stand-in when no platform provider is wired.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Contact
}

// NewMemoryStore seeds a MemoryStore with the given entries.
func NewMemoryStore(entries ...Contact) *MemoryStore {
	return &MemoryStore{entries: entries}
}

// Add appends one entry.
func (s *MemoryStore) Add(c Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, c)
}

// FindByName matches case-insensitively by substring, first match wins.
func (s *MemoryStore) FindByName(_ context.Context, query string) (Contact, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Contact{}, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.entries {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return Contact{Name: c.Name, Number: NormalizeNumber(c.Number)}, nil
		}
	}
	return Contact{}, ErrNotFound
}
