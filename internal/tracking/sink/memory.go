// Package sink holds analytics sink implementations for the tracking gate.
package sink

import (
	"context"
	"sync"

	"consentd/internal/tracking"
)

// Memory records events in order, like a page's dataLayer. It is used in
// development and tests.
type Memory struct {
	mu     sync.Mutex
	events []tracking.Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Push(_ context.Context, event tracking.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything pushed so far.
func (m *Memory) Events() []tracking.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tracking.Event, len(m.events))
	copy(out, m.events)
	return out
}
