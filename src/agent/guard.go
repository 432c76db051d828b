package agent

import (
	"sync"

	"github.com/google/uuid"
)

// ResumeGuard serializes runs per conversation. Only one run (initial or
// resumed) may be active for a conversation at a time; a second attempt fails
// fast with ErrResumeInFlight instead of queueing.
type ResumeGuard struct {
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

func NewResumeGuard() *ResumeGuard {
	return &ResumeGuard{active: make(map[uuid.UUID]struct{})}
}

// Acquire claims the conversation. The returned release function is
// idempotent and must be called when the run finishes or suspends.
func (g *ResumeGuard) Acquire(conversationID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[conversationID]; ok {
		return nil, ErrResumeInFlight
	}
	g.active[conversationID] = struct{}{}
	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, conversationID)
			g.mu.Unlock()
		})
	}
	return release, nil
}
