package memory

import (
	"context"
	"sync"
	"time"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/interfaces"
	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"

	"go.uber.org/zap"
)

// ConversationStore keeps per-session conversation contexts in memory.
// The map lock is only held for lookups and deletes; each entry carries its
// own mutex so an in-flight exchange on one session never blocks another.
type ConversationStore struct {
	mu           sync.RWMutex
	entries      map[string]*entry
	historyLimit int
	now          func() time.Time
}

type entry struct {
	mu        sync.Mutex
	sessionID string
	pages     []models.PolicyPage
	history   []models.ConversationMessage
	firstTurn bool

	// lastAccessed is guarded by the store lock, not entry.mu, so the
	// sweeper can read it without contending with in-flight exchanges.
	lastAccessed time.Time
}

func NewConversationStore(historyLimit int) *ConversationStore {
	return &ConversationStore{
		entries:      make(map[string]*entry),
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

func (s *ConversationStore) Acquire(sessionID string, pages []models.PolicyPage) interfaces.ConversationLease {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{
			sessionID: sessionID,
			pages:     pages,
			firstTurn: true,
		}
		s.entries[sessionID] = e
	}
	e.lastAccessed = s.now()
	s.mu.Unlock()

	// Taken outside the store lock: a long-held session lock must not stall
	// lookups for unrelated sessions.
	e.mu.Lock()
	return &lease{store: s, e: e}
}

func (s *ConversationStore) Remove(sessionID string) {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
}

// EvictIdle snapshots the expired keys under a read lock, then deletes them,
// rechecking the access time in case a session was touched in between.
func (s *ConversationStore) EvictIdle(cutoff time.Time) int {
	s.mu.RLock()
	var expired []string
	for id, e := range s.entries {
		if e.lastAccessed.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	removed := 0
	s.mu.Lock()
	for _, id := range expired {
		if e, ok := s.entries[id]; ok && e.lastAccessed.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

func (s *ConversationStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RunSweeper evicts conversations idle for longer than maxIdle on every tick
// until ctx is cancelled.
func (s *ConversationStore) RunSweeper(ctx context.Context, interval, maxIdle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Conversation sweeper stopped")
			return
		case <-ticker.C:
			if removed := s.EvictIdle(s.now().Add(-maxIdle)); removed > 0 {
				logger.Info("Evicted idle conversations",
					zap.Int("removed", removed),
					zap.Int("remaining", s.Count()),
				)
			}
		}
	}
}

func (s *ConversationStore) touch(e *entry) {
	s.mu.Lock()
	e.lastAccessed = s.now()
	s.mu.Unlock()
}

type lease struct {
	store *ConversationStore
	e     *entry
	done  bool
}

func (l *lease) SessionID() string { return l.e.sessionID }

func (l *lease) History() []models.ConversationMessage {
	out := make([]models.ConversationMessage, len(l.e.history))
	copy(out, l.e.history)
	return out
}

func (l *lease) FirstTurn() bool { return l.e.firstTurn }

func (l *lease) Pages() []models.PolicyPage { return l.e.pages }

func (l *lease) Commit(user, assistant models.ConversationMessage) {
	if l.done {
		return
	}
	l.done = true

	e := l.e
	e.history = append(e.history, user, assistant)
	if excess := len(e.history) - l.store.historyLimit; excess > 0 {
		trimmed := make([]models.ConversationMessage, len(e.history)-excess)
		copy(trimmed, e.history[excess:])
		e.history = trimmed
	}
	e.firstTurn = false
	l.store.touch(e)
	e.mu.Unlock()
}

func (l *lease) Release() {
	if l.done {
		return
	}
	l.done = true
	l.e.mu.Unlock()
}

// Verify interfaces implementation
var _ interfaces.ConversationStore = (*ConversationStore)(nil)
var _ interfaces.ConversationLease = (*lease)(nil)
