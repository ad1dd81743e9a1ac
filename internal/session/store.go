package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/osinachi-dev/voxgate/internal/types"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
)

// Store is the single owner of all live sessions. One coarse lock guards
// the map; nothing slow ever runs under it, so unrelated sessions' port
// calls never serialize behind each other.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	maxTurns int
	timeout  time.Duration
	logger   *Logger.Logger

	stopSweep chan struct{}
	sweepOnce sync.Once
}

func NewStore(maxTurns int, timeout time.Duration, logger *Logger.Logger) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		maxTurns:  maxTurns,
		timeout:   timeout,
		logger:    logger,
		stopSweep: make(chan struct{}),
	}
}

// Create inserts a fresh empty session and returns its id.
func (st *Store) Create() string {
	id := uuid.NewString()

	st.mu.Lock()
	st.sessions[id] = newSession(id, st.maxTurns)
	st.mu.Unlock()

	st.logger.Infof("created new session: %s", id)
	return id
}

// Get returns a snapshot of the session if it exists and hasn't expired.
// An expired session is removed in the same critical section, so no caller
// ever observes a logically dead session, even racing the sweeper.
func (st *Store) Get(id string) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return Session{}, false
	}
	now := time.Now()
	if s.expired(st.timeout, now) {
		delete(st.sessions, id)
		st.logger.Infof("session %s expired", id)
		return Session{}, false
	}
	s.LastActive = now
	return s.snapshot(), true
}

// GetOrCreate is the orchestrator's only entry point: reuse the given
// session when it's still alive, otherwise mint a new one.
func (st *Store) GetOrCreate(id string) (Session, bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}

	newID := st.Create()
	s, _ := st.Get(newID)
	return s, true
}

// AppendTurn records a completed turn and returns the assigned turn
// number. It reports false, without panicking, when the session vanished
// (expired or deleted) between pipeline start and finish; the caller keeps
// its computed reply but persistence is lost.
func (st *Store) AppendTurn(id, userText, assistantText string, meta types.TurnMetadata) (int, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok || s.expired(st.timeout, time.Now()) {
		if ok {
			delete(st.sessions, id)
		}
		st.logger.Errorf("session not found for append: %s", id)
		return 0, false
	}

	turn := s.addTurn(userText, assistantText, meta)
	st.logger.Debugf("added turn %d to session %s (window %d/%d)",
		turn.TurnNumber, id, len(s.Turns), s.MaxTurns)
	return turn.TurnNumber, true
}

// GetHistory flattens the session's window into chronological role/content
// messages. When maxTurns > 0 only the most recent maxTurns*2 messages are
// returned. Unknown or expired sessions yield an empty history.
func (st *Store) GetHistory(id string, maxTurns int) []types.Message {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	now := time.Now()
	if s.expired(st.timeout, now) {
		delete(st.sessions, id)
		return nil
	}
	s.LastActive = now

	history := s.historyForLLM()
	if maxTurns > 0 && len(history) > maxTurns*2 {
		history = history[len(history)-maxTurns*2:]
	}
	return history
}

// Delete removes a session outright. Reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	st.logger.Infof("deleted session: %s", id)
	return true
}

// SweepExpired removes every session idle past the timeout and returns how
// many went.
func (st *Store) SweepExpired() int {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.expired(st.timeout, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.Infof("swept %d expired session(s)", removed)
	}
	return removed
}

func (st *Store) ActiveCount() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartSweeper runs SweepExpired on a ticker until StopSweeper is called.
func (st *Store) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				st.SweepExpired()
			case <-st.stopSweep:
				return
			}
		}
	}()
}

func (st *Store) StopSweeper() {
	st.sweepOnce.Do(func() { close(st.stopSweep) })
}
