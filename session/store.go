package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/config"
)

// Store keeps the live sessions of the process.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*State
	catalog  config.Catalog
	idleTTL  time.Duration
	now      func() time.Time
}

// NewStore returns an empty store. Sessions idle for longer than idleTTL
// are dropped by Sweep; zero keeps them forever.
func NewStore(catalog config.Catalog, idleTTL time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*State),
		catalog:  catalog,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create starts a new session.
func (st *Store) Create() *State {
	st.mu.Lock()
	defer st.mu.Unlock()

	state := NewState(uuid.New(), st.catalog)
	state.LastSeen = st.now()
	st.sessions[state.ID] = state
	return state
}

// Get returns a live session and marks it as seen.
func (st *Store) Get(id uuid.UUID) (*State, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	state, ok := st.sessions[id]
	if ok {
		state.LastSeen = st.now()
	}
	return state, ok
}

// Resolve returns the session named by rawID, or a new one when rawID is
// empty, malformed or unknown. created reports which case applied.
func (st *Store) Resolve(rawID string) (state *State, created bool) {
	if id, err := uuid.Parse(rawID); err == nil {
		if state, ok := st.Get(id); ok {
			return state, false
		}
	}
	return st.Create(), true
}

func (st *Store) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the store's TTL and returns how
// many were removed.
func (st *Store) Sweep() int {
	if st.idleTTL <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.now().Add(-st.idleTTL)
	removed := 0
	for id, state := range st.sessions {
		if state.LastSeen.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
