package web

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

const stateCookieName = "lc_dashboard"

// stateStore is a thread-safe in-memory map of dashboard states keyed by
// browser cookie. States live until the process exits.
type stateStore struct {
	mu      sync.Mutex
	content dashboard.Content
	states  map[uuid.UUID]*dashboard.State
	newID   func() uuid.UUID
}

func newStateStore(content dashboard.Content) *stateStore {
	return &stateStore{
		content: content,
		states:  make(map[uuid.UUID]*dashboard.State),
		newID:   uuid.New,
	}
}

// resolve returns the caller's state id. A missing or malformed cookie gets a
// fresh id and cookie; a well-formed id the store has never seen is adopted
// with a new default state.
func (s *stateStore) resolve(w http.ResponseWriter, r *http.Request) uuid.UUID {
	id, ok := stateIDFromRequest(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		if _, found := s.states[id]; found {
			return id
		}
	} else {
		id = s.newID()
		setStateCookie(w, id)
	}
	s.states[id] = dashboard.NewState(s.content)
	return id
}

// with runs fn against id's state while holding the store lock.
func (s *stateStore) with(id uuid.UUID, fn func(*dashboard.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[id]
	if !ok {
		state = dashboard.NewState(s.content)
		s.states[id] = state
	}
	return fn(state)
}

// reset replaces id's state with the opening one.
func (s *stateStore) reset(id uuid.UUID) {
	s.mu.Lock()
	s.states[id] = dashboard.NewState(s.content)
	s.mu.Unlock()
}

func (s *stateStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

func stateIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func setStateCookie(w http.ResponseWriter, id uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
