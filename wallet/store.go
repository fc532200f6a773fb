package wallet

import "sync"

// MemoryStore is an in-memory SessionStore. Listeners registered with
// Subscribe are invoked synchronously after every write.
type MemoryStore struct {
	mu        sync.RWMutex
	state     Session
	listeners map[int]func(Session)
	nextID    int
}

// NewMemoryStore returns a store in the idle state.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:     Session{Status: StatusIdle, Accounts: []InjectedAccount{}},
		listeners: make(map[int]func(Session)),
	}
}

// Snapshot returns a copy of the current session.
func (s *MemoryStore) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(s.state)
}

// SetAccounts replaces the account list.
func (s *MemoryStore) SetAccounts(accounts []InjectedAccount) {
	s.update(func(state *Session) {
		state.Accounts = append([]InjectedAccount{}, accounts...)
	})
}

// SetSelectedAddress sets or clears the selected address.
func (s *MemoryStore) SetSelectedAddress(address *string) {
	s.update(func(state *Session) {
		state.SelectedAddress = copyString(address)
	})
}

// SetStatus sets the connection status.
func (s *MemoryStore) SetStatus(status Status) {
	s.update(func(state *Session) {
		state.Status = status
	})
}

// SetError records an error message and moves the session to StatusError.
// An empty message clears the error and leaves the status untouched.
func (s *MemoryStore) SetError(message string) {
	s.update(func(state *Session) {
		state.Error = message
		if message != "" {
			state.Status = StatusError
		}
	})
}

// Reset restores the initial idle state.
func (s *MemoryStore) Reset() {
	s.update(func(state *Session) {
		*state = Session{Status: StatusIdle, Accounts: []InjectedAccount{}}
	})
}

// Subscribe registers fn for change notifications and returns a function that
// removes it.
func (s *MemoryStore) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *MemoryStore) update(mutate func(*Session)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := cloneSession(s.state)
	listeners := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func cloneSession(in Session) Session {
	out := in
	out.Accounts = make([]InjectedAccount, len(in.Accounts))
	for i, account := range in.Accounts {
		out.Accounts[i] = account
		out.Accounts[i].Meta.GenesisHash = copyString(account.Meta.GenesisHash)
	}
	out.SelectedAddress = copyString(in.SelectedAddress)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
