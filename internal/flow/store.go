package flow

import "sync"

// Store keeps one Machine per conversation key. Long polling delivers
// updates sequentially, but the webhook entry point may not, so access is
// guarded.
//
// Machines for finished flows are evicted by the router on terminal
// transitions; idle machines left behind by stray input are recreated on
// demand and carry no state worth keeping.
type Store struct {
	mu       sync.Mutex
	machines map[Key]*Machine
}

func NewStore() *Store {
	return &Store{machines: make(map[Key]*Machine)}
}

// Get returns the machine for key, creating an idle one if absent.
func (s *Store) Get(key Key) *Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[key]
	if !ok {
		m = NewMachine()
		s.machines[key] = m
	}
	return m
}

// Peek returns the machine for key without creating one.
func (s *Store) Peek(key Key) (*Machine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[key]
	return m, ok
}

// Evict drops the machine for key.
func (s *Store) Evict(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.machines, key)
}

// Len reports how many conversations currently hold a machine.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.machines)
}
