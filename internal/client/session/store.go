package session

import "sync"

// Observer is called with the new state after every transition
type Observer func(State)

// Store holds the current state. Dispatch and Subscribe are safe for
// concurrent use; observers run on the dispatching goroutine, in
// subscription order.
type Store struct {
	mu        sync.Mutex
	state     State
	observers map[int]Observer
	order     []int
	nextID    int
}

func NewStore() *Store {
	return &Store{observers: map[int]Observer{}}
}

// State returns a snapshot of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.User = copyUser(st.User)
	return st
}

// Dispatch applies a and notifies observers
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	obs := make([]Observer, 0, len(s.order))
	for _, id := range s.order {
		obs = append(obs, s.observers[id])
	}
	s.mu.Unlock()

	for _, o := range obs {
		st := next
		st.User = copyUser(next.User)
		o(st)
	}
	return next
}

// Subscribe registers o and returns a function removing it
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.order = append(s.order, id)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
