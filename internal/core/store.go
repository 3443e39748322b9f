package core

import "sync"

// Store holds the pending question of the day. The command handler writes
// it and the daily scheduler takes it; discordgo dispatches handlers on
// separate goroutines, so access is mutex-guarded.
type Store struct {
	mu      sync.Mutex
	pending string
	set     bool
}

// Set stages a question, overwriting any unsent one. It reports whether a
// previous question was replaced.
func (s *Store) Set(text string) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replaced = s.set
	s.pending = text
	s.set = true
	return replaced
}

// Take returns the staged question and clears it. ok is false if nothing
// was staged.
func (s *Store) Take() (text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return "", false
	}
	text = s.pending
	s.pending = ""
	s.set = false
	return text, true
}

// Peek returns the staged question without clearing it.
func (s *Store) Peek() (text string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.set
}
