package app

import (
	"sync"

	"progressive-quiz/internal/domain"
)

// Session is the explicit context object every engine operation runs against.
// It holds the single in-memory UserProgress (nil when no user is active) and the
// dashboard subscribers of the running session.
type Session struct {
	mu          sync.Mutex
	progress    *domain.UserProgress
	subscribers map[chan domain.Dashboard]struct{}
}

func NewSession() *Session {
	return &Session{
		subscribers: make(map[chan domain.Dashboard]struct{}),
	}
}

// Active reports whether a user has initialized or restored progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress != nil
}

// Subscribe returns a channel that receives the dashboard after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Dashboard, func()) {
	ch := make(chan domain.Dashboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	if s.progress != nil {
		ch <- BuildDashboard(*s.progress)
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// currentLocked returns the progress or ErrNoProgress. Callers hold s.mu.
func (s *Session) currentLocked() (domain.UserProgress, error) {
	if s.progress == nil {
		return domain.UserProgress{}, domain.ErrNoProgress
	}
	return *s.progress, nil
}

// replaceLocked swaps in p (nil clears) and notifies subscribers. Callers hold s.mu.
func (s *Session) replaceLocked(p *domain.UserProgress) {
	s.progress = p
	if p == nil {
		s.broadcastLocked(domain.Dashboard{Levels: []domain.LevelOutcome{}})
		return
	}
	s.broadcastLocked(BuildDashboard(*p))
}

func (s *Session) broadcastLocked(d domain.Dashboard) {
	for ch := range s.subscribers {
		select {
		case ch <- d:
		default:
			// Drop the stale update so a slow reader never blocks the engine.
			select {
			case <-ch:
			default:
			}
			ch <- d
		}
	}
}
