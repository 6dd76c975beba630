package logsvc

import (
	"time"
)

// AppendSignal returns a channel that is closed by the next append.
// Callers that need to keep watching re-arm by calling again; grabbing
// the channel before checking the log closes the check-then-wait race.
func (s *Service) AppendSignal() <-chan struct{} {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	return s.notifyCh
}

// WaitForAppend blocks until either a new append occurs or timeout elapses.
// It returns true if woken by an append, false on timeout. A timeout <= 0
// waits indefinitely.
func (s *Service) WaitForAppend(timeout time.Duration) bool {
	ch := s.AppendSignal()

	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
