package client

import (
	"context"
	"sync"
	"time"

	"github.com/employee-portal/portal/backend/go-services/pkg/logger"
)

// renewLead is how far before expiry the renewal fires.
const renewLead = 5 * time.Second

// RenewFunc obtains a fresh access token, typically by hitting the refresh
// endpoint with the stored cookie. It returns the token and its lifetime in
// milliseconds.
type RenewFunc func(ctx context.Context) (token string, expirationMs int64, err error)

// SessionManager caches the current access token and silently renews it
// shortly before expiry. Every state change bumps a generation counter; a
// timer that fires for a stale generation is a no-op, which makes the
// renew/logout race safe: whichever happened last wins.
//
// Managers subscribed to the same Broadcaster log out together, so ending
// a session in one place clears every sibling.
type SessionManager struct {
	mu    sync.Mutex
	token string
	gen   uint64
	timer *time.Timer

	renew       RenewFunc
	broadcast   Broadcaster
	unsubscribe func()
}

// NewSessionManager creates a manager renewing through renew. broadcast may
// be nil for a standalone session.
func NewSessionManager(renew RenewFunc, broadcast Broadcaster) *SessionManager {
	s := &SessionManager{renew: renew, broadcast: broadcast}
	if broadcast != nil {
		s.unsubscribe = broadcast.SubscribeLogout(s.clear)
	}
	return s
}

// Token returns the cached access token, empty when logged out.
func (s *SessionManager) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken stores a fresh token and re-arms the renewal timer at
// expiration minus the lead. Any pending renewal is cancelled first.
func (s *SessionManager) SetToken(token string, expirationMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.token = token
	s.stopTimerLocked()

	d := time.Duration(expirationMs)*time.Millisecond - renewLead
	if d < 0 {
		d = 0
	}
	gen := s.gen
	s.timer = time.AfterFunc(d, func() { s.renewExpiring(gen) })
}

// DeleteToken ends the session: cancels the pending renewal, clears the
// token and tells sibling sessions to do the same.
func (s *SessionManager) DeleteToken() {
	s.clear()
	if s.broadcast != nil {
		if err := s.broadcast.PublishLogout(context.Background()); err != nil {
			logger.Warnf("session: failed to publish logout: %v", err)
		}
	}
}

// Close releases the broadcast subscription and stops the timer without
// logging sibling sessions out.
func (s *SessionManager) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.clear()
}

func (s *SessionManager) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.token = ""
	s.stopTimerLocked()
}

func (s *SessionManager) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// renewExpiring runs when the renewal timer fires. The generation check
// discards timers that lost a race with SetToken or DeleteToken.
func (s *SessionManager) renewExpiring(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.renew == nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, expirationMs, err := s.renew(ctx)

	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		// a newer token or a logout landed while the renewal was in
		// flight; its outcome no longer applies
		return
	}

	if err != nil {
		// renewal failed, session ends quietly for this client only
		logger.Debugf("session: renewal failed: %v", err)
		s.clear()
		return
	}
	s.SetToken(token, expirationMs)
}
