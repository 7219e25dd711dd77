// Package session manages the authenticated session: the bearer token
// and the last known profile snapshot, both persisted so they survive a
// restart.
package session

import (
	"log/slog"
	"sync"

	"github.com/reciperealm/reciperealm-v2/client/internal/localdata"
	"github.com/reciperealm/reciperealm-v2/client/internal/types"
)

// Session is the single source of truth for "who is the viewer". The
// token is opaque to the client; it is only ever attached to requests.
type Session struct {
	local  *localdata.Store
	logger *slog.Logger

	mu       sync.RWMutex
	token    string
	viewerID string
	onChange []func(viewerID string)
}

// New creates a session backed by the given local store.
func New(local *localdata.Store, logger *slog.Logger) *Session {
	return &Session{local: local, logger: logger}
}

// OnIdentityChange registers fn to run whenever the viewer identity
// changes: login, logout, restore. The new viewer id is passed, empty
// for anonymous. Stores register here to drop state that belongs to
// the previous viewer.
func (s *Session) OnIdentityChange(fn func(viewerID string)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// notify runs the identity-change callbacks outside the session lock.
func (s *Session) notify(viewerID string) {
	s.mu.RLock()
	fns := make([]func(string), len(s.onChange))
	copy(fns, s.onChange)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(viewerID)
	}
}

// Restore loads a persisted session, returning the profile snapshot if
// both token and profile survive. A missing or corrupted snapshot means
// the viewer starts anonymous.
func (s *Session) Restore() (types.UserProfile, bool) {
	token := s.local.Token()
	if token == "" {
		return types.UserProfile{}, false
	}
	profile, ok := s.local.Profile()
	if !ok {
		// Token without a readable profile is not a usable session.
		if err := s.local.ClearSession(); err != nil {
			s.logger.Warn("failed to clear broken session", "error", err)
		}
		return types.UserProfile{}, false
	}

	s.mu.Lock()
	s.token = token
	s.viewerID = profile.ID
	s.mu.Unlock()
	s.notify(profile.ID)
	return profile, true
}

// Establish stores a fresh session after login or registration. The
// anonymous interaction maps are left alone: they are abandoned, not
// merged.
func (s *Session) Establish(token string, profile types.UserProfile) error {
	if err := s.local.SetToken(token); err != nil {
		return err
	}
	if err := s.local.SetProfile(profile); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.viewerID = profile.ID
	s.mu.Unlock()
	s.notify(profile.ID)
	return nil
}

// UpdateProfile refreshes the persisted snapshot after a successful
// profile load.
func (s *Session) UpdateProfile(profile types.UserProfile) error {
	s.mu.Lock()
	s.viewerID = profile.ID
	s.mu.Unlock()
	return s.local.SetProfile(profile)
}

// Token returns the current bearer token, empty when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ViewerID returns the authenticated user's id, empty when anonymous.
func (s *Session) ViewerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewerID
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Invalidate drops the session on logout or when the server answers
// 401. The anonymous maps stay untouched.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	s.token = ""
	s.viewerID = ""
	s.mu.Unlock()
	s.notify("")
	return s.local.ClearSession()
}
