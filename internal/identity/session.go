// ABOUTME: Signed-in session over a pluggable identity provider.
// ABOUTME: Store operations must wait until EnsureSignedIn has produced a user id.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotSignedIn is returned when an operation needs a user and there is none.
var ErrNotSignedIn = errors.New("not signed in")

// Signer obtains a user id from an identity provider.
type Signer interface {
	SignIn(ctx context.Context) (string, error)
	SignOut() error
}

// Session tracks the current user and notifies listeners on change.
type Session struct {
	mu        sync.Mutex
	signer    Signer
	userID    string
	listeners map[int]func(userID string)
	nextID    int
}

// NewSession returns a signed-out session.
func NewSession(signer Signer) *Session {
	return &Session{signer: signer, listeners: make(map[int]func(string))}
}

// CurrentUserID returns the signed-in user, if any.
func (s *Session) CurrentUserID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

// OnAuthChange registers fn and calls it immediately with the current user
// ("" when signed out), then again on every change. The returned func unregisters it.
func (s *Session) OnAuthChange(fn func(userID string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.userID
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) setUser(userID string) {
	s.mu.Lock()
	if s.userID == userID {
		s.mu.Unlock()
		return
	}
	s.userID = userID
	fns := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(userID)
	}
}

// EnsureSignedIn returns the current user, signing in first when needed.
func (s *Session) EnsureSignedIn(ctx context.Context) (string, error) {
	if id, ok := s.CurrentUserID(); ok {
		return id, nil
	}
	id, err := s.signer.SignIn(ctx)
	if err != nil {
		return "", fmt.Errorf("sign in: %w", err)
	}
	if id == "" {
		return "", fmt.Errorf("sign in: %w", ErrNotSignedIn)
	}
	s.setUser(id)
	return id, nil
}

// SignOut clears the current user.
func (s *Session) SignOut() error {
	if err := s.signer.SignOut(); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.setUser("")
	return nil
}
