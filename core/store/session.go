package store

import (
	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/user"
)

// Session is the identity of one actor: a registered user or a guest.
// It only keeps the user id; the user itself is resolved from the Users collection on every read,
// so the session can never drift from the collection.
type Session struct {
	store  *Store
	userID string // guarded by store.mu
}

// NewSession returns a guest session.
func (s *Store) NewSession() *Session {
	return &Session{store: s}
}

// SessionFor binds an already authenticated user (e.g. the subject of a verified token) to a session.
// Locked accounts cannot hold a session.
func (s *Store) SessionFor(userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.userByID(userID)
	if u == nil {
		return nil, user.ErrNotFound
	}
	if u.IsLocked() {
		return nil, user.ErrAccountLocked
	}
	return &Session{store: s, userID: u.ID}, nil
}

// User returns the current session user, or false for guests.
func (sess *Session) User() (user.User, bool) {
	sess.store.mu.RLock()
	defer sess.store.mu.RUnlock()
	if u := sess.current(); u != nil {
		return u.Clone(), true
	}
	return user.User{}, false
}

func (sess *Session) IsAuthenticated() bool {
	_, ok := sess.User()
	return ok
}

// current resolves the session user; callers must hold store.mu.
// A locked account no longer backs any session.
func (sess *Session) current() *user.User {
	if u := sess.store.userByID(sess.userID); u != nil && !u.IsLocked() {
		return u
	}
	return nil
}

// requireUser resolves the session user or fails with core.ErrUnauthenticated; callers must hold store.mu.
func (sess *Session) requireUser() (*user.User, error) {
	if u := sess.current(); u != nil {
		return u, nil
	}
	return nil, core.ErrUnauthenticated
}

// requireAdmin resolves an ADMIN session user; callers must hold store.mu.
func (sess *Session) requireAdmin() (*user.User, error) {
	u, err := sess.requireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin() {
		return nil, core.ErrPermissionDenied
	}
	return u, nil
}

// requireStaff resolves a TEACHER or ADMIN session user; callers must hold store.mu.
func (sess *Session) requireStaff() (*user.User, error) {
	u, err := sess.requireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsStaff() {
		return nil, core.ErrPermissionDenied
	}
	return u, nil
}
