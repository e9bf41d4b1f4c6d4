// Package session holds the signed-in identity shared by every panel.
// It is set at login, cleared at logout and read-only everywhere else.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jaigner-hub/msgdesk/internal/data"
	"github.com/jaigner-hub/msgdesk/internal/validate"
)

var (
	// ErrInvalidCredentials is returned when the auth service rejects a login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signup conflicts with an existing account.
	ErrEmailTaken = errors.New("an account with this email already exists")
)

// Authenticator is the part of the auth service the session needs.
type Authenticator interface {
	Login(ctx context.Context, creds data.Credentials) (bool, error)
	Signup(ctx context.Context, creds data.Credentials) error
}

// Identity is the signed-in user.
type Identity struct {
	Email      string
	SignedInAt time.Time
}

// Session owns the current identity.
type Session struct {
	mu  sync.RWMutex
	cur *Identity
	now func() time.Time
}

// New returns a signed-out session.
func New() *Session {
	return &Session{now: time.Now}
}

// SignIn validates the form, checks it with the auth service and, on
// success, makes creds.Email the current identity.
func (s *Session) SignIn(ctx context.Context, auth Authenticator, email, password string) (Identity, error) {
	creds, err := validate.Login(email, password)
	if err != nil {
		return Identity{}, err
	}
	ok, err := auth.Login(ctx, creds)
	if err != nil {
		return Identity{}, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return s.set(creds.Email), nil
}

// SignUp validates the form and creates the account. It does not sign in.
func (s *Session) SignUp(ctx context.Context, auth Authenticator, email, password, confirm string) error {
	creds, err := validate.Signup(email, password, confirm)
	if err != nil {
		return err
	}
	if err := auth.Signup(ctx, creds); err != nil {
		if data.IsConflict(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// Assume sets the identity without contacting the auth service. The CLI uses
// it for the configured user.
func (s *Session) Assume(email string) (Identity, error) {
	if !validate.Email(email) {
		return Identity{}, fmt.Errorf("user %q is not a valid email", email)
	}
	return s.set(email), nil
}

func (s *Session) set(email string) Identity {
	id := Identity{Email: email, SignedInAt: s.now()}
	s.mu.Lock()
	s.cur = &id
	s.mu.Unlock()
	return id
}

// Logout clears the identity.
func (s *Session) Logout() {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}

// Current returns the identity and whether anyone is signed in.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Identity{}, false
	}
	return *s.cur, true
}

// Email returns the signed-in email, or "".
func (s *Session) Email() string {
	id, _ := s.Current()
	return id.Email
}
