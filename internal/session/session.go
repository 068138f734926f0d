// Package session holds the authenticated-session state shared by the
// orchestrators. Every credential change goes through a Session, which
// persists it and notifies subscribers.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/finchat/internal/model"
)

// Store is the durable credential storage a Session writes through to.
type Store interface {
	SaveCredential(ctx context.Context, cred model.Credential) error
	ReadCredential(ctx context.Context) (model.Credential, error)
	SaveUser(ctx context.Context, user model.User) error
	ReadUser(ctx context.Context) (model.User, bool, error)
	ClearSession(ctx context.Context) error
}

// Reason explains why the session changed.
type Reason string

// Session change reasons.
const (
	ReasonRestored    Reason = "restored"
	ReasonEstablished Reason = "established"
	ReasonLoggedOut   Reason = "logged_out"
	ReasonExpired     Reason = "expired"
)

// Event is delivered to subscribers after every credential mutation.
type Event struct {
	Reason        Reason
	Authenticated bool
}

// Session tracks whether a credential is stored. It is safe for concurrent use.
type Session struct {
	store         Store
	subscribers   map[int]func(Event)
	nextID        int
	authenticated bool
	mu            sync.Mutex
}

// New creates a session backed by store. Call Load to pick up a credential
// persisted by a previous run.
func New(store Store) *Session {
	return &Session{
		store:       store,
		subscribers: make(map[int]func(Event)),
	}
}

// Load recomputes the authenticated state from the store.
func (s *Session) Load(ctx context.Context) (bool, error) {
	cred, err := s.store.ReadCredential(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read credential: %w", err)
	}

	authenticated := !cred.IsZero()
	s.publish(Event{Reason: ReasonRestored, Authenticated: authenticated})

	return authenticated, nil
}

// Credential returns the stored credential, read fresh on every call so a
// cleared credential is never handed out.
func (s *Session) Credential(ctx context.Context) (model.Credential, error) {
	return s.store.ReadCredential(ctx)
}

// User returns the stored identity, if any.
func (s *Session) User(ctx context.Context) (model.User, bool, error) {
	return s.store.ReadUser(ctx)
}

// IsAuthenticated reports whether the store currently holds a non-empty credential.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	cred, err := s.store.ReadCredential(ctx)
	if err != nil {
		slog.Warn("Failed to read credential", "error", err)
		return false
	}
	return !cred.IsZero()
}

// Establish persists a freshly issued credential and the user it belongs to.
func (s *Session) Establish(ctx context.Context, cred model.Credential, user model.User) error {
	if err := s.store.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		slog.Warn("Failed to save user identity", "error", err)
	}

	s.publish(Event{Reason: ReasonEstablished, Authenticated: true})
	return nil
}

// End clears the session after an explicit logout.
func (s *Session) End(ctx context.Context) error {
	return s.clear(ctx, ReasonLoggedOut)
}

// Invalidate clears the session after the backend rejected the credential.
func (s *Session) Invalidate(ctx context.Context) error {
	return s.clear(ctx, ReasonExpired)
}

// Subscribe registers fn for session events and returns a function that
// removes it. fn runs synchronously on the goroutine that changed the session.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Authenticated returns the state observed at the last event.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

func (s *Session) clear(ctx context.Context, reason Reason) error {
	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.publish(Event{Reason: reason, Authenticated: false})
	return nil
}

func (s *Session) publish(evt Event) {
	s.mu.Lock()
	s.authenticated = evt.Authenticated
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	slog.Debug("Session changed", "reason", evt.Reason, "authenticated", evt.Authenticated)

	for _, fn := range subs {
		fn(evt)
	}
}
