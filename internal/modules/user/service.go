// Package user holds the shopper's session: signed in, browsing as a guest, or signed out.
package user

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/storefront-client/internal/modules/state"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
)

// Service defines the session operations. It is built once at startup and handed to every
// caller that needs to sign the shopper in or out.
type Service interface {
	State() State
	Subscribe(fn func(State)) func()

	// Hydrate restores a persisted signed-in or guest session. Anything else leaves the
	// session waiting for a login.
	Hydrate(ctx context.Context)

	LoginUser(profile Profile) State
	SkipLogin() State

	// LogoutUser signs out and waits, bounded by ctx, for the stored session to be removed.
	// Storage failures are logged, never returned.
	LogoutUser(ctx context.Context) State

	// UpdateUser shallow-merges partial into the signed-in profile.
	UpdateUser(partial Profile) State

	// ShowLoginScreen asks for a login without discarding the current session.
	ShowLoginScreen() State
}

// Persister receives session snapshots to write in the background.
type Persister interface {
	Save(key string, v any)
	Delete(key string)
	Flush(ctx context.Context) error
}

type service struct {
	store  *state.Store[State, action]
	loader *storage.Service
	writer Persister
	log    *logrus.Entry
	now    func() time.Time
}

func NewService(loader *storage.Service, writer Persister, log *logrus.Entry) Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &service{
		loader: loader,
		writer: writer,
		log:    log.WithField("module", "user"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.store = state.New(initial(), reduce, state.WithEffect(s.persist))
	return s
}

func (s *service) State() State { return s.store.State() }

func (s *service) Subscribe(fn func(State)) func() { return s.store.Subscribe(fn) }

func (s *service) Hydrate(ctx context.Context) {
	s.store.Dispatch(loadStarted{})

	var rec record
	found := s.loader.Get(ctx, storage.KeyUser, &rec)

	next := s.store.Dispatch(sessionLoaded{rec: rec, found: found})
	s.log.WithFields(logrus.Fields{
		"status":      next.Status(),
		"needs_login": next.NeedsLogin,
	}).Info("session hydrated")
}

func (s *service) LoginUser(profile Profile) State {
	next := s.store.Dispatch(loggedIn{profile: profile})
	s.log.WithField("user_id", next.User.ID()).Info("user logged in")
	return next
}

func (s *service) SkipLogin() State {
	return s.store.Dispatch(loginSkipped{})
}

func (s *service) LogoutUser(ctx context.Context) State {
	next := s.store.Dispatch(loggedOut{})
	if err := s.writer.Flush(ctx); err != nil {
		s.log.WithError(err).Warn("logout returned before the stored session was removed")
	}
	return next
}

func (s *service) UpdateUser(partial Profile) State {
	next := s.store.Dispatch(profileUpdated{partial: partial})
	if !next.IsLoggedIn {
		s.log.Debug("profile update ignored, nobody is logged in")
	}
	return next
}

func (s *service) ShowLoginScreen() State {
	return s.store.Dispatch(loginRequested{})
}

// persist keeps the stored session in step with signed-in and guest sessions and removes
// it for everything else.
func (s *service) persist(_, next State, a action) {
	switch a.(type) {
	case loadStarted, sessionLoaded:
		return
	case loggedOut:
		s.writer.Delete(storage.KeyUser)
		return
	}
	if !next.IsLoggedIn && !next.IsGuest {
		// While loading, the stored session has not been read yet.
		if !next.Loading {
			s.writer.Delete(storage.KeyUser)
		}
		return
	}
	s.writer.Save(storage.KeyUser, record{
		User:         next.User,
		IsLoggedIn:   next.IsLoggedIn,
		IsGuest:      next.IsGuest,
		HasSeenLogin: next.HasSeenLogin,
		LastUpdated:  s.now(),
	})
}
