package user

import "fmt"

type action interface{ userAction() }

type loadStarted struct{}

type sessionLoaded struct {
	rec   record
	found bool
}

type loggedIn struct{ profile Profile }

type loginSkipped struct{}

type loggedOut struct{}

type profileUpdated struct{ partial Profile }

type loginRequested struct{}

func (loadStarted) userAction() {}
func (sessionLoaded) userAction() {}
func (loggedIn) userAction() {}
func (loginSkipped) userAction() {}
func (loggedOut) userAction() {}
func (profileUpdated) userAction() {}
func (loginRequested) userAction() {}

func reduce(s State, a action) State {
	switch a := a.(type) {
	case loadStarted:
		s.Loading = true
		s.hydrating = true
		return s

	case sessionLoaded:
		if s.changed {
			s.Loading, s.hydrating = false, false
			return s
		}
		next := State{}
		switch {
		case a.found && a.rec.IsLoggedIn && a.rec.User != nil:
			next.User = a.rec.User.merge(nil)
			next.IsLoggedIn = true
		case a.found && a.rec.IsGuest:
			next.IsGuest = true
		}
		next.HasSeenLogin = (a.found && a.rec.HasSeenLogin) || next.IsLoggedIn || next.IsGuest
		next.NeedsLogin = !next.IsLoggedIn && !next.IsGuest
		return next

	case loggedIn:
		return State{
			User:         a.profile.merge(nil),
			IsLoggedIn:   true,
			HasSeenLogin: true,
			Loading:      s.Loading,
			hydrating:    s.hydrating,
			changed:      true,
		}

	case loginSkipped:
		return State{
			IsGuest:      true,
			HasSeenLogin: true,
			Loading:      s.Loading,
			hydrating:    s.hydrating,
			changed:      true,
		}

	case loggedOut:
		return State{
			HasSeenLogin: true,
			Loading:      s.Loading,
			hydrating:    s.hydrating,
			changed:      true,
		}

	case profileUpdated:
		if !s.IsLoggedIn {
			return s
		}
		s.User = s.User.merge(a.partial)
		return s

	case loginRequested:
		s.NeedsLogin = true
		return s

	default:
		panic(fmt.Sprintf("user: unhandled action %T", a))
	}
}
