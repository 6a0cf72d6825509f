package user

import (
	"maps"
	"time"
)

// Profile is the account record returned by the marketplace. Its fields are owned by the
// remote service, so it is kept as an open map.
type Profile map[string]any

// ID returns the profile's identifier, or "" when it has none.
func (p Profile) ID() string {
	for _, k := range []string{"_id", "id"} {
		if v, ok := p[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (p Profile) merge(partial Profile) Profile {
	out := maps.Clone(p)
	if out == nil {
		out = Profile{}
	}
	maps.Copy(out, partial)
	return out
}

// Status is the resolved view of a session.
type Status string

const (
	StatusUnresolved    Status = "unresolved"
	StatusHydrating     Status = "hydrating"
	StatusAuthenticated Status = "authenticated"
	StatusGuest         Status = "guest"
	StatusLoggedOut     Status = "logged_out"
)

// State is the session. IsLoggedIn and IsGuest are never both set; a logged-in session
// always carries a profile and a guest session never does.
type State struct {
	User         Profile `json:"user"`
	IsLoggedIn   bool    `json:"isLoggedIn"`
	IsGuest      bool    `json:"isGuest"`
	HasSeenLogin bool    `json:"hasSeenLogin"`
	NeedsLogin   bool    `json:"needsLogin"`
	Loading      bool    `json:"loading"`

	hydrating bool
	// changed is set once the session was resolved locally; a late load leaves it alone.
	changed bool
}

func initial() State {
	return State{NeedsLogin: true, Loading: true}
}

// Status reports which session state s is in. A login prompt requested on top of a
// resolved session shows up as NeedsLogin, not as a separate status.
func (s State) Status() Status {
	switch {
	case s.IsLoggedIn:
		return StatusAuthenticated
	case s.IsGuest:
		return StatusGuest
	case s.Loading && s.hydrating:
		return StatusHydrating
	case s.Loading:
		return StatusUnresolved
	default:
		return StatusLoggedOut
	}
}

// record is the persisted shape under the user key.
type record struct {
	User         Profile   `json:"user"`
	IsLoggedIn   bool      `json:"isLoggedIn"`
	IsGuest      bool      `json:"isGuest"`
	HasSeenLogin bool      `json:"hasSeenLogin"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

// Credentials are exchanged for a profile by an Authenticator.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
