package marketplace

import "encoding/json"

// envelope is the response wrapper every marketplace endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Store is a vendor storefront in the marketplace.
type Store struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Credentials identify an account by username or email.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Session is the result of a login or registration.
type Session struct {
	User  map[string]any `json:"user"`
	Token string         `json:"token"`
}

type usernameCheck struct {
	Available bool `json:"available"`
}

// Profile returns the account record with the session token attached under "token".
func (s *Session) Profile() map[string]any {
	out := make(map[string]any, len(s.User)+1)
	for k, v := range s.User {
		out[k] = v
	}
	if s.Token != "" {
		out["token"] = s.Token
	}
	return out
}
