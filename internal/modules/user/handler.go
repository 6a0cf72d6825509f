package user

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Accounts is the remote account service. Both calls return the signed-in profile.
type Accounts interface {
	Authenticate(ctx context.Context, creds Credentials) (Profile, error)
	Register(ctx context.Context, fields Profile) (Profile, error)
}

type Handler struct {
	service  Service
	accounts Accounts
}

func NewHandler(service Service, accounts Accounts) *Handler {
	return &Handler{service: service, accounts: accounts}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Post("/login", h.login)
		r.Post("/guest", h.skipLogin)
		r.Post("/logout", h.logout)
		r.Patch("/profile", h.updateProfile)
		r.Post("/login-prompt", h.showLogin)
		r.Post("/authenticate", h.authenticate)
		r.Post("/register", h.register)
	})
}

type sessionResponse struct {
	State
	Status Status `json:"status"`
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.State())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(profile) == 0 {
		http.Error(w, "profile is required", http.StatusBadRequest)
		return
	}
	respond(w, http.StatusOK, h.service.LoginUser(profile))
}

func (h *Handler) skipLogin(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.SkipLogin())
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.LogoutUser(r.Context()))
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var partial Profile
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.service.State().IsLoggedIn {
		http.Error(w, "not logged in", http.StatusConflict)
		return
	}
	respond(w, http.StatusOK, h.service.UpdateUser(partial))
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.ShowLoginScreen())
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		http.Error(w, "authentication is not configured", http.StatusServiceUnavailable)
		return
	}
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if creds.Identifier == "" || creds.Password == "" {
		http.Error(w, "identifier and password are required", http.StatusBadRequest)
		return
	}

	profile, err := h.accounts.Authenticate(r.Context(), creds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	respond(w, http.StatusOK, h.service.LoginUser(profile))
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if h.accounts == nil {
		http.Error(w, "registration is not configured", http.StatusServiceUnavailable)
		return
	}
	var fields Profile
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.accounts.Register(r.Context(), fields)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	respond(w, http.StatusOK, h.service.LoginUser(profile))
}

func respond(w http.ResponseWriter, status int, s State) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(sessionResponse{State: s, Status: s.Status()})
}
