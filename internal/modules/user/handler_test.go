package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct{}

func (fakeAccounts) Authenticate(_ context.Context, c Credentials) (Profile, error) {
	if c.Password != "secret" {
		return nil, errors.New("invalid credentials")
	}
	return Profile{"_id": "u7", "username": c.Identifier}, nil
}

func (fakeAccounts) Register(_ context.Context, fields Profile) (Profile, error) {
	if fields["username"] == "taken" {
		return nil, errors.New("username is taken")
	}
	return fields.merge(Profile{"_id": "new"}), nil
}

func newRouter(t *testing.T, accounts Accounts) (*chi.Mux, *fixture) {
	t.Helper()
	f := newFixture(t, nil)
	f.svc.Hydrate(context.Background())
	r := chi.NewRouter()
	NewHandler(f.svc, accounts).RegisterRoutes(r)
	return r, f
}

func call(t *testing.T, r http.Handler, method, target, body string) (int, sessionResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	var out sessionResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	}
	return rec.Code, out
}

func TestHandlerSessionLifecycle(t *testing.T) {
	r, _ := newRouter(t, nil)

	code, s := call(t, r, http.MethodGet, "/api/v1/session/", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusLoggedOut, s.Status)
	assert.True(t, s.NeedsLogin)

	code, s = call(t, r, http.MethodPost, "/api/v1/session/guest", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusGuest, s.Status)

	code, _ = call(t, r, http.MethodPatch, "/api/v1/session/profile", `{"name":"x"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, s = call(t, r, http.MethodPost, "/api/v1/session/login", `{"_id":"u1","name":"Alice"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusAuthenticated, s.Status)
	assert.Equal(t, "Alice", s.User["name"])

	code, s = call(t, r, http.MethodPatch, "/api/v1/session/profile", `{"name":"Alicia"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Alicia", s.User["name"])

	code, s = call(t, r, http.MethodPost, "/api/v1/session/login-prompt", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, s.NeedsLogin)
	assert.True(t, s.IsLoggedIn)

	code, s = call(t, r, http.MethodPost, "/api/v1/session/logout", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, s.NeedsLogin)
	assert.Equal(t, StatusLoggedOut, s.Status)

	code, _ = call(t, r, http.MethodPost, "/api/v1/session/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandlerAuthenticate(t *testing.T) {
	r, f := newRouter(t, fakeAccounts{})

	code, _ := call(t, r, http.MethodPost, "/api/v1/session/authenticate", `{"identifier":"bob","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, f.svc.State().IsLoggedIn)

	code, _ = call(t, r, http.MethodPost, "/api/v1/session/authenticate", `{"identifier":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, s := call(t, r, http.MethodPost, "/api/v1/session/authenticate", `{"identifier":"bob","password":"secret"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u7", s.User.ID())
	assert.Equal(t, StatusAuthenticated, s.Status)
}

func TestHandlerAuthenticateUnconfigured(t *testing.T) {
	r, _ := newRouter(t, nil)
	code, _ := call(t, r, http.MethodPost, "/api/v1/session/authenticate", `{"identifier":"a","password":"b"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestHandlerRegister(t *testing.T) {
	r, f := newRouter(t, fakeAccounts{})

	code, _ := call(t, r, http.MethodPost, "/api/v1/session/register", `{"username":"taken"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, f.svc.State().IsLoggedIn)

	code, s := call(t, r, http.MethodPost, "/api/v1/session/register", `{"username":"carol"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "new", s.User.ID())
	assert.Equal(t, "carol", s.User["username"])
}
