package marketplace

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerProxiesCatalog(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(NewClient(newServer(t).URL, time.Second, quietLog())).RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var stores []Store
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stores))
	assert.Len(t, stores, 2)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/missing/products", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Store not found")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/username-check?username=taken", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/username-check", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
