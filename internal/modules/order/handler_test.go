package order

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/storefront-client/internal/modules/cart"
)

type fakeCart struct{ items []cart.Item }

func (c fakeCart) State() cart.State { return cart.State{Items: c.items} }

func serve(t *testing.T, h *Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandlerStagesLiveCart(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHandler(f.svc, fakeCart{items: []cart.Item{item("p1", "S1", "One"), item("p2", "S2", "Two")}})

	rec := serve(t, h, http.MethodPost, "/api/v1/order/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, TypeCart, got.OrderType)
	assert.Len(t, got.Products, 2)

	rec = serve(t, h, http.MethodGet, "/api/v1/order/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var parts []StoreCheckout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&parts))
	assert.Len(t, parts, 2)
}

func TestHandlerStagesBodyItems(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHandler(f.svc, fakeCart{})

	body := `{"items":[{"product":{"_id":"p9","price":"1"},"quantity":2,"storeId":"S9","storeName":"Nine"}]}`
	rec := serve(t, h, http.MethodPost, "/api/v1/order/cart", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "S9", f.svc.State().StoreID)

	rec = serve(t, h, http.MethodPost, "/api/v1/order/cart", `{"items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerSingleAndClear(t *testing.T) {
	f := newFixture(t, nil)
	h := NewHandler(f.svc, nil)

	rec := serve(t, h, http.MethodPost, "/api/v1/order/single", `{"product":{"name":"x"},"storeId":"S1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h, http.MethodPost, "/api/v1/order/single", `{"product":{"_id":"p1","price":"3"},"storeId":"S1","storeName":"One"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TypeSingle, f.svc.State().OrderType)

	rec = serve(t, h, http.MethodDelete, "/api/v1/order/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.svc.State().Products)
}
