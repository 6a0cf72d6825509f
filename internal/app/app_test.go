package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/storefront-client/internal/config"
	"github.com/georgemunganga/storefront-client/internal/modules/cart"
	"github.com/georgemunganga/storefront-client/internal/modules/order"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
	"github.com/georgemunganga/storefront-client/internal/modules/user"
)

func testConfig(marketplaceURL string) *config.Config {
	return &config.Config{
		Env:                "test",
		LogLevel:           "error",
		StorageDriver:      storage.DriverMemory,
		StorageTimeout:     time.Second,
		MarketplaceURL:     marketplaceURL,
		MarketplaceTimeout: time.Second,
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func send(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestShoppingFlowSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	a := NewWithStore(testConfig("http://127.0.0.1:1"), store, quietLogger())
	a.Hydrate(ctx)
	router := a.Router()

	rec := send(t, router, http.MethodPost, "/api/v1/session/guest", "")
	require.Equal(t, http.StatusOK, rec.Code)

	for _, body := range []string{
		`{"product":{"_id":"p1","price":"Rs.100/="},"quantity":2,"storeId":"S1","storeName":"One"}`,
		`{"product":{"_id":"p2","price":"50"},"storeId":"S2","storeName":"Two"}`,
		`{"product":{"_id":"p3","price":"$1.25"},"storeId":"S1","storeName":"One"}`,
	} {
		rec = send(t, router, http.MethodPost, "/api/v1/cart/items", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = send(t, router, http.MethodPost, "/api/v1/order/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, router, http.MethodGet, "/api/v1/order/checkout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var parts []order.StoreCheckout
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&parts))
	require.Len(t, parts, 2)
	assert.Equal(t, 201.25, parts[0].Subtotal)
	assert.Equal(t, 50.0, parts[1].Subtotal)

	wantCart := a.Cart.State()
	wantOrder := a.Order.State()
	require.NoError(t, a.Close(ctx))

	b := NewWithStore(testConfig("http://127.0.0.1:1"), store, quietLogger())
	b.Hydrate(ctx)

	assert.Equal(t, wantCart, b.Cart.State())
	assert.Equal(t, wantOrder, b.Order.State())
	assert.Equal(t, user.StatusGuest, b.User.State().Status())
	assert.False(t, b.User.State().NeedsLogin)

	snap := b.Snapshot(ctx)
	assert.NotNil(t, snap[storage.KeyCart])
	assert.NotNil(t, snap[storage.KeyOrder])
	assert.NotNil(t, snap[storage.KeyUser])
}

func TestAuthenticateThroughMarketplace(t *testing.T) {
	mp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"success":false,"error":"not found"}`)
			return
		}
		io.WriteString(w, `{"success":true,"data":{"user":{"_id":"u1","username":"bob"},"token":"tok"}}`)
	}))
	defer mp.Close()

	ctx := context.Background()
	a := NewWithStore(testConfig(mp.URL), storage.NewMemoryStore(), quietLogger())
	a.Hydrate(ctx)
	router := a.Router()

	rec := send(t, router, http.MethodPost, "/api/v1/session/authenticate", `{"identifier":"bob","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	s := a.User.State()
	assert.True(t, s.IsLoggedIn)
	assert.Equal(t, "u1", s.User.ID())
	assert.Equal(t, "tok", s.User["token"])

	rec = send(t, router, http.MethodGet, "/api/v1/stores/", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")

	require.NoError(t, a.Close(ctx))
}

func TestNewOpensConfiguredBackend(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.StorageDriver = storage.DriverFile
	cfg.StoragePath = t.TempDir()

	a, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	a.Cart.AddToCart(cart.Product{ID: "p1", Price: "1"}, 1, "S1", "One")
	require.NoError(t, a.Close(context.Background()))

	b, err := New(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	b.Hydrate(context.Background())
	assert.Equal(t, 1, b.Cart.State().TotalItems)
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := testConfig("")
	cfg.StorageDriver = "redis"
	_, err := New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&config.Config{Env: "production", LogLevel: "debug"})
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger(&config.Config{Env: "dev", LogLevel: "loud"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
