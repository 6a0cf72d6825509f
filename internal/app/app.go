// Package app wires storage, the state containers and the HTTP surface together. One App is
// built per process and handed to whoever needs it.
package app

import (
	"context"
	"encoding/json"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/storefront-client/internal/config"
	"github.com/georgemunganga/storefront-client/internal/modules/cart"
	"github.com/georgemunganga/storefront-client/internal/modules/marketplace"
	"github.com/georgemunganga/storefront-client/internal/modules/order"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
	"github.com/georgemunganga/storefront-client/internal/modules/user"
)

type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Storage *storage.Service
	Writer  *storage.Writer

	Cart        cart.Service
	Order       order.Service
	User        user.Service
	Marketplace *marketplace.Client

	closeStore func() error
}

// NewLogger builds the process logger: text in dev, JSON everywhere else.
func NewLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsDev() {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// New opens the configured storage backend and builds every container on top of it.
func New(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	store, closeStore, err := storage.Open(ctx, storage.Options{
		Driver:    cfg.StorageDriver,
		Path:      cfg.StoragePath,
		DSN:       cfg.DatabaseURL,
		Namespace: cfg.StorageNamespace,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s storage", cfg.StorageDriver)
	}
	a := NewWithStore(cfg, store, log)
	a.closeStore = closeStore
	return a, nil
}

// NewWithStore builds the containers over an already opened store.
func NewWithStore(cfg *config.Config, store storage.Store, log *logrus.Logger) *App {
	entry := logrus.NewEntry(log)
	svc := storage.NewService(store, cfg.StorageTimeout, entry)
	writer := storage.NewWriter(svc)

	a := &App{
		Config:      cfg,
		Log:         log,
		Storage:     svc,
		Writer:      writer,
		Cart:        cart.NewService(svc, writer, entry),
		Order:       order.NewService(svc, writer, entry),
		User:        user.NewService(svc, writer, entry),
		Marketplace: marketplace.NewClient(cfg.MarketplaceURL, cfg.MarketplaceTimeout, entry),
		closeStore:  func() error { return nil },
	}
	a.watchLogins()
	return a
}

// watchLogins reports the local cart to the migration hook whenever someone signs in.
func (a *App) watchLogins() {
	wasLoggedIn := false
	a.User.Subscribe(func(s user.State) {
		if s.IsLoggedIn && !wasLoggedIn {
			go a.Storage.MigrateCartToBackend(context.Background(), s.User.ID())
		}
		wasLoggedIn = s.IsLoggedIn
	})
}

// Hydrate restores every container from storage.
func (a *App) Hydrate(ctx context.Context) {
	a.User.Hydrate(ctx)
	a.Cart.Hydrate(ctx)
	a.Order.Hydrate(ctx)
}

func (a *App) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: a.Log, NoColor: !a.Config.IsDev()}))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	cart.NewHandler(a.Cart).RegisterRoutes(router)
	order.NewHandler(a.Order, a.Cart).RegisterRoutes(router)
	user.NewHandler(a.User, accounts{client: a.Marketplace}).RegisterRoutes(router)
	marketplace.NewHandler(a.Marketplace).RegisterRoutes(router)

	return router
}

// Snapshot returns the raw persisted value of every key, nil for absent ones.
func (a *App) Snapshot(ctx context.Context) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage)
	for _, key := range []string{storage.KeyCart, storage.KeyOrder, storage.KeyUser} {
		var raw json.RawMessage
		if a.Storage.Get(ctx, key, &raw) {
			out[key] = raw
		} else {
			out[key] = nil
		}
	}
	return out
}

// Close waits for pending writes and releases the storage backend.
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Writer.Flush(ctx)
	if err := a.closeStore(); err != nil {
		return errors.Wrap(err, "close storage")
	}
	return errors.Wrap(flushErr, "flush pending writes")
}

// accounts adapts the marketplace client to the session handler.
type accounts struct{ client *marketplace.Client }

func (a accounts) Authenticate(ctx context.Context, creds user.Credentials) (user.Profile, error) {
	s, err := a.client.AuthenticateUser(ctx, marketplace.Credentials{
		Identifier: creds.Identifier,
		Password:   creds.Password,
	})
	if err != nil {
		return nil, err
	}
	return s.Profile(), nil
}

func (a accounts) Register(ctx context.Context, fields user.Profile) (user.Profile, error) {
	s, err := a.client.CreateUser(ctx, fields)
	if err != nil {
		return nil, err
	}
	return s.Profile(), nil
}
