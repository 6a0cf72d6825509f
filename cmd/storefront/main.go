package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/georgemunganga/storefront-client/internal/app"
	"github.com/georgemunganga/storefront-client/internal/config"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
)

func main() {
	cliApp := &cli.App{
		Name:  "storefront",
		Usage: "headless storefront client: cart, staged order and session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "extra .env file to load"},
			&cli.StringFlag{Name: "driver", Usage: "storage driver (memory|file|postgres|mysql), overrides STORAGE_DRIVER"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "hydrate state and serve the HTTP API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Usage: "listen port, overrides APP_PORT"},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or upgrade the kv_store table of a SQL backend",
				Action: migrateStorage,
			},
			{
				Name:   "inspect",
				Usage:  "print the persisted cart, order and session",
				Action: inspect,
			},
			{
				Name:   "reset",
				Usage:  "remove every persisted value",
				Action: reset,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront failed")
	}
}

func loadConfig(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	var files []string
	if f := c.String("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, nil, err
	}
	if d := c.String("driver"); d != "" {
		cfg.StorageDriver = d
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	if p := c.String("port"); p != "" {
		cfg.Port = p
	}
	return cfg, app.NewLogger(cfg), nil
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	a.Hydrate(ctx)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: a.Router()}
	errs := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"storage": cfg.StorageDriver,
			"env":     cfg.Env,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		if err != nil {
			a.Close(context.Background())
			return errors.Wrap(err, "listen")
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server did not shut down cleanly")
	}
	return a.Close(shutdownCtx)
}

func migrateStorage(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := storage.Migrate(cfg.StorageDriver, cfg.DatabaseURL); err != nil {
		return err
	}
	log.WithField("driver", cfg.StorageDriver).Info("storage schema is up to date")
	return nil
}

func inspect(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := app.New(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	a.User.Hydrate(c.Context)

	report := a.Storage.MigrateCartToBackend(c.Context, a.User.State().User.ID())
	out := struct {
		Values    map[string]json.RawMessage `json:"values"`
		Migration storage.MigrationReport    `json:"migration"`
	}{a.Snapshot(c.Context), report}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func reset(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	a, err := app.New(c.Context, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if !a.Storage.Clear(c.Context) {
		return errors.Errorf("could not clear %s storage", cfg.StorageDriver)
	}
	log.WithField("driver", cfg.StorageDriver).Info("storage cleared")
	return nil
}
