// Package storage persists client state slices in a platform key-value store.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Keys owned by the Service. Each state container writes only its own key.
const (
	KeyCart  = "cart"
	KeyUser  = "user"
	KeyOrder = "order"
)

const defaultTimeout = 5 * time.Second

// Service translates typed get/set/remove/clear calls into Store calls with JSON at the
// boundary. No method returns an error: failures are logged and reported as false so
// callers fall back to their empty defaults.
type Service struct {
	store   Store
	timeout time.Duration
	log     *logrus.Entry
}

func NewService(store Store, timeout time.Duration, log *logrus.Entry) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{store: store, timeout: timeout, log: log.WithField("module", "storage")}
}

// Get decodes the value under key into dst. It reports false when the key is absent or
// could not be read; dst is left untouched in that case.
func (s *Service) Get(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("read failed")
		return false
	}
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.WithError(err).WithField("key", key).Error("stored value is not valid json")
		return false
	}
	return true
}

func (s *Service) Set(ctx context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("encode failed")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Set(ctx, key, raw); err != nil {
		s.log.WithError(err).WithField("key", key).Error("write failed")
		return false
	}
	return true
}

func (s *Service) Remove(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Remove(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Error("remove failed")
		return false
	}
	return true
}

// Clear wipes every persisted slice.
func (s *Service) Clear(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.store.Clear(ctx); err != nil {
		s.log.WithError(err).Error("clear failed")
		return false
	}
	return true
}

// MigrationReport describes a local cart hand-off attempt.
type MigrationReport struct {
	UserID    string `json:"user_id"`
	ItemCount int    `json:"item_count"`
	Migrated  bool   `json:"migrated"`
}

// MigrateCartToBackend reads the local cart and reports its size. There is no cart
// backend yet, so nothing is handed off and the local cart is kept.
func (s *Service) MigrateCartToBackend(ctx context.Context, userID string) MigrationReport {
	var items []json.RawMessage
	s.Get(ctx, KeyCart, &items)

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(items),
	}).Info("cart migration requested, no backend configured")

	return MigrationReport{UserID: userID, ItemCount: len(items)}
}
