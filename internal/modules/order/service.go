// Package order stages the products of one checkout pass and partitions them by store.
package order

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/storefront-client/internal/modules/cart"
	"github.com/georgemunganga/storefront-client/internal/modules/state"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
)

// Service defines the order staging operations.
type Service interface {
	State() State
	Subscribe(fn func(State)) func()

	// Hydrate restores the persisted order unless one was staged in the meantime.
	Hydrate(ctx context.Context)

	// SetSingleProductOrder stages one product. A quantity below 1 stages a single unit.
	SetSingleProductOrder(product cart.Product, storeID, storeName string, quantity int) State

	// SetCartOrder stages cart entries grouped by store.
	SetCartOrder(items []cart.Item) State

	// UpdateProducts replaces the staged lines and leaves store and type alone.
	UpdateProducts(products []Line) State

	// ClearOrderData resets the order and drops the persisted copy.
	ClearOrderData() State
}

// Persister receives full snapshots to write in the background.
type Persister interface {
	Save(key string, v any)
	Delete(key string)
}

type service struct {
	store  *state.Store[State, action]
	loader *storage.Service
	writer Persister
	log    *logrus.Entry
}

// NewService creates an empty order container.
func NewService(loader *storage.Service, writer Persister, log *logrus.Entry) Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &service{loader: loader, writer: writer, log: log.WithField("module", "order")}
	s.store = state.New(empty(false), reduce, state.WithEffect(s.persist))
	return s
}

func (s *service) State() State { return s.store.State() }

func (s *service) Subscribe(fn func(State)) func() { return s.store.Subscribe(fn) }

func (s *service) Hydrate(ctx context.Context) {
	s.store.Dispatch(loadStarted{})

	var rec record
	loaded := empty(false)
	if s.loader.Get(ctx, storage.KeyOrder, &rec) {
		loaded = rec.state()
	}

	next := s.store.Dispatch(orderLoaded{order: loaded})
	s.log.WithFields(logrus.Fields{
		"products":   len(next.Products),
		"order_type": next.OrderType,
	}).Info("order hydrated")
}

func (s *service) SetSingleProductOrder(product cart.Product, storeID, storeName string, quantity int) State {
	if quantity < 1 {
		quantity = 1
	}
	return s.store.Dispatch(singleStaged{line: Line{
		Product:   product,
		Quantity:  quantity,
		StoreID:   storeID,
		StoreName: storeName,
	}})
}

func (s *service) SetCartOrder(items []cart.Item) State {
	next := s.store.Dispatch(cartStaged{items: items})
	if next.StoreID == "" && len(next.Products) > 0 {
		s.log.WithField("stores", len(Partition(next))).Debug("multi-store order staged")
	}
	return next
}

func (s *service) UpdateProducts(products []Line) State {
	return s.store.Dispatch(productsReplaced{products: products})
}

func (s *service) ClearOrderData() State {
	return s.store.Dispatch(orderCleared{})
}

func (s *service) persist(prev, next State, a action) {
	switch a.(type) {
	case loadStarted:
		return
	case orderLoaded:
		if prev.staged() {
			s.save(next)
		}
		return
	case orderCleared:
		s.writer.Delete(storage.KeyOrder)
		return
	}
	if next.Loading {
		return
	}
	s.save(next)
}

func (s *service) save(next State) {
	if len(next.Products) == 0 {
		s.writer.Delete(storage.KeyOrder)
		return
	}
	s.writer.Save(storage.KeyOrder, toRecord(next))
}
