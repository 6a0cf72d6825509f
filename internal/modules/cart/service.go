// Package cart is the shopping cart state container: reducer-driven, totals derived from
// the item list, persisted as a full snapshot after every change.
package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/storefront-client/internal/modules/state"
	"github.com/georgemunganga/storefront-client/internal/modules/storage"
)

// Service defines the cart operations exposed to consumers.
type Service interface {
	// State returns the current cart snapshot.
	State() State

	// Subscribe registers fn for every cart change and returns its cancel func.
	Subscribe(fn func(State)) func()

	// Hydrate loads the persisted cart. A failed load leaves the cart empty.
	Hydrate(ctx context.Context)

	// AddToCart increments the entry for (product, store) or appends a new one.
	// A quantity below 1 adds a single unit.
	AddToCart(product Product, quantity int, storeID, storeName string) State

	// RemoveFromCart deletes the entry with itemID, if any.
	RemoveFromCart(itemID string) State

	// UpdateQuantity sets an entry's quantity; zero or less removes the entry.
	UpdateQuantity(itemID string, quantity int) State

	// ClearCart empties the cart and drops the persisted copy.
	ClearCart() State

	GetItemQuantityInCart(productID, storeID string) int
	IsItemInCart(productID, storeID string) bool
	GetCartItemID(productID, storeID string) (string, bool)
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

	newID func() string
	now   func() time.Time
}

// NewService creates an empty cart backed by loader for hydration and writer for
// persistence.
func NewService(loader *storage.Service, writer Persister, log *logrus.Entry) Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &service{
		loader: loader,
		writer: writer,
		log:    log.WithField("module", "cart"),
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
	s.store = state.New(withItems(nil, false), reduce, state.WithEffect(s.persist))
	return s
}

func (s *service) State() State { return s.store.State() }

func (s *service) Subscribe(fn func(State)) func() { return s.store.Subscribe(fn) }

func (s *service) Hydrate(ctx context.Context) {
	s.store.Dispatch(loadStarted{})

	var items []Item
	if !s.loader.Get(ctx, storage.KeyCart, &items) {
		items = nil
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
	}

	next := s.store.Dispatch(itemsLoaded{items: items})
	s.log.WithField("items", len(next.Items)).Info("cart hydrated")
}

func (s *service) AddToCart(product Product, quantity int, storeID, storeName string) State {
	if quantity < 1 {
		quantity = 1
	}
	if _, ok := ParsePrice(product.Price); !ok {
		s.log.WithFields(logrus.Fields{
			"product_id": product.ID,
			"price":      product.Price,
		}).Warn("unparseable price, counted as 0")
	}
	return s.store.Dispatch(itemAdded{item: Item{
		ID:        s.newID(),
		Product:   product,
		Quantity:  quantity,
		StoreID:   storeID,
		StoreName: storeName,
		AddedAt:   s.now(),
	}})
}

func (s *service) RemoveFromCart(itemID string) State {
	return s.store.Dispatch(itemRemoved{id: itemID})
}

func (s *service) UpdateQuantity(itemID string, quantity int) State {
	return s.store.Dispatch(quantityUpdated{id: itemID, quantity: quantity})
}

func (s *service) ClearCart() State {
	return s.store.Dispatch(cartCleared{})
}

func (s *service) GetItemQuantityInCart(productID, storeID string) int {
	it, _ := s.State().find(productID, storeID)
	return it.Quantity
}

func (s *service) IsItemInCart(productID, storeID string) bool {
	_, ok := s.State().find(productID, storeID)
	return ok
}

func (s *service) GetCartItemID(productID, storeID string) (string, bool) {
	it, ok := s.State().find(productID, storeID)
	return it.ID, ok
}

// persist runs after every transition in dispatch order.
func (s *service) persist(prev, next State, a action) {
	switch a.(type) {
	case loadStarted:
		return
	case itemsLoaded:
		// Only write back when entries added during the load were merged in.
		if len(prev.Items) > 0 {
			s.writer.Save(storage.KeyCart, next.Items)
		}
		return
	case cartCleared:
		s.writer.Delete(storage.KeyCart)
		return
	}
	if next.Loading {
		return
	}
	s.writer.Save(storage.KeyCart, next.Items)
}
