package cart

import (
	"fmt"
	"slices"
)

type action interface{ cartAction() }

type loadStarted struct{}

type itemsLoaded struct{ items []Item }

type itemAdded struct{ item Item }

type itemRemoved struct{ id string }

type quantityUpdated struct {
	id       string
	quantity int
}

type cartCleared struct{}

func (loadStarted) cartAction() {}
func (itemsLoaded) cartAction() {}
func (itemAdded) cartAction() {}
func (itemRemoved) cartAction() {}
func (quantityUpdated) cartAction() {}
func (cartCleared) cartAction() {}

func reduce(s State, a action) State {
	switch a := a.(type) {
	case loadStarted:
		s.Loading = true
		return s

	case itemsLoaded:
		// Entries added while the load was running are folded in after the stored ones.
		items := merge(merge(nil, a.items), s.Items)
		return withItems(items, false)

	case itemAdded:
		items := slices.Clone(s.Items)
		if i := indexOf(items, a.item.Product.ID, a.item.StoreID); i >= 0 {
			items[i].Quantity += a.item.Quantity
		} else {
			items = append(items, a.item)
		}
		return withItems(items, s.Loading)

	case itemRemoved:
		items := slices.DeleteFunc(slices.Clone(s.Items), func(it Item) bool { return it.ID == a.id })
		return withItems(items, s.Loading)

	case quantityUpdated:
		if a.quantity <= 0 {
			return reduce(s, itemRemoved{id: a.id})
		}
		items := slices.Clone(s.Items)
		for i := range items {
			if items[i].ID == a.id {
				items[i].Quantity = a.quantity
			}
		}
		return withItems(items, s.Loading)

	case cartCleared:
		return withItems(nil, s.Loading)

	default:
		panic(fmt.Sprintf("cart: unhandled action %T", a))
	}
}

func withItems(items []Item, loading bool) State {
	if items == nil {
		items = []Item{}
	}
	count, price := totals(items)
	return State{Items: items, TotalItems: count, TotalPrice: price, Loading: loading}
}

// merge appends extra onto base, folding entries that share a product and store into one.
// Entries with a non-positive quantity are dropped.
func merge(base, extra []Item) []Item {
	out := slices.Clone(base)
	for _, it := range extra {
		if it.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, it.Product.ID, it.StoreID); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}
