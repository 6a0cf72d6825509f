package order

import (
	"fmt"
	"slices"

	"github.com/georgemunganga/storefront-client/internal/modules/cart"
)

type action interface{ orderAction() }

type loadStarted struct{}

type orderLoaded struct{ order State }

type singleStaged struct{ line Line }

type cartStaged struct{ items []cart.Item }

type productsReplaced struct{ products []Line }

type orderCleared struct{}

func (loadStarted) orderAction() {}
func (orderLoaded) orderAction() {}
func (singleStaged) orderAction() {}
func (cartStaged) orderAction() {}
func (productsReplaced) orderAction() {}
func (orderCleared) orderAction() {}

func empty(loading bool) State {
	return State{Products: []Line{}, Loading: loading}
}

func reduce(s State, a action) State {
	switch a := a.(type) {
	case loadStarted:
		s.Loading = true
		return s

	case orderLoaded:
		// An order staged while the load was running wins over the stored one.
		if s.staged() {
			s.Loading = false
			return s
		}
		next := a.order
		next.Products = slices.Clone(next.Products)
		if next.Products == nil {
			next.Products = []Line{}
		}
		next.Loading = false
		return next

	case singleStaged:
		return State{
			Products:  []Line{a.line},
			StoreID:   a.line.StoreID,
			StoreName: a.line.StoreName,
			OrderType: TypeSingle,
			Loading:   s.Loading,
		}

	case cartStaged:
		groups := groupByStore(linesFrom(a.items))
		next := State{Products: []Line{}, OrderType: TypeCart, Loading: s.Loading}
		for _, g := range groups {
			next.Products = append(next.Products, g...)
		}
		if len(groups) == 1 {
			next.StoreID = groups[0][0].StoreID
			next.StoreName = groups[0][0].StoreName
		}
		return next

	case productsReplaced:
		s.Products = slices.Clone(a.products)
		if s.Products == nil {
			s.Products = []Line{}
		}
		return s

	case orderCleared:
		return empty(s.Loading)

	default:
		panic(fmt.Sprintf("order: unhandled action %T", a))
	}
}

func linesFrom(items []cart.Item) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, Line{
			Product:   it.Product,
			Quantity:  it.Quantity,
			StoreID:   it.StoreID,
			StoreName: it.StoreName,
		})
	}
	return lines
}

// groupByStore buckets lines by store in first-seen store order. Each bucket keeps the
// relative order of its lines.
func groupByStore(lines []Line) [][]Line {
	var groups [][]Line
	index := make(map[string]int)
	for _, l := range lines {
		i, ok := index[l.StoreID]
		if !ok {
			i = len(groups)
			index[l.StoreID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], l)
	}
	return groups
}

// Partition splits a staged order into one checkout per store, in staging order.
func Partition(s State) []StoreCheckout {
	groups := groupByStore(s.Products)
	out := make([]StoreCheckout, 0, len(groups))
	for _, g := range groups {
		c := StoreCheckout{StoreID: g[0].StoreID, StoreName: g[0].StoreName, Products: g}
		for _, l := range g {
			unit, _ := cart.ParsePrice(l.Product.Price)
			c.ItemCount += l.Quantity
			c.Subtotal += unit * float64(l.Quantity)
		}
		out = append(out, c)
	}
	return out
}
