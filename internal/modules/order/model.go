package order

import "github.com/georgemunganga/storefront-client/internal/modules/cart"

// Type says how the staged order was assembled.
type Type string

const (
	TypeNone   Type = ""
	TypeSingle Type = "single"
	TypeCart   Type = "cart"
)

// Line is one staged product.
type Line struct {
	Product   cart.Product `json:"product"`
	Quantity  int          `json:"quantity"`
	StoreID   string       `json:"storeId"`
	StoreName string       `json:"storeName"`
}

// State is the staged order. StoreID and StoreName are set only when every line comes
// from the same store.
type State struct {
	Products  []Line `json:"products"`
	StoreID   string `json:"storeId,omitempty"`
	StoreName string `json:"storeName,omitempty"`
	OrderType Type   `json:"orderType,omitempty"`
	Loading   bool   `json:"loading"`
}

func (s State) staged() bool {
	return len(s.Products) > 0 || s.OrderType != TypeNone
}

// record is the persisted shape under the order key. Absent store and type are null.
type record struct {
	Products  []Line  `json:"products"`
	StoreID   *string `json:"storeId"`
	StoreName *string `json:"storeName"`
	OrderType *Type   `json:"orderType"`
}

func toRecord(s State) record {
	r := record{Products: s.Products}
	if s.StoreID != "" {
		r.StoreID, r.StoreName = &s.StoreID, &s.StoreName
	}
	if s.OrderType != TypeNone {
		r.OrderType = &s.OrderType
	}
	return r
}

func (r record) state() State {
	s := State{Products: r.Products}
	if r.StoreID != nil {
		s.StoreID = *r.StoreID
	}
	if r.StoreName != nil {
		s.StoreName = *r.StoreName
	}
	if r.OrderType != nil {
		s.OrderType = *r.OrderType
	}
	if s.Products == nil {
		s.Products = []Line{}
	}
	return s
}

// StoreCheckout is the slice of a staged order paid to one store.
type StoreCheckout struct {
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName"`
	Products  []Line  `json:"products"`
	ItemCount int     `json:"itemCount"`
	Subtotal  float64 `json:"subtotal"`
}

// SingleOrderRequest stages one product for immediate checkout.
type SingleOrderRequest struct {
	Product   cart.Product `json:"product"`
	Quantity  int          `json:"quantity"`
	StoreID   string       `json:"storeId"`
	StoreName string       `json:"storeName"`
}

// CartOrderRequest stages cart entries. An empty Items list means the live cart.
type CartOrderRequest struct {
	Items []cart.Item `json:"items"`
}

// UpdateProductsRequest replaces the staged lines.
type UpdateProductsRequest struct {
	Products []Line `json:"products"`
}
