package cart

import (
	"encoding/json"
	"time"
)

// Price is a product price as the catalog delivers it: either a plain number or a display
// string such as "Rs.100/=". It is kept verbatim and only parsed when totals are derived.
type Price string

func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

// Product is the catalog record a cart entry refers to.
type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Price       Price  `json:"price"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Item is one cart entry. ID is an opaque handle; entries are de-duplicated on
// (Product.ID, StoreID), never on ID.
type Item struct {
	ID        string    `json:"id"`
	Product   Product   `json:"product"`
	Quantity  int       `json:"quantity"`
	StoreID   string    `json:"storeId"`
	StoreName string    `json:"storeName"`
	AddedAt   time.Time `json:"addedAt"`
}

// State is the cart as observed by consumers. TotalItems and TotalPrice are derived from
// Items on every transition.
type State struct {
	Items      []Item  `json:"items"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
	Loading    bool    `json:"loading"`
}

func (s State) find(productID, storeID string) (Item, bool) {
	if i := indexOf(s.Items, productID, storeID); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

func indexOf(items []Item, productID, storeID string) int {
	for i, it := range items {
		if it.Product.ID == productID && it.StoreID == storeID {
			return i
		}
	}
	return -1
}
