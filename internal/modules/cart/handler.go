package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the cart over HTTP.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}", h.updateQuantity)
		r.Delete("/items/{id}", h.removeItem)
		r.Get("/lookup", h.lookup)
	})
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName"`
}

// UpdateQuantityRequest sets an entry's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	State
	TotalPriceFormatted string `json:"totalPriceFormatted"`
}

type lookupResponse struct {
	ProductID string `json:"productId"`
	StoreID   string `json:"storeId"`
	InCart    bool   `json:"inCart"`
	Quantity  int    `json:"quantity"`
	ItemID    string `json:"itemId,omitempty"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respondCart(w, http.StatusOK, h.service.State())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	respondCart(w, http.StatusOK, h.service.ClearCart())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Product.ID == "" || req.StoreID == "" {
		http.Error(w, "product._id and storeId are required", http.StatusBadRequest)
		return
	}
	s := h.service.AddToCart(req.Product, req.Quantity, req.StoreID, req.StoreName)
	respondCart(w, http.StatusCreated, s)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	respondCart(w, http.StatusOK, h.service.UpdateQuantity(chi.URLParam(r, "id"), req.Quantity))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	respondCart(w, http.StatusOK, h.service.RemoveFromCart(chi.URLParam(r, "id")))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product_id")
	storeID := r.URL.Query().Get("store_id")
	if productID == "" || storeID == "" {
		http.Error(w, "product_id and store_id are required", http.StatusBadRequest)
		return
	}
	itemID, ok := h.service.GetCartItemID(productID, storeID)
	respond(w, http.StatusOK, lookupResponse{
		ProductID: productID,
		StoreID:   storeID,
		InCart:    ok,
		Quantity:  h.service.GetItemQuantityInCart(productID, storeID),
		ItemID:    itemID,
	})
}

func respondCart(w http.ResponseWriter, status int, s State) {
	respond(w, status, cartResponse{State: s, TotalPriceFormatted: FormatPrice(s.TotalPrice)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
