package order

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/storefront-client/internal/modules/cart"
)

// CartSource supplies the live cart for staging a cart checkout.
type CartSource interface {
	State() cart.State
}

// Handler exposes the staged order over HTTP.
type Handler struct {
	service Service
	cart    CartSource
}

func NewHandler(service Service, carts CartSource) *Handler {
	return &Handler{service: service, cart: carts}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/order", func(r chi.Router) {
		r.Get("/", h.getOrder)               // GET    /api/v1/order
		r.Delete("/", h.clearOrder)          // DELETE /api/v1/order
		r.Post("/single", h.stageSingle)     // POST   /api/v1/order/single
		r.Post("/cart", h.stageCart)         // POST   /api/v1/order/cart
		r.Put("/products", h.updateProducts) // PUT    /api/v1/order/products
		r.Get("/checkout", h.checkout)       // GET    /api/v1/order/checkout
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.State())
}

func (h *Handler) clearOrder(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.service.ClearOrderData())
}

func (h *Handler) stageSingle(w http.ResponseWriter, r *http.Request) {
	var req SingleOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Product.ID == "" || req.StoreID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "product._id and storeId are required"})
		return
	}
	respond(w, http.StatusOK, h.service.SetSingleProductOrder(req.Product, req.StoreID, req.StoreName, req.Quantity))
}

func (h *Handler) stageCart(w http.ResponseWriter, r *http.Request) {
	var req CartOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	items := req.Items
	if len(items) == 0 && h.cart != nil {
		items = h.cart.State().Items
	}
	if len(items) == 0 {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": "cart is empty"})
		return
	}
	respond(w, http.StatusOK, h.service.SetCartOrder(items))
}

func (h *Handler) updateProducts(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, h.service.UpdateProducts(req.Products))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, Partition(h.service.State()))
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
