package marketplace

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler proxies catalog reads to the marketplace.
type Handler struct{ client *Client }

func NewHandler(client *Client) *Handler { return &Handler{client: client} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/stores", func(r chi.Router) {
		r.Get("/", h.listStores)                // GET /api/v1/stores
		r.Get("/{id}/products", h.listProducts) // GET /api/v1/stores/{id}/products
	})
	r.Get("/api/v1/username-check", h.checkUsername) // GET /api/v1/username-check?username=
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.client.FetchStores(r.Context())
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, stores)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.client.FetchProductsByStoreID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, products)
}

func (h *Handler) checkUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}
	available, err := h.client.CheckUsername(r.Context(), username)
	if err != nil {
		respond(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, map[string]any{"username": username, "available": available})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
