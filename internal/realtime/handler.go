package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler is the document-catalog surface: product/category CRUD with a push
// message to every connected client after each successful mutation.
type Handler struct {
	Store *Store
	Hub   *Hub
}

func (h *Handler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/products", h.createProduct)
	r.Put("/products/{id}", h.replaceProduct)
	r.Patch("/products/{id}", h.patchProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/categories", h.listCategories)
	r.Post("/categories", h.createCategory)

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(h.Hub, w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func objectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

type productReq struct {
	Name        string   `json:"name"`
	About       string   `json:"about"`
	Price       float64  `json:"price"`
	CategoryIDs []string `json:"categoryIds"`
}

func (p productReq) valid() bool {
	return p.Name != "" && p.About != "" && p.Price > 0
}

func (p productReq) categoryObjectIDs() ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(p.CategoryIDs))
	for _, s := range p.CategoryIDs {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Store.ListProducts(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeErr(w, http.StatusBadRequest, "name, about, a positive price and categoryIds are required")
		return
	}
	catIDs, err := req.categoryObjectIDs()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid category id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := Product{Name: req.Name, About: req.About, Price: req.Price, CategoryIDs: catIDs}
	if err := h.Store.CreateProduct(ctx, &p); err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, p)

	// push the joined document so subscribers see category names
	if full, err := h.Store.GetProduct(ctx, p.ID); err == nil {
		h.Hub.Broadcast("product:created", full)
	}
}

func (h *Handler) replaceProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(w, r)
	if !ok {
		return
	}
	var req productReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeErr(w, http.StatusBadRequest, "name, about, a positive price and categoryIds are required")
		return
	}
	catIDs, err := req.categoryObjectIDs()
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid category id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p := Product{ID: id, Name: req.Name, About: req.About, Price: req.Price, CategoryIDs: catIDs}
	if err := h.Store.ReplaceProduct(ctx, &p); err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)

	if full, err := h.Store.GetProduct(ctx, id); err == nil {
		h.Hub.Broadcast("product:updated", full)
	}
}

func (h *Handler) patchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        *string  `json:"name"`
		About       *string  `json:"about"`
		Price       *float64 `json:"price"`
		CategoryIDs []string `json:"categoryIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	updates := bson.M{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.About != nil {
		updates["about"] = *req.About
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.CategoryIDs != nil {
		catIDs := make([]primitive.ObjectID, 0, len(req.CategoryIDs))
		for _, s := range req.CategoryIDs {
			cid, err := primitive.ObjectIDFromHex(s)
			if err != nil {
				writeErr(w, http.StatusBadRequest, "invalid category id")
				return
			}
			catIDs = append(catIDs, cid)
		}
		updates["categoryIds"] = catIDs
	}
	if len(updates) == 0 {
		writeErr(w, http.StatusBadRequest, "no valid fields to update")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.PatchProduct(ctx, id, updates); err != nil {
		h.storeErr(w, err)
		return
	}
	full, err := h.Store.GetProduct(ctx, id)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, full)
	h.Hub.Broadcast("product:updated", full)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := objectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	prior, err := h.Store.DeleteProduct(ctx, id)
	if err != nil {
		h.storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prior)
	h.Hub.Broadcast("product:deleted", map[string]any{"_id": id.Hex(), "product": prior})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cs, err := h.Store.ListCategories(ctx)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c := Category{Name: req.Name}
	if err := h.Store.CreateCategory(ctx, &c); err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, c)
	h.Hub.Broadcast("category:created", c)
}

func (h *Handler) storeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	writeErr(w, http.StatusInternalServerError, "internal error")
}
