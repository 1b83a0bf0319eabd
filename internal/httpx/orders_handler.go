package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ariefcatur/go-catalog-api/internal/orders"
	"github.com/ariefcatur/go-catalog-api/internal/redisx"
)

// OrderService is what the handler needs from the aggregate manager; the
// tests swap in an in-memory implementation.
type OrderService interface {
	Create(ctx context.Context, in orders.CreateInput) (*orders.Order, error)
	Replace(ctx context.Context, id string, in orders.CreateInput) (*orders.Order, error)
	Patch(ctx context.Context, id string, in orders.PatchInput) (*orders.Order, error)
	Delete(ctx context.Context, id string) (*orders.Order, error)
	Get(ctx context.Context, id string) (*orders.OrderDetail, error)
	List(ctx context.Context) ([]orders.OrderDetail, error)
}

type OrdersHandler struct {
	Service OrderService
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/order", h.create)
	r.Get("/order/{id}", h.get)
	r.Put("/order/{id}", h.replace)
	r.Patch("/order/{id}", h.patch)
	r.Delete("/order/{id}", h.delete)
	r.Get("/orders", h.list)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.UserID == "" || in.ProductIDs == nil {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) replace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.UserID == "" || in.ProductIDs == nil {
		writeErr(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Replace(ctx, id, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in orders.PatchInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Patch(ctx, id, in)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	prior, err := h.Service.Delete(ctx, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusOK, prior)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrder, id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	d, err := h.Service.Get(ctx, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(d); err == nil {
			_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrder, id), b, redisx.TTLOrderCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ds, err := h.Service.List(ctx)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (h *OrdersHandler) invalidate(ctx context.Context, id string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Err()
}
