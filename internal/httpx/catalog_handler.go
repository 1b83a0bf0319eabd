package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/events"
	"github.com/ariefcatur/go-catalog-api/internal/redisx"
)

// CatalogRepo is the slice of the relational catalog the handler needs; the
// tests swap in a stub.
type CatalogRepo interface {
	SearchProducts(ctx context.Context, name, about string, maxPrice decimal.Decimal) ([]catalog.Product, error)
	GetProductDetail(ctx context.Context, id string) (*catalog.ProductDetail, error)
	CreateProduct(ctx context.Context, name, about string, price decimal.Decimal) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) (*catalog.Product, error)
	GetUser(ctx context.Context, id string) (*catalog.User, error)
	CreateUser(ctx context.Context, name, email, password string) (*catalog.User, error)
	ReplaceUser(ctx context.Context, id, name, email, password string) (*catalog.User, error)
	PatchUser(ctx context.Context, id string, name, email, password *string) (*catalog.User, error)
	CreateReview(ctx context.Context, userID, productID string, score int, content string) (*catalog.Review, error)
}

type CatalogHandler struct {
	Repo    CatalogRepo
	Emitter *events.Emitter
	Redis   *redis.Client
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.searchProducts)
	r.Get("/product/{id}", h.getProduct)
	r.Post("/product", h.createProduct)
	r.Delete("/product", h.deleteProduct)

	r.Post("/user", h.createUser)
	r.Put("/user/{id}", h.replaceUser)
	r.Patch("/user/{id}", h.patchUser)

	r.Post("/review", h.createReview)
}

func (h *CatalogHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	maxPrice := decimal.Zero
	if s := r.URL.Query().Get("price"); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid price filter")
			return
		}
		maxPrice = d
	}
	ps, err := h.Repo.SearchProducts(ctx,
		r.URL.Query().Get("name"), r.URL.Query().Get("about"), maxPrice)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyProduct, id)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	d, err := h.Repo.GetProductDetail(ctx, id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if h.Redis != nil {
		if b, err := json.Marshal(d); err == nil {
			_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyProduct, id), b, redisx.TTLProductCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, d)
}

type createProductReq struct {
	Name  string          `json:"name"`
	About string          `json:"about"`
	Price decimal.Decimal `json:"price"`
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.About == "" || !req.Price.IsPositive() {
		writeErr(w, http.StatusBadRequest, "name, about and a positive price are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.CreateProduct(ctx, req.Name, req.About, req.Price)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.Emitter.Emit(events.EventProductCreated, p.ID, events.ProductPayload{Product: *p})
	writeJSON(w, http.StatusCreated, p)
}

// deleteProduct takes the id in the body, as the catalog surface always has.
func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeErr(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.DeleteProduct(ctx, req.ID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	h.invalidateProduct(ctx, p.ID)
	h.Emitter.Emit(events.EventProductDeleted, p.ID,
		events.ProductDeletedPayload{ProductID: p.ID, Prior: *p})
	writeJSON(w, http.StatusOK, p)
}

type userReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (u userReq) valid() bool {
	return u.Name != "" && strings.Contains(u.Email, "@") && len(u.Password) >= 8
}

func (h *CatalogHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeErr(w, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.CreateUser(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *CatalogHandler) replaceUser(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeErr(w, http.StatusBadRequest, "name, email and a password of at least 8 characters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.ReplaceUser(ctx, chi.URLParam(r, "id"), req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) patchUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Password *string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Password != nil && len(*req.Password) < 8 {
		writeErr(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.PatchUser(ctx, chi.URLParam(r, "id"), req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type createReviewReq struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Score     int    `json:"score"`
	Content   string `json:"content"`
}

func (h *CatalogHandler) createReview(w http.ResponseWriter, r *http.Request) {
	var req createReviewReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.ProductID == "" || req.Score < 1 || req.Score > 5 {
		writeErr(w, http.StatusBadRequest, "userId, productId and a score between 1 and 5 are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.GetUser(ctx, req.UserID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if u == nil {
		writeErr(w, http.StatusNotFound, "user not found")
		return
	}
	if _, err := h.Repo.GetProductDetail(ctx, req.ProductID); err != nil {
		writeDomainErr(w, err)
		return
	}

	rv, err := h.Repo.CreateReview(ctx, req.UserID, req.ProductID, req.Score, req.Content)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	// the cached detail embeds reviews and the average score
	h.invalidateProduct(ctx, req.ProductID)
	writeJSON(w, http.StatusCreated, rv)
}

func (h *CatalogHandler) invalidateProduct(ctx context.Context, id string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyProduct, id)).Err()
}
