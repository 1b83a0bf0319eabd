package rpcx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

// ProductCreator is the slice of the catalog repo the procedures need.
type ProductCreator interface {
	CreateProduct(ctx context.Context, name, about string, price decimal.Decimal) (*catalog.Product, error)
}

// Handler exposes the catalog as named procedures on a single endpoint:
// POST /rpc {"method": "...", "params": {...}}. Errors come back as faults
// rather than resource-style status codes.
type Handler struct {
	Repo ProductCreator
}

type request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type fault struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/rpc", h.dispatch)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFault(w, http.StatusBadRequest, "Sender.BadRequest", "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	switch req.Method {
	case "CreateProduct":
		h.createProduct(ctx, w, req.Params)
	default:
		writeFault(w, http.StatusBadRequest, "Sender.UnknownMethod", "unknown method: "+req.Method)
	}
}

type createProductParams struct {
	Name  string          `json:"name"`
	About string          `json:"about"`
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) createProduct(ctx context.Context, w http.ResponseWriter, params json.RawMessage) {
	var p createProductParams
	if err := json.Unmarshal(params, &p); err != nil {
		writeFault(w, http.StatusBadRequest, "Sender.BadArguments", "invalid params")
		return
	}
	if p.Name == "" || p.About == "" || !p.Price.IsPositive() {
		writeFault(w, http.StatusBadRequest, "Sender.BadArguments", "name, about and a positive price are required")
		return
	}
	created, err := h.Repo.CreateProduct(ctx, p.Name, p.About, p.Price)
	if err != nil {
		writeFault(w, http.StatusInternalServerError, "Receiver.Store", "store failure")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": created})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFault(w http.ResponseWriter, code int, faultCode, reason string) {
	writeJSON(w, code, map[string]any{"fault": fault{Code: faultCode, Reason: reason}})
}
