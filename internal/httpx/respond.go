package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
	"github.com/ariefcatur/go-catalog-api/internal/orders"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainErr maps the error taxonomy to HTTP statuses: referential and
// not-found failures are the client's 404, empty updates their 400, anything
// else is a store fault.
func writeDomainErr(w http.ResponseWriter, err error) {
	var pnf *orders.ProductNotFoundError
	switch {
	case errors.As(err, &pnf):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "product not found",
			"missing": pnf.Missing,
		})
	case errors.Is(err, orders.ErrUserNotFound), errors.Is(err, catalog.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, "user not found")
	case errors.Is(err, orders.ErrOrderNotFound):
		writeErr(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		writeErr(w, http.StatusNotFound, "product not found")
	case errors.Is(err, orders.ErrEmptyUpdate), errors.Is(err, catalog.ErrEmptyUpdate):
		writeErr(w, http.StatusBadRequest, "no fields to update")
	default:
		log.Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}
