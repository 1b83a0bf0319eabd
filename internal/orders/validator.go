package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

// CatalogStore is the read-only slice of the catalog the order engine needs:
// resolve a user, resolve a batch of products. Absence is signaled by a nil
// user / omission from the map, not by an error.
type CatalogStore interface {
	GetUser(ctx context.Context, id string) (*catalog.User, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]catalog.Product, error)
}

// Validator checks referential integrity of a proposed order before any
// write happens. The check is not atomic with the later commit: a product
// deleted between validation and write slips through, matching the
// last-write-wins model of the store.
type Validator struct {
	Store CatalogStore
}

// Validate resolves the user and every referenced product, returning prices
// aligned with productIDs (duplicates repeated) so pricing sees one price per
// referenced line.
func (v *Validator) Validate(ctx context.Context, userID string, productIDs []string) ([]decimal.Decimal, error) {
	if err := v.ValidateUser(ctx, userID); err != nil {
		return nil, err
	}
	return v.ValidateProducts(ctx, productIDs)
}

func (v *Validator) ValidateUser(ctx context.Context, userID string) error {
	u, err := v.Store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	return nil
}

func (v *Validator) ValidateProducts(ctx context.Context, productIDs []string) ([]decimal.Decimal, error) {
	distinct := dedup(productIDs)
	found, err := v.Store.GetProductsByIDs(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	if len(found) != len(distinct) {
		missing := make([]string, 0, len(distinct)-len(found))
		for _, id := range distinct {
			if _, ok := found[id]; !ok {
				missing = append(missing, id)
			}
		}
		return nil, &ProductNotFoundError{Missing: missing}
	}
	prices := make([]decimal.Decimal, 0, len(productIDs))
	for _, id := range productIDs {
		prices = append(prices, found[id].Price)
	}
	return prices, nil
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
