package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-catalog-api/internal/catalog"
)

// Order is the aggregate owned by this package. Total is derived from the
// referenced product prices and is never accepted from a client.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	ProductIDs []string        `json:"productIds"`
	Total      decimal.Decimal `json:"total"`
	Payment    bool            `json:"payment"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// OrderDetail is the read model: the order joined with its user and the
// resolved products for display. Nothing is validated on this path.
type OrderDetail struct {
	Order
	User     *catalog.User     `json:"user,omitempty"`
	Products []catalog.Product `json:"products"`
}

type CreateInput struct {
	UserID     string   `json:"userId"`
	ProductIDs []string `json:"productIds"`
	Payment    bool     `json:"payment"`
}

// PatchInput carries the sparse PATCH body. Nil means the field was not
// supplied; an empty ProductIDs slice is a supplied, deliberate clear.
type PatchInput struct {
	UserID     *string  `json:"userId"`
	ProductIDs []string `json:"productIds"`
	Payment    *bool    `json:"payment"`
}

func (p PatchInput) Empty() bool {
	return p.UserID == nil && p.ProductIDs == nil && p.Payment == nil
}
