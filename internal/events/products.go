package events

import "github.com/ariefcatur/go-catalog-api/internal/catalog"

type ProductPayload struct {
	Product catalog.Product `json:"product"`
}

type ProductDeletedPayload struct {
	ProductID string          `json:"product_id"`
	Prior     catalog.Product `json:"prior"`
}
