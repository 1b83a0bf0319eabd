package redisx

import "time"

const (
	// Cached order read model: order:{order_id} -> full order JSON.
	// Invalidated on every write to the order.
	KeyOrder = "order:%s"

	// Cached product read model (with reviews): product:%s
	KeyProduct = "product:%s"
)

var (
	TTLOrderCache   = 5 * time.Minute
	TTLProductCache = 1 * time.Minute
)
