package orders

import "github.com/shopspring/decimal"

// ComputeTotal returns round(sum(prices) * (1 + taxRate), 2). Pure; an empty
// price list yields zero.
func ComputeTotal(prices []decimal.Decimal, taxRate decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range prices {
		sum = sum.Add(p)
	}
	return sum.Mul(decimal.NewFromInt(1).Add(taxRate)).Round(2)
}
