package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	// bcrypt hash, never serialized
	PasswordHash string `json:"-"`
}

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	About string          `json:"about"`
	Price decimal.Decimal `json:"price"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Score     int       `json:"score"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      *User     `json:"user,omitempty"`
}

// ProductDetail is the single-product read model: the product plus its
// reviews and the score average computed at read time.
type ProductDetail struct {
	Product
	ReviewIDs    []string        `json:"reviewIds"`
	AverageScore decimal.Decimal `json:"averageScore"`
	Reviews      []Review        `json:"reviews"`
}

// AverageScore is the review aggregation helper: mean score rounded to two
// places, zero for an empty slice.
func AverageScore(reviews []Review) decimal.Decimal {
	if len(reviews) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Score
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(2)
}
