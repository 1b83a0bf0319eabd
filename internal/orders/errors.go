package orders

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmptyUpdate   = errors.New("no fields supplied")
)

// ProductNotFoundError reports which referenced products failed to resolve
// at validation time.
type ProductNotFoundError struct {
	Missing []string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", strings.Join(e.Missing, ", "))
}
