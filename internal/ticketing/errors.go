package ticketing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Discriminated failure modes of the sale engine. Handlers branch on
// these with errors.Is; anything else coming out of this package is a
// storage failure and safe to retry after a full rollback.
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrSaleNotFound          = errors.New("sale not found")
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
	ErrInsufficientInventory = errors.New("not enough tickets available")
	ErrNotSaleOwner          = errors.New("sale belongs to another user")
	ErrEventHasSales         = errors.New("event has recorded sales")
)

// InsufficientInventoryError carries the remaining count observed inside
// the failed transaction so callers can say "only N tickets remain".
type InsufficientInventoryError struct {
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("only %d tickets available", e.Available)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}
