package ticketing

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Invalid quantities must be rejected before any store access; a nil db
// would panic if the coordinator or ledger touched it.
func TestPurchaseRejectsInvalidQuantity(t *testing.T) {
	coordinator := NewCoordinator(nil)

	for _, quantity := range []int{0, -1, -100} {
		sale, err := coordinator.Purchase(context.Background(), 1, 1, quantity)
		require.ErrorIs(t, err, ErrInvalidQuantity)
		require.Nil(t, sale)
	}
}

func TestLedgerRejectsInvalidQuantity(t *testing.T) {
	ledger := NewLedger(nil)

	require.ErrorIs(t, ledger.Debit(context.Background(), 1, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Debit(context.Background(), 1, -5), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Credit(context.Background(), 1, 0), ErrInvalidQuantity)
	require.ErrorIs(t, ledger.Credit(context.Background(), 1, -5), ErrInvalidQuantity)
}

func TestTotalIsExact(t *testing.T) {
	tests := []struct {
		quantity   int
		priceCents int64
		want       int64
	}{
		{3, 1250, 3750},
		{1, 0, 0},
		{7, 333, 2331},
		{100, 2999, 299900},
		{1000000, 1250, 1250000000},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Total(tt.quantity, tt.priceCents))
	}
}

func TestInsufficientInventoryError(t *testing.T) {
	err := error(&InsufficientInventoryError{Available: 4})

	require.ErrorIs(t, err, ErrInsufficientInventory)
	require.EqualError(t, err, "only 4 tickets available")

	var insufficient *InsufficientInventoryError
	require.True(t, errors.As(err, &insufficient))
	require.Equal(t, 4, insufficient.Available)

	wrapped := errors.Wrap(err, "purchase failed")
	require.ErrorIs(t, wrapped, ErrInsufficientInventory)
	require.True(t, errors.As(wrapped, &insufficient))
}
