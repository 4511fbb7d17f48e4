package ticketing

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/models"
)

// Coordinator turns a purchase intent into a durable sale. The debit and
// the sale insert run in one database transaction: either both commit or
// neither does, so the ledger is never debited without a matching sale
// and no sale ever exists without its debit.
type Coordinator struct {
	db *gorm.DB
}

func NewCoordinator(db *gorm.DB) *Coordinator {
	return &Coordinator{db: db}
}

// Purchase debits the event's inventory and records the sale. Quantity
// is validated before the store is touched. On failure it returns one of
// the package sentinels unchanged; on a storage failure everything rolls
// back and the caller may retry the identical request.
func (c *Coordinator) Purchase(ctx context.Context, eventID, userID uint, quantity int) (*models.Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var sale models.Sale
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := NewLedger(tx)
		if err := ledger.Debit(ctx, eventID, quantity); err != nil {
			return err
		}

		// The debit holds the row lock for the rest of the transaction,
		// so a concurrent price edit cannot slip between the debit and
		// this read.
		var event models.Event
		if err := tx.Select("price_cents").First(&event, eventID).Error; err != nil {
			return errors.Wrap(err, "load event price")
		}

		sale = models.Sale{
			EventID:    eventID,
			UserID:     userID,
			Quantity:   quantity,
			TotalCents: Total(quantity, event.PriceCents),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return errors.Wrap(err, "insert sale")
		}
		return nil
	})
	if err != nil {
		log.Warn().
			Err(err).
			Uint("event_id", eventID).
			Uint("user_id", userID).
			Int("quantity", quantity).
			Msg("Purchase aborted")
		return nil, err
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Uint("event_id", eventID).
		Uint("user_id", userID).
		Int("quantity", quantity).
		Int64("total_cents", sale.TotalCents).
		Msg("Sale committed")
	return &sale, nil
}

// Total computes the sale total in cents. Integer arithmetic only, so
// repeated purchases never accumulate rounding drift.
func Total(quantity int, priceCents int64) int64 {
	return int64(quantity) * priceCents
}
