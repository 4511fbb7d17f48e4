package ticketing

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/models"
)

// Ledger owns the authoritative remaining-ticket count per event. Debit
// is the sole legal write path for events.available; every other code
// path that needs to change capacity goes through Debit or Credit.
//
// Construct it over a transaction handle to make a debit part of a
// larger atomic unit, or over the root *gorm.DB for a standalone
// adjustment (a single UPDATE is already atomic on its own).
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Debit subtracts quantity from the event's available count. The check
// and the write are one conditional UPDATE, so two concurrent debits
// that would jointly overdraw can never both match the guard.
func (l *Ledger) Debit(ctx context.Context, eventID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	result := l.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND available >= ?", eventID, quantity).
		UpdateColumn("available", gorm.Expr("available - ?", quantity))
	if result.Error != nil {
		return errors.Wrap(result.Error, "debit inventory")
	}
	if result.RowsAffected == 0 {
		// The guard did not match: the event is either missing or short
		// on tickets. Re-read inside the same unit of work to tell the
		// two apart.
		var event models.Event
		err := l.db.WithContext(ctx).Select("available").First(&event, eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return errors.Wrap(err, "inspect inventory after failed debit")
		}
		return &InsufficientInventoryError{Available: event.Available}
	}
	return nil
}

// Credit adds quantity back to the event's available count. Used when an
// administrator grows an event's capacity; there is no upper bound.
func (l *Ledger) Credit(ctx context.Context, eventID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	result := l.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", eventID).
		UpdateColumn("available", gorm.Expr("available + ?", quantity))
	if result.Error != nil {
		return errors.Wrap(result.Error, "credit inventory")
	}
	if result.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
