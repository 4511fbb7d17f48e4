package ticketing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/internal/models"
)

// SaleRecord is a sale joined with the event and buyer it references,
// the shape every sale listing and report is built from.
type SaleRecord struct {
	ID         uint      `json:"id"`
	EventID    uint      `json:"event_id"`
	UserID     uint      `json:"user_id"`
	Quantity   int       `json:"quantity"`
	TotalCents int64     `json:"total_cents"`
	Reference  uuid.UUID `json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
	EventName  string    `json:"event_name"`
	EventDate  string    `json:"event_date"`
	EventTime  string    `json:"event_time"`
	Venue      string    `json:"venue"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
}

// SalesTotals aggregates revenue and tickets sold across all sales.
type SalesTotals struct {
	RevenueCents int64 `json:"revenue_cents"`
	TicketsSold  int64 `json:"tickets_sold"`
}

// SaleReader is the read side of the sale engine: lookups and
// aggregations with no concurrency concerns.
type SaleReader struct {
	db *gorm.DB
}

func NewSaleReader(db *gorm.DB) *SaleReader {
	return &SaleReader{db: db}
}

// saleRows is the single deserialization path for SaleRecord; every
// listing query layers its own WHERE on top of it.
func (r *SaleReader) saleRows(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table("sales").
		Select(`sales.id, sales.event_id, sales.user_id, sales.quantity, sales.total_cents,
			sales.reference, sales.created_at,
			events.name AS event_name, events."date" AS event_date, events."time" AS event_time,
			events.venue AS venue,
			users.name AS buyer_name, users.email AS buyer_email`).
		Joins("JOIN events ON events.id = sales.event_id").
		Joins("JOIN users ON users.id = sales.user_id").
		Order("sales.created_at DESC")
}

// GetSale fetches one sale. When elevated is false the caller must be
// the buyer, otherwise ErrNotSaleOwner.
func (r *SaleReader) GetSale(ctx context.Context, saleID, callerID uint, elevated bool) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).First(&sale, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load sale")
	}
	if !elevated && sale.UserID != callerID {
		return nil, ErrNotSaleOwner
	}
	return &sale, nil
}

func (r *SaleReader) ListSalesForUser(ctx context.Context, userID uint) ([]SaleRecord, error) {
	var records []SaleRecord
	err := r.saleRows(ctx).Where("sales.user_id = ?", userID).Scan(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "list sales for user")
	}
	return records, nil
}

func (r *SaleReader) ListSalesForEmail(ctx context.Context, email string) ([]SaleRecord, error) {
	var records []SaleRecord
	err := r.saleRows(ctx).Where("users.email = ?", email).Scan(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "list sales for email")
	}
	return records, nil
}

func (r *SaleReader) ListAllSales(ctx context.Context) ([]SaleRecord, error) {
	var records []SaleRecord
	err := r.saleRows(ctx).Scan(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "list all sales")
	}
	return records, nil
}

func (r *SaleReader) RecentSales(ctx context.Context, limit int) ([]SaleRecord, error) {
	var records []SaleRecord
	err := r.saleRows(ctx).Limit(limit).Scan(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "list recent sales")
	}
	return records, nil
}

func (r *SaleReader) Totals(ctx context.Context) (*SalesTotals, error) {
	var totals SalesTotals
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Select("COALESCE(SUM(total_cents), 0) AS revenue_cents, COALESCE(SUM(quantity), 0) AS tickets_sold").
		Scan(&totals).Error
	if err != nil {
		return nil, errors.Wrap(err, "aggregate sales totals")
	}
	return &totals, nil
}

// SaleCountForEvent backs the delete guard: events with sale history may
// not be removed.
func (r *SaleReader) SaleCountForEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Sale{}).
		Where("event_id = ?", eventID).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count sales for event")
	}
	return count, nil
}

// EnsureEventDeletable rejects deletion of events with sale history,
// keeping every sold ticket accounted for.
func (r *SaleReader) EnsureEventDeletable(ctx context.Context, eventID uint) error {
	count, err := r.SaleCountForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEventHasSales
	}
	return nil
}

func (r *SaleReader) UsersByRole(ctx context.Context) (map[models.Role]int64, error) {
	var rows []struct {
		Role  models.Role
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role, COUNT(*) AS count").Group("role").Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "count users by role")
	}
	counts := make(map[models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

// EventAvailability counts events that still have tickets against those
// that are sold out.
func (r *SaleReader) EventAvailability(ctx context.Context) (active, soldOut int64, err error) {
	if err = r.db.WithContext(ctx).Model(&models.Event{}).
		Where("available > 0").Count(&active).Error; err != nil {
		return 0, 0, errors.Wrap(err, "count active events")
	}
	if err = r.db.WithContext(ctx).Model(&models.Event{}).
		Where("available = 0").Count(&soldOut).Error; err != nil {
		return 0, 0, errors.Wrap(err, "count sold out events")
	}
	return active, soldOut, nil
}
