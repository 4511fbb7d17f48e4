package ticketing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bacoteatro/taquilla/internal/models"
)

// Database-backed tests run against the Postgres pointed at by
// TAQUILLA_TEST_DSN and are skipped when it is unset.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TAQUILLA_TEST_DSN")
	if dsn == "" {
		t.Skip("TAQUILLA_TEST_DSN not set, skipping database tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Event{}, &models.Sale{}))

	require.NoError(t, db.Exec("DELETE FROM sales").Error)
	require.NoError(t, db.Exec("DELETE FROM events").Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Name:     "Test User",
		Email:    email,
		Password: "irrelevant-hash",
		Role:     models.RoleCliente,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestEvent(t *testing.T, db *gorm.DB, available int, priceCents int64) *models.Event {
	t.Helper()
	event := models.Event{
		Name:       "Test Performance",
		Date:       "2025-06-01",
		Time:       "20:00",
		Venue:      "Test Venue",
		PriceCents: priceCents,
		Available:  available,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func eventAvailable(t *testing.T, db *gorm.DB, eventID uint) int {
	t.Helper()
	var event models.Event
	require.NoError(t, db.First(&event, eventID).Error)
	return event.Available
}

func TestDebitAndCredit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := createTestEvent(t, db, 10, 2500)
	ledger := NewLedger(db)

	require.NoError(t, ledger.Debit(ctx, event.ID, 3))
	require.Equal(t, 7, eventAvailable(t, db, event.ID))

	require.NoError(t, ledger.Credit(ctx, event.ID, 5))
	require.Equal(t, 12, eventAvailable(t, db, event.ID))
}

func TestDebitInsufficientLeavesStateUnchanged(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	event := createTestEvent(t, db, 4, 2500)
	ledger := NewLedger(db)

	err := ledger.Debit(ctx, event.ID, 5)
	require.ErrorIs(t, err, ErrInsufficientInventory)

	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, 4, insufficient.Available)
	require.Equal(t, 4, eventAvailable(t, db, event.ID))
}

func TestDebitUnknownEvent(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedger(db)

	require.ErrorIs(t, ledger.Debit(context.Background(), 999999, 1), ErrEventNotFound)
	require.ErrorIs(t, ledger.Credit(context.Background(), 999999, 1), ErrEventNotFound)
}

func TestPurchaseCommitsSaleAndDebit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "buyer@teatro.com")
	event := createTestEvent(t, db, 100, 1250)
	coordinator := NewCoordinator(db)

	sale, err := coordinator.Purchase(ctx, event.ID, user.ID, 3)
	require.NoError(t, err)
	require.NotZero(t, sale.ID)
	require.Equal(t, event.ID, sale.EventID)
	require.Equal(t, user.ID, sale.UserID)
	require.Equal(t, 3, sale.Quantity)
	require.Equal(t, int64(3750), sale.TotalCents)
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", sale.Reference.String())

	require.Equal(t, 97, eventAvailable(t, db, event.ID))

	var stored models.Sale
	require.NoError(t, db.First(&stored, sale.ID).Error)
	require.Equal(t, sale.TotalCents, stored.TotalCents)
}

func TestPurchaseUnknownEventLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "buyer@teatro.com")
	coordinator := NewCoordinator(db)

	sale, err := coordinator.Purchase(context.Background(), 999999, user.ID, 2)
	require.ErrorIs(t, err, ErrEventNotFound)
	require.Nil(t, sale)

	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestPurchaseInsufficientLeavesNoTrace(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "buyer@teatro.com")
	event := createTestEvent(t, db, 2, 2500)
	coordinator := NewCoordinator(db)

	sale, err := coordinator.Purchase(context.Background(), event.ID, user.ID, 3)
	require.ErrorIs(t, err, ErrInsufficientInventory)
	require.Nil(t, sale)

	require.Equal(t, 2, eventAvailable(t, db, event.ID))
	var count int64
	require.NoError(t, db.Model(&models.Sale{}).Count(&count).Error)
	require.Zero(t, count)
}

// Two simultaneous purchases of 6 against 10 available: exactly one may
// commit, the loser sees the shortage, and the count lands on 4.
func TestConcurrentPurchasesExactlyOneWins(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "buyer@teatro.com")
	event := createTestEvent(t, db, 10, 2500)
	coordinator := NewCoordinator(db)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = coordinator.Purchase(context.Background(), event.ID, user.ID, 6)
		}(i)
	}
	wg.Wait()

	var successes, shortages int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, ErrInsufficientInventory)
			shortages++
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, shortages)
	require.Equal(t, 4, eventAvailable(t, db, event.ID))
}

// A storm of single-ticket buyers against a small event: the committed
// sales and the final count must exactly account for the inventory.
func TestConcurrentPurchaseStormNeverOversells(t *testing.T) {
	db := setupTestDB(t)
	event := createTestEvent(t, db, 5, 2000)
	coordinator := NewCoordinator(db)

	const buyerCount = 20
	buyers := make([]*models.User, buyerCount)
	for i := range buyers {
		buyers[i] = createTestUser(t, db, fmt.Sprintf("buyer%d@teatro.com", i))
	}

	var wg sync.WaitGroup
	results := make([]error, buyerCount)
	for i := 0; i < buyerCount; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = coordinator.Purchase(context.Background(), event.ID, buyers[slot].ID, 1)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientInventory)
	}
	require.Equal(t, 5, successes)
	require.Equal(t, 0, eventAvailable(t, db, event.ID))

	totals, err := NewSaleReader(db).Totals(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), totals.TicketsSold)
	require.Equal(t, int64(5*2000), totals.RevenueCents)
}

func TestGetSaleOwnershipAndIdempotentReads(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	buyer := createTestUser(t, db, "buyer@teatro.com")
	other := createTestUser(t, db, "other@teatro.com")
	event := createTestEvent(t, db, 10, 2500)
	coordinator := NewCoordinator(db)
	reader := NewSaleReader(db)

	sale, err := coordinator.Purchase(ctx, event.ID, buyer.ID, 2)
	require.NoError(t, err)

	first, err := reader.GetSale(ctx, sale.ID, buyer.ID, false)
	require.NoError(t, err)

	// An unrelated purchase in between must not disturb the read.
	_, err = coordinator.Purchase(ctx, event.ID, other.ID, 1)
	require.NoError(t, err)

	second, err := reader.GetSale(ctx, sale.ID, buyer.ID, false)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = reader.GetSale(ctx, sale.ID, other.ID, false)
	require.ErrorIs(t, err, ErrNotSaleOwner)

	elevated, err := reader.GetSale(ctx, sale.ID, other.ID, true)
	require.NoError(t, err)
	require.Equal(t, first, elevated)

	_, err = reader.GetSale(ctx, 999999, buyer.ID, false)
	require.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSaleListings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	buyer := createTestUser(t, db, "buyer@teatro.com")
	other := createTestUser(t, db, "other@teatro.com")
	event := createTestEvent(t, db, 10, 2500)
	coordinator := NewCoordinator(db)
	reader := NewSaleReader(db)

	_, err := coordinator.Purchase(ctx, event.ID, buyer.ID, 2)
	require.NoError(t, err)
	_, err = coordinator.Purchase(ctx, event.ID, other.ID, 1)
	require.NoError(t, err)

	mine, err := reader.ListSalesForUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Test Performance", mine[0].EventName)
	require.Equal(t, "buyer@teatro.com", mine[0].BuyerEmail)
	require.Equal(t, int64(5000), mine[0].TotalCents)

	byEmail, err := reader.ListSalesForEmail(ctx, "other@teatro.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	require.Equal(t, other.ID, byEmail[0].UserID)

	all, err := reader.ListAllSales(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

// The RESTRICT constraint keeps sale history intact: deleting an event
// that has sales must fail at the database.
func TestEventWithSalesCannotBeDeleted(t *testing.T) {
	db := setupTestDB(t)
	buyer := createTestUser(t, db, "buyer@teatro.com")
	event := createTestEvent(t, db, 10, 2500)
	coordinator := NewCoordinator(db)

	_, err := coordinator.Purchase(context.Background(), event.ID, buyer.ID, 1)
	require.NoError(t, err)

	reader := NewSaleReader(db)
	require.ErrorIs(t, reader.EnsureEventDeletable(context.Background(), event.ID), ErrEventHasSales)

	require.Error(t, db.Delete(&models.Event{}, event.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", event.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
