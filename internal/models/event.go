package models

import (
	"time"
)

// Event is a scheduled performance with a fixed price and a remaining
// ticket count. Available is only ever written through the inventory
// ledger; the check constraint is the database-level backstop for the
// same invariant.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Date        string    `gorm:"not null" json:"date"`
	Time        string    `gorm:"not null" json:"time"`
	Venue       string    `gorm:"not null" json:"venue"`
	PriceCents  int64     `gorm:"not null;check:price_cents >= 0" json:"price_cents"`
	Available   int       `gorm:"not null;check:available >= 0" json:"available"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
