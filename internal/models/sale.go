package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale records a completed ticket purchase. Rows are immutable once
// created and are never deleted; the RESTRICT constraint keeps events
// with sale history from being removed.
type Sale struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    uint      `gorm:"not null;index" json:"event_id"`
	Event      Event     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Quantity   int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	TotalCents int64     `gorm:"not null" json:"total_cents"`
	Reference  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
}

func (sale *Sale) BeforeCreate(tx *gorm.DB) (err error) {
	if sale.Reference == uuid.Nil {
		sale.Reference = uuid.New()
	}
	return
}
