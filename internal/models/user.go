package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Phone     string    `json:"phone"`
	Role      Role      `gorm:"type:varchar(16);not null;default:'cliente'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
