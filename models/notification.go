package models

import (
	"time"
)

// Notification tells a customer something happened to one of their
// reservations.
type Notification struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CustomerID    uint       `gorm:"not null;index" json:"customer_id"`
	Customer      *Customer  `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReservationID *uint      `gorm:"index" json:"reservation_id,omitempty"`
	Title         string     `gorm:"type:varchar(100)" json:"title"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
}
