package models

import "time"

type Table struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RestaurantID uint      `gorm:"not null;index;uniqueIndex:idx_restaurant_table_number" json:"restaurant_id"`
	TableNumber  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_restaurant_table_number" json:"table_number"`
	Capacity     int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
