package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string  `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Location    string  `gorm:"type:varchar(100)" json:"location"`
	Cuisine     string  `gorm:"type:varchar(50)" json:"cuisine"`
	Rating      float64 `gorm:"type:decimal(2,1);not null;default:0" json:"rating"`
	Description string  `gorm:"type:text" json:"description"`
	// OpeningTime and ClosingTime are HH:MM. Nil means open all day.
	OpeningTime *string `gorm:"type:varchar(5)" json:"opening_time"`
	ClosingTime *string `gorm:"type:varchar(5)" json:"closing_time"`
	// BookingVersion is bumped by every booking write and serialises them
	// per restaurant.
	BookingVersion int64     `gorm:"not null;default:0" json:"-"`
	Tables         []Table   `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"tables,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

// MakeSlug is the URL slug of a restaurant: its name plus its id, which
// keeps slugs unique when names repeat.
func MakeSlug(name string, id uint) string {
	return fmt.Sprintf("%s-%d", slug.Make(name), id)
}

// BeforeCreate fills a unique placeholder until the id is known.
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.Slug == "" {
		r.Slug = uuid.NewString()
	}
	return nil
}

func (r *Restaurant) AfterCreate(tx *gorm.DB) error {
	r.Slug = MakeSlug(r.Name, r.ID)
	return tx.Model(r).UpdateColumn("slug", r.Slug).Error
}

func (r *Restaurant) BeforeUpdate(tx *gorm.DB) error {
	if r.ID != 0 && r.Name != "" {
		r.Slug = MakeSlug(r.Name, r.ID)
	}
	return nil
}
