package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/reservation-app/availability"
	"github.com/yeremiapane/reservation-app/models"
	"gorm.io/gorm"
)

// Store reads tables and bookings for the resolver through whatever
// handle it wraps, usually an open transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Tables(ctx context.Context, restaurantID uint) ([]availability.Table, error) {
	var rows []models.Table
	if err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("capacity ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]availability.Table, len(rows))
	for i, t := range rows {
		out[i] = toTable(t)
	}
	return out, nil
}

func (s *Store) Table(ctx context.Context, tableID uint) (availability.Table, bool, error) {
	var t models.Table
	err := s.db.WithContext(ctx).First(&t, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return availability.Table{}, false, nil
	}
	if err != nil {
		return availability.Table{}, false, err
	}
	return toTable(t), true, nil
}

func (s *Store) Bookings(ctx context.Context, restaurantID uint, date string) ([]availability.Booking, error) {
	var rows []models.Reservation
	if err := s.db.WithContext(ctx).
		Select("id", "table_id", "reservation_time", "status").
		Where("restaurant_id = ? AND reservation_date = ? AND table_id IS NOT NULL", restaurantID, date).
		Where("status IN ?", []string{models.StatusPending, models.StatusConfirmed}).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]availability.Booking, 0, len(rows))
	for _, r := range rows {
		start, err := availability.ParseClock(r.Time)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", r.ID, err)
		}
		out = append(out, availability.Booking{
			ID:      r.ID,
			TableID: *r.TableID,
			Start:   start,
			Status:  r.Status,
		})
	}
	return out, nil
}

func toTable(t models.Table) availability.Table {
	return availability.Table{ID: t.ID, RestaurantID: t.RestaurantID, Capacity: t.Capacity}
}
