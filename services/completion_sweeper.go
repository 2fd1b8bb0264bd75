package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/reservation-app/availability"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// CompletionSweeper marks confirmed reservations as completed once their
// occupancy window is over.
type CompletionSweeper struct {
	db     *gorm.DB
	window time.Duration
	events EventPublisher
	now    func() time.Time
}

func NewCompletionSweeper(db *gorm.DB, window time.Duration, events EventPublisher) *CompletionSweeper {
	if window <= 0 {
		window = availability.DefaultWindow
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &CompletionSweeper{db: db, window: window, events: events, now: time.Now}
}

// Sweep completes every finished confirmed reservation and returns how many
// were changed.
func (s *CompletionSweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	today := now.Format(utils.DateLayout)
	clock := availability.Clock(now.Hour()*60 + now.Minute())

	var candidates []models.Reservation
	if err := s.db.WithContext(ctx).
		Where("status = ? AND reservation_date <= ?", models.StatusConfirmed, today).
		Find(&candidates).Error; err != nil {
		return 0, fmt.Errorf("failed to load confirmed reservations: %w", err)
	}

	done := 0
	for _, r := range candidates {
		if r.Date == today {
			start, err := availability.ParseClock(r.Time)
			if err != nil || start.Add(s.window) > clock {
				continue
			}
		}

		changed := false
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&models.Reservation{}).
				Where("id = ? AND status = ?", r.ID, models.StatusConfirmed).
				Update("status", models.StatusCompleted)
			if res.Error != nil || res.RowsAffected == 0 {
				return res.Error
			}
			changed = true
			return appendHistory(tx, r.ID, models.StatusAction(models.StatusCompleted), nil, nil, "Automatically completed")
		})
		if err != nil {
			utils.ErrorLogger.WithField("reservation_id", r.ID).Errorf("Failed to complete reservation: %v", err)
			continue
		}
		if !changed {
			continue
		}
		done++
		r.Status = models.StatusCompleted
		s.events.Publish(EventReservationStatus, r)
	}

	if done > 0 {
		utils.InfoLogger.Infof("Completed %d finished reservations", done)
	}
	return done, nil
}
