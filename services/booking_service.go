package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/reservation-app/availability"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// Events pushed to live subscribers.
const (
	EventReservationCreated   = "reservation_created"
	EventReservationModified  = "reservation_modified"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationStatus    = "reservation_status"
)

// EventPublisher fans reservation changes out to connected clients.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

type BookingOptions struct {
	// Window is how long a booking holds its table.
	Window time.Duration
	// StrictTransitions makes admins follow the status lifecycle.
	StrictTransitions bool
	Events            EventPublisher
	Now               func() time.Time
}

// BookingService owns every write to reservations. Writes that depend on
// table availability run in one transaction with the resolver's read.
type BookingService struct {
	db       *gorm.DB
	resolver *availability.Resolver
	events   EventPublisher
	strict   bool
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, opts BookingOptions) *BookingService {
	s := &BookingService{
		db:       db,
		resolver: availability.NewResolver(opts.Window),
		events:   opts.Events,
		strict:   opts.StrictTransitions,
		now:      opts.Now,
	}
	if s.events == nil {
		s.events = nopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Resolver exposes the conflict rules the service books with.
func (s *BookingService) Resolver() *availability.Resolver { return s.resolver }

type BookingRequest struct {
	CustomerID   uint
	RestaurantID uint
	Date         string
	Time         string
	Guests       int
	TableID      *uint
}

type ModifyRequest struct {
	CustomerID    uint
	ReservationID uint
	Date          string
	Time          string
	Guests        int
}

// Create books a table for a customer. The reservation starts pending.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*models.Reservation, error) {
	at, err := s.checkSlot(req.Date, req.Time, req.Guests)
	if err != nil {
		return nil, err
	}

	var reservation models.Reservation
	err = database.WithBookingTx(ctx, s.db, req.RestaurantID, func(tx *gorm.DB) error {
		if err := checkOpeningHours(tx, req.RestaurantID, at); err != nil {
			return err
		}

		res, err := s.resolver.Resolve(ctx, database.NewStore(tx), availability.Request{
			RestaurantID: req.RestaurantID,
			Date:         req.Date,
			Time:         at,
			Guests:       req.Guests,
			TableID:      req.TableID,
		})
		if err != nil {
			return err
		}
		if !res.OK() {
			return &UnavailableError{Outcome: res.Outcome}
		}

		tableID := res.TableID
		reservation = models.Reservation{
			CustomerID:   req.CustomerID,
			RestaurantID: req.RestaurantID,
			TableID:      &tableID,
			Date:         req.Date,
			Time:         at.String(),
			Guests:       req.Guests,
			Status:       models.StatusPending,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return appendHistory(tx, reservation.ID, models.ActionCreated, nil, &req.CustomerID, "Customer created reservation.")
	})
	if err != nil {
		return nil, err
	}

	s.log(&reservation).Info("Reservation created")
	s.events.Publish(EventReservationCreated, reservation)
	return &reservation, nil
}

// Modify moves an active reservation to a new date, time or party size.
// The current table is kept unless it has become too small. A failed
// change leaves the reservation untouched.
func (s *BookingService) Modify(ctx context.Context, req ModifyRequest) (*models.Reservation, error) {
	at, err := s.checkSlot(req.Date, req.Time, req.Guests)
	if err != nil {
		return nil, err
	}

	current, err := s.owned(s.db.WithContext(ctx), req.CustomerID, req.ReservationID)
	if err != nil {
		return nil, err
	}

	var updated models.Reservation
	err = database.WithBookingTx(ctx, s.db, current.RestaurantID, func(tx *gorm.DB) error {
		r, err := s.owned(tx, req.CustomerID, req.ReservationID)
		if err != nil {
			return err
		}
		if !r.Active() {
			return ErrReservationClosed
		}
		if err := checkOpeningHours(tx, r.RestaurantID, at); err != nil {
			return err
		}

		res, err := s.resolver.Reresolve(ctx, database.NewStore(tx), r.TableID, availability.Request{
			RestaurantID: r.RestaurantID,
			Date:         req.Date,
			Time:         at,
			Guests:       req.Guests,
			Exclude:      &r.ID,
		})
		if err != nil {
			return err
		}
		if !res.OK() {
			return &UnavailableError{Outcome: res.Outcome, Editing: true}
		}

		if err := tx.Model(r).Updates(map[string]interface{}{
			"reservation_date": req.Date,
			"reservation_time": at.String(),
			"guests":           req.Guests,
			"table_id":         res.TableID,
			"status":           models.StatusPending,
		}).Error; err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}
		if err := appendHistory(tx, r.ID, models.ActionModified, nil, &req.CustomerID, "Customer modified reservation."); err != nil {
			return err
		}
		return tx.First(&updated, r.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log(&updated).Info("Reservation modified")
	s.events.Publish(EventReservationModified, updated)
	return &updated, nil
}

// Cancel cancels an active reservation owned by the customer. Cancelling
// twice returns ErrAlreadyCancelled and records nothing.
func (s *BookingService) Cancel(ctx context.Context, customerID, reservationID uint) (*models.Reservation, error) {
	var cancelled models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.owned(tx, customerID, reservationID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Reservation{}).
			Where("id = ? AND status IN ?", r.ID, []string{models.StatusPending, models.StatusConfirmed}).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			return fmt.Errorf("failed to cancel reservation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if r.Status == models.StatusCancelled {
				return ErrAlreadyCancelled
			}
			return ErrReservationClosed
		}

		if err := appendHistory(tx, r.ID, models.ActionCancelled, nil, &customerID, "Customer cancelled reservation"); err != nil {
			return err
		}
		return tx.First(&cancelled, r.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log(&cancelled).Info("Reservation cancelled")
	s.events.Publish(EventReservationCancelled, cancelled)
	return &cancelled, nil
}

// UpdateStatus sets a reservation's status on behalf of an admin without
// consulting table availability. The customer is notified.
func (s *BookingService) UpdateStatus(ctx context.Context, adminID, reservationID uint, status string) (*models.Reservation, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	var updated models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Reservation
		if err := tx.Preload("Restaurant").First(&r, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if s.strict && !models.CanTransition(r.Status, status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, r.Status, status)
		}

		if err := tx.Model(&r).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		note := fmt.Sprintf("Admin set status to %s", status)
		if err := appendHistory(tx, r.ID, models.StatusAction(status), &adminID, nil, note); err != nil {
			return err
		}

		restaurant := "the restaurant"
		if r.Restaurant != nil {
			restaurant = r.Restaurant.Name
		}
		if err := tx.Create(&models.Notification{
			CustomerID:    r.CustomerID,
			ReservationID: &r.ID,
			Title:         fmt.Sprintf("Reservation %s", status),
			Message:       fmt.Sprintf("Your reservation at %s on %s %s is now %s.", restaurant, r.Date, r.Time, status),
		}).Error; err != nil {
			return fmt.Errorf("failed to notify customer: %w", err)
		}

		return tx.First(&updated, r.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.log(&updated).WithField("admin_id", adminID).Info("Reservation status updated")
	s.events.Publish(EventReservationStatus, updated)
	return &updated, nil
}

// History returns the audit trail of a reservation, oldest first. When
// customerID is set the reservation must belong to that customer.
func (s *BookingService) History(ctx context.Context, customerID *uint, reservationID uint) ([]models.ReservationHistory, error) {
	db := s.db.WithContext(ctx)
	if customerID != nil {
		if _, err := s.owned(db, *customerID, reservationID); err != nil {
			return nil, err
		}
	} else {
		var count int64
		if err := db.Model(&models.Reservation{}).Where("id = ?", reservationID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrReservationNotFound
		}
	}

	var entries []models.ReservationHistory
	if err := db.Where("reservation_id = ?", reservationID).Order("action_time ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Slot is the outcome of an availability probe.
type Slot struct {
	Date      string               `json:"date"`
	Time      string               `json:"time"`
	Guests    int                  `json:"guests"`
	Suggested *uint                `json:"suggested_table_id"`
	Outcome   availability.Outcome `json:"outcome"`
	Free      []models.Table       `json:"free_tables"`
}

// Availability reports which tables of a restaurant could take a booking
// without creating one.
func (s *BookingService) Availability(ctx context.Context, restaurantID uint, date, at string, guests int) (*Slot, error) {
	clock, err := s.checkSlot(date, at, guests)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := checkOpeningHours(db, restaurantID, clock); err != nil {
		return nil, err
	}

	store := database.NewStore(db)
	req := availability.Request{RestaurantID: restaurantID, Date: date, Time: clock, Guests: guests}
	res, err := s.resolver.Resolve(ctx, store, req)
	if err != nil {
		return nil, err
	}
	free, err := s.resolver.Free(ctx, store, req)
	if err != nil {
		return nil, err
	}

	slot := &Slot{Date: date, Time: clock.String(), Guests: guests, Outcome: res.Outcome, Free: []models.Table{}}
	if res.OK() {
		id := res.TableID
		slot.Suggested = &id
	}
	if len(free) > 0 {
		ids := make([]uint, len(free))
		for i, t := range free {
			ids[i] = t.ID
		}
		if err := db.Where("id IN ?", ids).Order("capacity ASC, id ASC").Find(&slot.Free).Error; err != nil {
			return nil, err
		}
	}
	return slot, nil
}

func (s *BookingService) checkSlot(date, at string, guests int) (availability.Clock, error) {
	if guests < 1 {
		return 0, ErrInvalidGuests
	}
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		return 0, ErrInvalidDate
	}
	clock, err := availability.ParseClock(at)
	if err != nil {
		return 0, ErrInvalidTime
	}
	if date < s.now().Format(utils.DateLayout) {
		return 0, ErrPastDate
	}
	return clock, nil
}

func checkOpeningHours(db *gorm.DB, restaurantID uint, at availability.Clock) error {
	var r models.Restaurant
	if err := db.Select("id", "opening_time", "closing_time").First(&r, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRestaurantNotFound
		}
		return err
	}
	if r.OpeningTime == nil || r.ClosingTime == nil || *r.OpeningTime == "" || *r.ClosingTime == "" {
		return nil
	}
	open, err := availability.ParseClock(*r.OpeningTime)
	if err != nil {
		return nil
	}
	closing, err := availability.ParseClock(*r.ClosingTime)
	if err != nil {
		return nil
	}
	if !availability.Within(at, open, closing) {
		return ErrOutsideOpeningHours
	}
	return nil
}

func (s *BookingService) owned(db *gorm.DB, customerID, reservationID uint) (*models.Reservation, error) {
	var r models.Reservation
	err := db.Where("id = ? AND customer_id = ?", reservationID, customerID).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func appendHistory(tx *gorm.DB, reservationID uint, action string, adminID, customerID *uint, note string) error {
	entry := models.ReservationHistory{
		ReservationID:    reservationID,
		Action:           action,
		ActionByAdmin:    adminID,
		ActionByCustomer: customerID,
		Note:             note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

func (s *BookingService) log(r *models.Reservation) *logrus.Entry {
	fields := logrus.Fields{
		"reservation_id": r.ID,
		"restaurant_id":  r.RestaurantID,
		"date":           r.Date,
		"time":           r.Time,
		"guests":         r.Guests,
		"status":         r.Status,
	}
	if r.TableID != nil {
		fields["table_id"] = *r.TableID
	}
	return utils.InfoLogger.WithFields(fields)
}
