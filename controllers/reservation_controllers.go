package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type ReservationController struct {
	DB      *gorm.DB
	Booking *services.BookingService
}

func NewReservationController(db *gorm.DB, booking *services.BookingService) *ReservationController {
	return &ReservationController{DB: db, Booking: booking}
}

// ReservationView is a reservation with the labels a booking list shows.
type ReservationView struct {
	ID             uint    `json:"id"`
	RestaurantID   uint    `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	TableID        *uint   `json:"table_id"`
	TableNumber    *string `json:"table_number"`
	CustomerID     uint    `json:"customer_id"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Guests         int     `json:"guests"`
	Status         string  `json:"status"`
}

func newReservationView(r models.Reservation) ReservationView {
	v := ReservationView{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		TableID:      r.TableID,
		CustomerID:   r.CustomerID,
		Date:         r.Date,
		Time:         r.Time,
		Guests:       r.Guests,
		Status:       r.Status,
	}
	if r.Restaurant != nil {
		v.RestaurantName = r.Restaurant.Name
	}
	if r.Table != nil {
		v.TableNumber = &r.Table.TableNumber
	}
	return v
}

// withLabels preloads what ReservationView needs.
func withLabels(db *gorm.DB) *gorm.DB {
	return db.Preload("Restaurant", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "slug")
	}).Preload("Table")
}

// CreateReservation books a table. Without table_id the smallest free table
// that fits is assigned.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		Date         string `json:"date" binding:"required"`
		Time         string `json:"time" binding:"required"`
		Guests       int    `json:"guests"`
		TableID      *uint  `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Booking.Create(c.Request.Context(), services.BookingRequest{
		CustomerID:   middlewares.UserID(c),
		RestaurantID: req.RestaurantID,
		Date:         req.Date,
		Time:         req.Time,
		Guests:       req.Guests,
		TableID:      req.TableID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", rc.view(reservation))
}

// GetMyReservations lists the caller's reservations, latest first.
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	var reservations []models.Reservation
	err := withLabels(rc.DB).
		Where("customer_id = ?", middlewares.UserID(c)).
		Order("reservation_date DESC, reservation_time DESC, id DESC").
		Find(&reservations).Error
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]ReservationView, len(reservations))
	for i, r := range reservations {
		views[i] = newReservationView(r)
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", views)
}

func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var reservation models.Reservation
	err := withLabels(rc.DB).Where("id = ? AND customer_id = ?", id, middlewares.UserID(c)).First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = services.ErrReservationNotFound
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", newReservationView(reservation))
}

// UpdateReservation changes date, time or party size. The reservation goes
// back to pending.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Date   string `json:"date" binding:"required"`
		Time   string `json:"time" binding:"required"`
		Guests int    `json:"guests"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := rc.Booking.Modify(c.Request.Context(), services.ModifyRequest{
		CustomerID:    middlewares.UserID(c),
		ReservationID: id,
		Date:          req.Date,
		Time:          req.Time,
		Guests:        req.Guests,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated successfully", rc.view(reservation))
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reservation, err := rc.Booking.Cancel(c.Request.Context(), middlewares.UserID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", rc.view(reservation))
}

func (rc *ReservationController) GetHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	customerID := middlewares.UserID(c)
	entries, err := rc.Booking.History(c.Request.Context(), &customerID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation history", entries)
}

// view reloads labels for a reservation just written. A failed reload falls
// back to the bare row.
func (rc *ReservationController) view(r *models.Reservation) ReservationView {
	var loaded models.Reservation
	if err := withLabels(rc.DB).First(&loaded, r.ID).Error; err != nil {
		return newReservationView(*r)
	}
	return newReservationView(loaded)
}
