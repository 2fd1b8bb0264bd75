package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/reports"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB      *gorm.DB
	Booking *services.BookingService
}

func NewAdminController(db *gorm.DB, booking *services.BookingService) *AdminController {
	return &AdminController{DB: db, Booking: booking}
}

// AdminReservationView adds the customer to a ReservationView.
type AdminReservationView struct {
	ReservationView
	CustomerUsername string `json:"customer_username"`
}

type reservationFilter struct {
	Status       string `form:"status" binding:"omitempty,oneof=pending confirmed rejected completed cancelled"`
	RestaurantID uint   `form:"restaurant_id"`
	Date         string `form:"date" binding:"omitempty,isodate"`
}

func (ac *AdminController) findReservations(c *gin.Context) ([]AdminReservationView, bool) {
	var f reservationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, false
	}

	query := withLabels(ac.DB).Preload("Customer", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "username")
	})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.RestaurantID != 0 {
		query = query.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.Date != "" {
		query = query.Where("reservation_date = ?", f.Date)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date DESC, reservation_time DESC, id DESC").Find(&reservations).Error; err != nil {
		respondServiceError(c, err)
		return nil, false
	}

	views := make([]AdminReservationView, len(reservations))
	for i, r := range reservations {
		views[i] = AdminReservationView{ReservationView: newReservationView(r)}
		if r.Customer != nil {
			views[i].CustomerUsername = r.Customer.Username
		}
	}
	return views, true
}

// GetReservations lists every reservation, filtered by status, restaurant
// and date.
func (ac *AdminController) GetReservations(c *gin.Context) {
	views, ok := ac.findReservations(c)
	if !ok {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", views)
}

// UpdateReservationStatus sets any status, bypassing table availability.
func (ac *AdminController) UpdateReservationStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation, err := ac.Booking.UpdateStatus(c.Request.Context(), middlewares.UserID(c), id, strings.ToLower(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Reservation status updated to %s", reservation.Status), reservation)
}

func (ac *AdminController) GetReservationHistory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entries, err := ac.Booking.History(c.Request.Context(), nil, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation history", entries)
}

// GetDashboardStats counts reservations per status plus the catalogue size.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	var stats struct {
		Restaurants       int64            `json:"restaurants"`
		Tables            int64            `json:"tables"`
		Customers         int64            `json:"customers"`
		Reservations      int64            `json:"reservations"`
		TodayReservations int64            `json:"today_reservations"`
		ByStatus          map[string]int64 `json:"reservations_by_status"`
	}
	stats.ByStatus = make(map[string]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		stats.ByStatus[s] = 0
	}

	var rows []struct {
		Status string
		Count  int64
	}
	today := time.Now().Format(utils.DateLayout)
	err := errors.Join(
		ac.DB.Model(&models.Restaurant{}).Count(&stats.Restaurants).Error,
		ac.DB.Model(&models.Table{}).Count(&stats.Tables).Error,
		ac.DB.Model(&models.Customer{}).Count(&stats.Customers).Error,
		ac.DB.Model(&models.Reservation{}).Where("reservation_date = ?", today).Count(&stats.TodayReservations).Error,
		ac.DB.Model(&models.Reservation{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	for _, r := range rows {
		stats.ByStatus[r.Status] = r.Count
		stats.Reservations += r.Count
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

func (ac *AdminController) GetCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := ac.DB.Order("username ASC").Find(&customers).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

func (ac *AdminController) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Username *string `json:"username" binding:"omitempty,min=4,max=50"`
		FullName *string `json:"full_name" binding:"omitempty,max=100"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Phone    *string `json:"phone" binding:"omitempty,phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := ac.DB.First(&customer, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if req.Username != nil {
		customer.Username = strings.TrimSpace(*req.Username)
	}
	if req.FullName != nil {
		customer.FullName = *req.FullName
	}
	if req.Email != nil {
		customer.Email = strings.ToLower(*req.Email)
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if err := ac.DB.Save(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("Username or email already registered"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer removes the account and its reservations.
func (ac *AdminController) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := ac.DB.Delete(&models.Customer{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, ErrNotFound)
		return
	}

	utils.InfoLogger.WithField("admin_id", middlewares.UserID(c)).Infof("Customer %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"customer_id": id})
}

func toReportRows(views []AdminReservationView) []reports.ReservationRow {
	rows := make([]reports.ReservationRow, len(views))
	for i, v := range views {
		rows[i] = reports.ReservationRow{
			ID:         v.ID,
			Restaurant: v.RestaurantName,
			Customer:   v.CustomerUsername,
			Date:       v.Date,
			Time:       v.Time,
			Guests:     v.Guests,
			Status:     v.Status,
		}
		if v.TableNumber != nil {
			rows[i].Table = *v.TableNumber
		}
	}
	return rows
}

// ExportReservationsCSV downloads the filtered reservation list as CSV.
func (ac *AdminController) ExportReservationsCSV(c *gin.Context) {
	views, ok := ac.findReservations(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="reservations.csv"`)
	if err := reports.WriteReservationsCSV(c.Writer, toReportRows(views)); err != nil {
		utils.ErrorLogger.Errorf("Failed to write reservations CSV: %v", err)
	}
}

// ExportReservationsPDF downloads the filtered reservation list as PDF.
func (ac *AdminController) ExportReservationsPDF(c *gin.Context) {
	views, ok := ac.findReservations(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteReservationsPDF(&buf, "Reservations", time.Now(), toReportRows(views)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservations.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
