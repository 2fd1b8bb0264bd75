package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB      *gorm.DB
	Booking *services.BookingService
}

func NewTableController(db *gorm.DB, booking *services.BookingService) *TableController {
	return &TableController{DB: db, Booking: booking}
}

type tableRequest struct {
	TableNumber string `json:"table_number" binding:"required,max=20"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
}

// GetTables lists a restaurant's tables, smallest first.
func (tc *TableController) GetTables(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !tc.restaurantExists(c, restaurantID) {
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("restaurant_id = ?", restaurantID).Order("capacity ASC, id ASC").Find(&tables).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !tc.restaurantExists(c, restaurantID) {
		return
	}

	table := models.Table{
		RestaurantID: restaurantID,
		TableNumber:  strings.TrimSpace(req.TableNumber),
		Capacity:     req.Capacity,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondError(c, http.StatusConflict, errors.New("Table number already used in this restaurant"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Infof("New table created: %s (restaurant=%d, capacity=%d)", table.TableNumber, restaurantID, table.Capacity)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// UpdateTable changes a table's label or capacity. The capacity may not go
// below the party size of an active reservation held by the table. The
// check runs under the restaurant's booking lock so it cannot race a new
// booking.
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	err := database.WithBookingTx(c.Request.Context(), tc.DB, table.RestaurantID, func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			return err
		}
		var largest int
		err := tx.Model(&models.Reservation{}).
			Select("COALESCE(MAX(guests), 0)").
			Where("table_id = ? AND status IN ?", table.ID, []string{models.StatusPending, models.StatusConfirmed}).
			Scan(&largest).Error
		if err != nil {
			return fmt.Errorf("failed to check reservations of table %d: %w", table.ID, err)
		}
		if req.Capacity < largest {
			return ErrCapacityBelowBooking
		}

		table.TableNumber = strings.TrimSpace(req.TableNumber)
		table.Capacity = req.Capacity
		return tx.Save(&table).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityBelowBooking):
			utils.RespondError(c, http.StatusConflict, err)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			utils.RespondError(c, http.StatusConflict, errors.New("Table number already used in this restaurant"))
		default:
			respondServiceError(c, err)
		}
		return
	}

	utils.InfoLogger.Infof("Table %d updated (capacity=%d)", table.ID, table.Capacity)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable removes a table. Its reservations stay, without a table.
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	res := tc.DB.Delete(&models.Table{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, ErrNotFound)
		return
	}

	utils.InfoLogger.Infof("Table %d deleted", id)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}

// GetAvailability probes which tables could take a booking without making
// one.
func (tc *TableController) GetAvailability(c *gin.Context) {
	restaurantID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q struct {
		Date   string `form:"date" binding:"required,isodate"`
		Time   string `form:"time" binding:"required,hhmm"`
		Guests int    `form:"guests" binding:"required,gt=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	slot, err := tc.Booking.Availability(c.Request.Context(), restaurantID, q.Date, q.Time, q.Guests)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability", slot)
}

func (tc *TableController) restaurantExists(c *gin.Context, id uint) bool {
	var count int64
	if err := tc.DB.Model(&models.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		respondServiceError(c, err)
		return false
	}
	if count == 0 {
		utils.RespondError(c, http.StatusNotFound, services.ErrRestaurantNotFound)
		return false
	}
	return true
}
