package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrNoPermission       = &CustomError{"You do not have permission"}
	ErrInvalidID          = &CustomError{"Invalid id"}
	ErrInvalidCredentials = &CustomError{"Invalid username or password"}
	ErrNotFound           = &CustomError{"Record not found"}

	// ErrCapacityBelowBooking rejects shrinking a table under a booked party.
	ErrCapacityBelowBooking = &CustomError{"Table capacity is below the party size of an active reservation"}
)

// paramID reads a positive numeric path parameter. On failure it has already
// responded.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps domain errors onto status codes.
func respondServiceError(c *gin.Context, err error) {
	var unavailable *services.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		utils.RespondError(c, http.StatusConflict, err)
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrNotFound
		}
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrAlreadyCancelled),
		errors.Is(err, services.ErrReservationClosed),
		errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		utils.RespondError(c, http.StatusConflict, errors.New("Record already exists"))
	default:
		utils.ErrorLogger.WithField("path", c.FullPath()).Errorf("Request failed: %v", err)
		c.Error(err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Internal server error"))
	}
}
