package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

type restaurantRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Location    string  `json:"location" binding:"max=100"`
	Cuisine     string  `json:"cuisine" binding:"max=50"`
	Rating      float64 `json:"rating" binding:"gte=0,lte=5"`
	Description string  `json:"description"`
	OpeningTime *string `json:"opening_time" binding:"omitempty,hhmm"`
	ClosingTime *string `json:"closing_time" binding:"omitempty,hhmm"`
}

func (req restaurantRequest) apply(r *models.Restaurant) {
	r.Name = strings.TrimSpace(req.Name)
	r.Location = req.Location
	r.Cuisine = req.Cuisine
	r.Rating = req.Rating
	r.Description = req.Description
	r.OpeningTime = req.OpeningTime
	r.ClosingTime = req.ClosingTime
}

// likePattern escapes s for a LIKE match anywhere in the column.
func likePattern(s string) string {
	s = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`).Replace(strings.ToLower(s))
	return "%" + s + "%"
}

// GetAllRestaurants lists restaurants, optionally filtered by location and
// cuisine and sorted by rating (default) or name.
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	query := rc.DB.Model(&models.Restaurant{})
	if location := strings.TrimSpace(c.Query("location")); location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '!'`, likePattern(location))
	}
	if cuisine := strings.TrimSpace(c.Query("cuisine")); cuisine != "" {
		query = query.Where(`LOWER(cuisine) LIKE ? ESCAPE '!'`, likePattern(cuisine))
	}
	switch c.DefaultQuery("sort", "rating") {
	case "name":
		query = query.Order("name ASC")
	case "rating":
		query = query.Order("rating DESC").Order("name ASC")
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("sort must be rating or name"))
		return
	}

	var restaurants []models.Restaurant
	if err := query.Find(&restaurants).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantByID returns a restaurant with its tables, smallest first.
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	rc.respondRestaurant(c, rc.DB.Where("id = ?", id))
}

func (rc *RestaurantController) GetRestaurantBySlug(c *gin.Context) {
	rc.respondRestaurant(c, rc.DB.Where("slug = ?", c.Param("slug")))
}

func (rc *RestaurantController) respondRestaurant(c *gin.Context, query *gorm.DB) {
	var restaurant models.Restaurant
	err := query.Preload("Tables", func(db *gorm.DB) *gorm.DB {
		return db.Order("capacity ASC, id ASC")
	}).First(&restaurant).Error
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	req.apply(&restaurant)
	if err := rc.DB.Create(&restaurant).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.WithField("restaurant_id", restaurant.ID).Infof("Restaurant created: %s", restaurant.Name)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var restaurant models.Restaurant
	if err := rc.DB.First(&restaurant, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	req.apply(&restaurant)
	if err := rc.DB.Save(&restaurant).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

// DeleteRestaurant removes the restaurant with its tables and reservations.
func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := rc.DB.Delete(&models.Restaurant{}, id)
	if res.Error != nil {
		respondServiceError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, ErrNotFound)
		return
	}

	utils.InfoLogger.WithField("restaurant_id", id).Info("Restaurant deleted")
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": id})
}
