package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/controllers"
	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB          *gorm.DB
	Config      config.Config
	Tokens      *utils.TokenManager
	Blacklist   utils.TokenBlacklist
	Booking     *services.BookingService
	Hub         *events.Hub
	RateLimiter *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	if err := utils.RegisterValidators(); err != nil {
		utils.ErrorLogger.Panicf("Binding validators: %v", err)
	}
	if d.RateLimiter == nil {
		d.RateLimiter = middlewares.NewRateLimiter(d.Config.RateLimitPerMinute)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.Config.CORSOrigins))

	authCtrl := controllers.NewAuthController(d.DB, d.Tokens, d.Blacklist)
	restaurantCtrl := controllers.NewRestaurantController(d.DB)
	tableCtrl := controllers.NewTableController(d.DB, d.Booking)
	reservationCtrl := controllers.NewReservationController(d.DB, d.Booking)
	adminCtrl := controllers.NewAdminController(d.DB, d.Booking)
	notificationCtrl := controllers.NewNotificationController(d.DB)
	eventsCtrl := controllers.NewEventsController(d.Hub, d.Config.CORSOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	authRequired := middlewares.AuthMiddleware(d.Tokens, d.Blacklist)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := api.Group("/auth")
	public.Use(d.RateLimiter.RateLimit())
	{
		public.POST("/register", authCtrl.Register)
		public.POST("/login", authCtrl.Login)
	}

	api.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	api.GET("/restaurants/slug/:slug", restaurantCtrl.GetRestaurantBySlug)
	api.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	api.GET("/restaurants/:id/tables", tableCtrl.GetTables)
	api.GET("/restaurants/:id/availability", tableCtrl.GetAvailability)

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens, d.Blacklist), eventsCtrl.Subscribe)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	account := api.Group("/auth", authRequired)
	{
		account.POST("/logout", authCtrl.Logout)
		account.GET("/profile", authCtrl.GetProfile)
		account.PUT("/profile", middlewares.RequireRole(utils.RoleCustomer), authCtrl.UpdateProfile)
		account.PUT("/password", authCtrl.ChangePassword)
	}

	customer := api.Group("", authRequired, middlewares.RequireRole(utils.RoleCustomer))
	{
		customer.POST("/reservations", reservationCtrl.CreateReservation)
		customer.GET("/reservations", reservationCtrl.GetMyReservations)
		customer.GET("/reservations/:id", reservationCtrl.GetReservation)
		customer.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
		customer.POST("/reservations/:id/cancel", reservationCtrl.CancelReservation)
		customer.GET("/reservations/:id/history", reservationCtrl.GetHistory)

		customer.GET("/notifications", notificationCtrl.GetMyNotifications)
		customer.PATCH("/notifications/:id/read", notificationCtrl.MarkAsRead)
	}

	admin := api.Group("/admin", authRequired, middlewares.RequireRole(utils.RoleAdmin))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboardStats)

		admin.POST("/restaurants", restaurantCtrl.CreateRestaurant)
		admin.PUT("/restaurants/:id", restaurantCtrl.UpdateRestaurant)
		admin.DELETE("/restaurants/:id", restaurantCtrl.DeleteRestaurant)
		admin.POST("/restaurants/:id/tables", tableCtrl.CreateTable)
		admin.PUT("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.GET("/reservations", adminCtrl.GetReservations)
		admin.PATCH("/reservations/:id/status", adminCtrl.UpdateReservationStatus)
		admin.GET("/reservations/:id/history", adminCtrl.GetReservationHistory)
		admin.GET("/exports/reservations.csv", adminCtrl.ExportReservationsCSV)
		admin.GET("/exports/reservations.pdf", adminCtrl.ExportReservationsPDF)

		admin.GET("/customers", adminCtrl.GetCustomers)
		admin.PUT("/customers/:id", adminCtrl.UpdateCustomer)
		admin.DELETE("/customers/:id", adminCtrl.DeleteCustomer)
	}

	return r
}
