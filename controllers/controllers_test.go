package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/reservation-app/config"
	"github.com/yeremiapane/reservation-app/database"
	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/router"
	"github.com/yeremiapane/reservation-app/services"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// bookingDate is far enough ahead to never be in the past.
const bookingDate = "2099-12-01"

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	tokens *utils.TokenManager
	pizza  models.Restaurant
	admin  *models.Admin
}

func newTestApp(t *testing.T) *testApp {
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate&_foreign_keys=1"
	cfg := config.Config{
		DBDriver:           "sqlite",
		DatabaseURL:        dsn,
		CORSOrigins:        []string{"*"},
		RateLimitPerMinute: 1000,
		ReservationWindow:  2 * time.Hour,
	}
	db, err := config.InitDB(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	_, err = database.SeedRestaurants(db)
	require.NoError(t, err)
	admin, err := database.CreateAdmin(db, "admin1", "admin-password", "Admin", "admin01@example.com")
	require.NoError(t, err)

	app := &testApp{t: t, db: db, tokens: utils.NewTokenManager("test-secret", time.Hour), admin: admin}
	require.NoError(t, db.Preload("Tables", func(db *gorm.DB) *gorm.DB {
		return db.Order("capacity ASC")
	}).Where("name = ?", "Pizza Palace").First(&app.pizza).Error)

	hub := events.NewHub()
	app.router = router.SetupRouter(router.Deps{
		DB:        db,
		Config:    cfg,
		Tokens:    app.tokens,
		Blacklist: utils.NewMemoryBlacklist(),
		Booking:   services.NewBookingService(db, services.BookingOptions{Window: cfg.ReservationWindow, Events: hub}),
		Hub:       hub,
	})
	return app
}

func (a *testApp) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (a *testApp) token(id uint, role string) string {
	token, _, err := a.tokens.GenerateToken(id, role)
	require.NoError(a.t, err)
	return token
}

func (a *testApp) customer(username string) (uint, string) {
	c := models.Customer{Username: username, PasswordHash: "x", Email: username + "@example.com"}
	require.NoError(a.t, a.db.Create(&c).Error)
	return c.ID, a.token(c.ID, utils.RoleCustomer)
}

func (a *testApp) adminToken() string {
	return a.token(a.admin.ID, utils.RoleAdmin)
}

func data(response map[string]interface{}) map[string]interface{} {
	d, _ := response["data"].(map[string]interface{})
	return d
}

func list(response map[string]interface{}) []interface{} {
	l, _ := response["data"].([]interface{})
	return l
}

func TestRegisterLoginLogout(t *testing.T) {
	app := newTestApp(t)

	register := map[string]interface{}{
		"username":         "alice",
		"password":         "password123",
		"confirm_password": "password123",
		"email":            "Alice@Example.com",
		"phone":            "0123456789",
	}
	w, response := app.do(http.MethodPost, "/api/auth/register", register, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Registration successful", response["message"])
	assert.Equal(t, "alice@example.com", data(response)["email"])
	assert.NotContains(t, data(response), "password_hash")

	w, _ = app.do(http.MethodPost, "/api/auth/register", register, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	bad := map[string]interface{}{"username": "bo", "password": "short", "confirm_password": "other", "email": "nope"}
	w, _ = app.do(http.MethodPost, "/api/auth/register", bad, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", response["message"])

	w, response = app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, utils.RoleCustomer, data(response)["role"])
	token := data(response)["token"].(string)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "session=")

	w, response = app.do(http.MethodGet, "/api/auth/profile", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", data(response)["username"])

	w, _ = app.do(http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(http.MethodGet, "/api/auth/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLogin(t *testing.T) {
	app := newTestApp(t)

	w, response := app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin1", "password": "admin-password", "who": "admin"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, utils.RoleAdmin, data(response)["role"])

	w, _ = app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "admin1", "password": "admin-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "admins are not customers")
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	w, _ := app.do(http.MethodPost, "/api/auth/register", map[string]interface{}{
		"username": "carol", "password": "password123", "confirm_password": "password123", "email": "carol@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	_, response := app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "password123"}, "")
	token := data(response)["token"].(string)

	w, _ = app.do(http.MethodPut, "/api/auth/password", map[string]string{
		"old_password": "wrong-password", "new_password": "newpassword1", "confirm_password": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(http.MethodPut, "/api/auth/password", map[string]string{
		"old_password": "password123", "new_password": "newpassword1", "confirm_password": "newpassword1",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = app.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "carol", "password": "newpassword1"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRestaurantListing(t *testing.T) {
	app := newTestApp(t)

	w, response := app.do(http.MethodGet, "/api/restaurants", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	all := list(response)
	require.Len(t, all, 7)
	assert.Equal(t, "Taco Temple", all[0].(map[string]interface{})["name"], "highest rated first")

	_, response = app.do(http.MethodGet, "/api/restaurants?sort=name", nil, "")
	assert.Equal(t, "Bangkok Spice", list(response)[0].(map[string]interface{})["name"])

	_, response = app.do(http.MethodGet, "/api/restaurants?cuisine=ITAL", nil, "")
	require.Len(t, list(response), 1)
	assert.Equal(t, "Pizza Palace", list(response)[0].(map[string]interface{})["name"])

	_, response = app.do(http.MethodGet, "/api/restaurants?location=france", nil, "")
	assert.Len(t, list(response), 1)

	w, _ = app.do(http.MethodGet, "/api/restaurants?sort=price", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestaurantDetail(t *testing.T) {
	app := newTestApp(t)

	w, response := app.do(http.MethodGet, fmt.Sprintf("/api/restaurants/%d", app.pizza.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	tables := data(response)["tables"].([]interface{})
	require.Len(t, tables, 3)
	assert.Equal(t, float64(2), tables[0].(map[string]interface{})["capacity"])

	w, response = app.do(http.MethodGet, "/api/restaurants/slug/"+app.pizza.Slug, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Pizza Palace", data(response)["name"])

	w, _ = app.do(http.MethodGet, "/api/restaurants/9999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = app.do(http.MethodGet, "/api/restaurants/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRestaurantAndTableCRUD(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken()
	_, customer := app.customer("dave")

	body := map[string]interface{}{"name": "Noodle Bar", "cuisine": "Chinese", "rating": 4.1, "opening_time": "10:00", "closing_time": "21:00"}
	w, _ := app.do(http.MethodPost, "/api/admin/restaurants", body, customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, response := app.do(http.MethodPost, "/api/admin/restaurants", body, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(data(response)["id"].(float64))
	assert.Equal(t, fmt.Sprintf("noodle-bar-%d", id), data(response)["slug"])

	body["opening_time"] = "25:00"
	w, _ = app.do(http.MethodPut, fmt.Sprintf("/api/admin/restaurants/%d", id), body, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body["opening_time"] = "09:00"
	body["name"] = "Noodle House"
	w, response = app.do(http.MethodPut, fmt.Sprintf("/api/admin/restaurants/%d", id), body, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fmt.Sprintf("noodle-house-%d", id), data(response)["slug"])

	w, response = app.do(http.MethodPost, fmt.Sprintf("/api/admin/restaurants/%d/tables", id), map[string]interface{}{"table_number": "N1", "capacity": 4}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	tableID := uint(data(response)["id"].(float64))

	w, _ = app.do(http.MethodPost, fmt.Sprintf("/api/admin/restaurants/%d/tables", id), map[string]interface{}{"table_number": "N1", "capacity": 2}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = app.do(http.MethodPost, fmt.Sprintf("/api/admin/restaurants/%d/tables", id), map[string]interface{}{"table_number": "N2", "capacity": 0}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = app.do(http.MethodPut, fmt.Sprintf("/api/admin/tables/%d", tableID), map[string]interface{}{"table_number": "N1", "capacity": 6}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(6), data(response)["capacity"])

	w, _ = app.do(http.MethodDelete, fmt.Sprintf("/api/admin/tables/%d", tableID), nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(http.MethodDelete, fmt.Sprintf("/api/admin/tables/%d", tableID), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = app.do(http.MethodDelete, fmt.Sprintf("/api/admin/restaurants/%d", id), nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(http.MethodGet, fmt.Sprintf("/api/restaurants/%d", id), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationLifecycle(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.customer("alice")
	_, bob := app.customer("bobby")
	admin := app.adminToken()

	w, response := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "19:00", "guests": 3,
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Reservation created successfully", response["message"])
	created := data(response)
	assert.Equal(t, "T2", created["table_number"])
	assert.Equal(t, "Pizza Palace", created["restaurant_name"])
	assert.Equal(t, models.StatusPending, created["status"])
	id := uint(created["id"].(float64))

	requested := app.pizza.Tables[1].ID
	w, response = app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "20:00", "guests": 2, "table_id": requested,
	}, bob)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Selected table already booked for that time.", response["message"])

	w, _ = app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": "2000-01-01", "time": "19:00", "guests": 2,
	}, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "19:00", "guests": 0,
	}, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = app.do(http.MethodGet, "/api/reservations", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list(response), 1)
	_, response = app.do(http.MethodGet, "/api/reservations", nil, bob)
	assert.Empty(t, list(response))

	path := fmt.Sprintf("/api/reservations/%d", id)
	w, _ = app.do(http.MethodGet, path, nil, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = app.do(http.MethodPut, path, map[string]interface{}{"date": bookingDate, "time": "20:00", "guests": 3}, bob)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, response = app.do(http.MethodPatch, fmt.Sprintf("/api/admin/reservations/%d/status", id), map[string]string{"status": "confirmed"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusConfirmed, data(response)["status"])

	w, response = app.do(http.MethodPut, path, map[string]interface{}{"date": bookingDate, "time": "19:30", "guests": 4}, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "T2", data(response)["table_number"])
	assert.Equal(t, models.StatusPending, data(response)["status"])

	w, response = app.do(http.MethodGet, path+"/history", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	actions := []string{}
	for _, e := range list(response) {
		actions = append(actions, e.(map[string]interface{})["action"].(string))
	}
	assert.Equal(t, []string{"created", "status:confirmed", "modified"}, actions)

	w, _ = app.do(http.MethodPost, path+"/cancel", nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)
	w, response = app.do(http.MethodPost, path+"/cancel", nil, alice)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Reservation is already cancelled.", response["message"])

	w, response = app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "20:00", "guests": 2, "table_id": requested,
	}, bob)
	assert.Equal(t, http.StatusCreated, w.Code, "cancelled reservation frees the table")
	assert.Equal(t, "T2", data(response)["table_number"])

	w, response = app.do(http.MethodGet, "/api/notifications", nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	notes := list(response)
	require.Len(t, notes, 1)
	noteID := uint(notes[0].(map[string]interface{})["id"].(float64))
	w, _ = app.do(http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", noteID), nil, alice)
	assert.Equal(t, http.StatusOK, w.Code)
	_, response = app.do(http.MethodGet, "/api/notifications?unread=true", nil, alice)
	assert.Empty(t, list(response))
}

func TestEditConflictReported(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.customer("alice")
	_, bob := app.customer("bobby")
	t2 := app.pizza.Tables[1].ID

	_, response := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "12:00", "guests": 3, "table_id": t2,
	}, alice)
	id := uint(data(response)["id"].(float64))
	w, _ := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "19:00", "guests": 3, "table_id": t2,
	}, bob)
	require.Equal(t, http.StatusCreated, w.Code)

	w, response = app.do(http.MethodPut, fmt.Sprintf("/api/reservations/%d", id), map[string]interface{}{"date": bookingDate, "time": "18:00", "guests": 3}, alice)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "No available table for updated time/party size.", response["message"])
}

func TestAvailabilityEndpoint(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.customer("alice")

	w, _ := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "19:00", "guests": 3,
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/restaurants/%d/availability?date=%s&time=20:00&guests=3", app.pizza.ID, bookingDate)
	w, response := app.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	slot := data(response)
	assert.Equal(t, "assigned", slot["outcome"])
	assert.Equal(t, float64(app.pizza.Tables[2].ID), slot["suggested_table_id"])
	assert.Len(t, slot["free_tables"], 1)

	w, _ = app.do(http.MethodGet, fmt.Sprintf("/api/restaurants/%d/availability?date=%s&time=8pm&guests=3", app.pizza.ID, bookingDate), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(http.MethodGet, fmt.Sprintf("/api/restaurants/%d/availability?date=%s&time=23:00&guests=3", app.pizza.ID, bookingDate), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "outside opening hours")
}

func TestAdminReservationsAndExports(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.customer("alice")
	admin := app.adminToken()

	for _, at := range []string{"12:00", "18:00"} {
		w, _ := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
			"restaurant_id": app.pizza.ID, "date": bookingDate, "time": at, "guests": 2,
		}, alice)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, _ := app.do(http.MethodGet, "/api/admin/reservations", nil, alice)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, response := app.do(http.MethodGet, "/api/admin/reservations?status=pending", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	rows := list(response)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].(map[string]interface{})["customer_username"])
	assert.Equal(t, "18:00", rows[0].(map[string]interface{})["time"])
	id := uint(rows[0].(map[string]interface{})["id"].(float64))

	w, _ = app.do(http.MethodGet, "/api/admin/reservations?status=archived", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, response = app.do(http.MethodPatch, fmt.Sprintf("/api/admin/reservations/%d/status", id), map[string]string{"status": "bogus"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid reservation status.", response["message"])

	w, _ = app.do(http.MethodPatch, fmt.Sprintf("/api/admin/reservations/%d/status", id), map[string]string{"status": "completed"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w, response = app.do(http.MethodGet, fmt.Sprintf("/api/admin/reservations/%d/history", id), nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list(response), 2)

	w, response = app.do(http.MethodGet, "/api/admin/dashboard", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	stats := data(response)
	assert.Equal(t, float64(7), stats["restaurants"])
	assert.Equal(t, float64(2), stats["reservations"])
	byStatus := stats["reservations_by_status"].(map[string]interface{})
	assert.Equal(t, float64(1), byStatus["pending"])
	assert.Equal(t, float64(1), byStatus["completed"])
	assert.Equal(t, float64(0), byStatus["cancelled"])

	w, _ = app.do(http.MethodGet, "/api/admin/exports/reservations.csv", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "id,restaurant,table,customer,date,time,guests,status", lines[0])

	w, _ = app.do(http.MethodGet, "/api/admin/exports/reservations.pdf?status=completed", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestAdminCustomers(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken()
	aliceID, _ := app.customer("alice")
	app.customer("bobby")

	w, response := app.do(http.MethodGet, "/api/admin/customers", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list(response), 2)

	w, _ = app.do(http.MethodPut, fmt.Sprintf("/api/admin/customers/%d", aliceID), map[string]string{"email": "bobby@example.com"}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, response = app.do(http.MethodPut, fmt.Sprintf("/api/admin/customers/%d", aliceID), map[string]string{"full_name": "Alice Liddell", "phone": "0987654321"}, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Liddell", data(response)["full_name"])

	w, _ = app.do(http.MethodDelete, fmt.Sprintf("/api/admin/customers/%d", aliceID), nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = app.do(http.MethodDelete, fmt.Sprintf("/api/admin/customers/%d", aliceID), nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	w, response := app.do(http.MethodGet, "/api/reservations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, response["status"])

	w, _ = app.do(http.MethodGet, "/api/reservations", nil, app.adminToken())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, response = app.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", response["message"])
}

func TestTableCapacityCannotDropBelowBooking(t *testing.T) {
	app := newTestApp(t)
	_, alice := app.customer("alice")
	admin := app.adminToken()
	t2 := app.pizza.Tables[1]

	w, response := app.do(http.MethodPost, "/api/reservations", map[string]interface{}{
		"restaurant_id": app.pizza.ID, "date": bookingDate, "time": "19:00", "guests": 4,
	}, alice)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "T2", data(response)["table_number"])
	id := uint(data(response)["id"].(float64))

	path := fmt.Sprintf("/api/admin/tables/%d", t2.ID)
	w, response = app.do(http.MethodPut, path, map[string]interface{}{"table_number": "T2", "capacity": 1}, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Table capacity is below the party size of an active reservation", response["message"])

	var table models.Table
	require.NoError(t, app.db.First(&table, t2.ID).Error)
	assert.Equal(t, 4, table.Capacity)

	w, _ = app.do(http.MethodPut, path, map[string]interface{}{"table_number": "T2", "capacity": 5}, admin)
	assert.Equal(t, http.StatusOK, w.Code, "growing a booked table is fine")

	w, _ = app.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", id), nil, alice)
	require.Equal(t, http.StatusOK, w.Code)
	w, response = app.do(http.MethodPut, path, map[string]interface{}{"table_number": "T2", "capacity": 1}, admin)
	assert.Equal(t, http.StatusOK, w.Code, "cancelled bookings do not hold capacity")
	assert.Equal(t, float64(1), data(response)["capacity"])
}
