package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"villabook/internal/handlers"
	"villabook/internal/middleware"
	"villabook/internal/models"
	"villabook/internal/repositories"
	"villabook/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds the full Fiber app against an in-memory SQLite database.
// Each call gets its own database so tests stay independent.
func setupApp() (*fiber.App, *services.AuthService, error) {
	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Booking{}); err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	bookingRepo := repositories.NewGORMBookingRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	bookingService := services.NewBookingService(
		bookingRepo, nil, nil, // no broker, no cache
		decimal.NewFromInt(15000), decimal.NewFromInt(20000),
	)
	adminService := services.NewAdminService(bookingRepo, nil)

	authHandler := handlers.NewAuthHandler(authService, false)
	bookingHandler := handlers.NewBookingHandler(bookingService, adminService)
	adminHandler := handlers.NewAdminHandler(adminService)
	authRequired := middleware.AuthRequired(authService)
	adminRequired := middleware.AdminRequired()

	app := fiber.New()
	api := app.Group("/api")
	authHandler.RegisterRoutes(api, authRequired)
	bookingHandler.RegisterRoutes(api, authRequired, adminRequired)
	adminHandler.RegisterRoutes(api, authRequired, adminRequired)

	return app, authService, nil
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp, env
}

func authCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func signupAndCookie(t *testing.T, app *fiber.App, name, email string) *http.Cookie {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"phone":    "+911234567890",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	cookie := authCookie(resp)
	require.NotNil(t, cookie, "signup must set the session cookie")
	return cookie
}

func adminCookie(t *testing.T, app *fiber.App, authService *services.AuthService, email string) *http.Cookie {
	t.Helper()
	admin := &models.User{
		Name:     "Admin",
		Email:    email,
		Phone:    "+911111111111",
		Password: "adminpass",
		Role:     models.RoleAdmin,
	}
	require.NoError(t, authService.Signup(admin))

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "adminpass",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	cookie := authCookie(resp)
	require.NotNil(t, cookie)
	return cookie
}

func bookingBody(checkIn, checkOut string) map[string]interface{} {
	return map[string]interface{}{
		"checkIn":  checkIn,
		"checkOut": checkOut,
		"fullName": "Jane Guest",
		"email":    "jane@example.com",
		"phone":    "+911234567890",
		"address":  "12 Palm Street",
		"persons":  2,
	}
}

func TestSignupLoginAndProfile(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	cookie := signupAndCookie(t, app, "Test User", "test@example.com")

	// Duplicate signup is rejected and no cookie issued.
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"phone":    "+911234567890",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", env.Message)

	// Profile with the cookie.
	resp, env = doJSON(t, app, http.MethodGet, "/api/auth/profile", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	user := env.Data["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, models.RoleGuest, user["role"])

	// Profile without the cookie.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/auth/profile", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEnumerationResistance(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	signupAndCookie(t, app, "Test User", "known@example.com")

	_, wrongPass := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "known@example.com",
		"password": "wrongpassword",
	}, nil)
	_, unknown := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "unknown@example.com",
		"password": "password123",
	}, nil)

	// Byte-for-byte identical messages for both failure modes.
	assert.Equal(t, "Invalid credentials", wrongPass.Message)
	assert.Equal(t, wrongPass.Message, unknown.Message)
}

func TestLogoutClearsCookie(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	cookie := signupAndCookie(t, app, "Test User", "logout@example.com")

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	cleared := authCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.True(t, cleared.Expires.Before(time.Now()))
}

func TestPasswordResetFlow(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	signupAndCookie(t, app, "Test User", "reset@example.com")

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": "reset@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rawToken := env.Data["resetToken"].(string)
	require.NotEmpty(t, rawToken)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":    rawToken,
		"password": "newpassword",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password rejected, new accepted.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "reset@example.com",
		"password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "reset@example.com",
		"password": "newpassword",
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Token is single use.
	resp, env = doJSON(t, app, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":    rawToken,
		"password": "anotherpassword",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Token is invalid or has expired", env.Message)
}

func TestBookingCreateAndConflict(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	cookie := signupAndCookie(t, app, "Jane", "jane@example.com")

	// Unauthenticated create is rejected.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-02", "2025-06-05"), nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-02", "2025-06-05"), cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.Equal(t, "Booking created successfully (Pending Confirmation)", env.Message)
	assert.Equal(t, "pending", env.Data["status"])
	assert.Equal(t, false, env.Data["paymentConfirmed"])
	assert.Equal(t, float64(3), env.Data["days"])
	// Three weekday nights at 15000. decimal serializes as a string.
	assert.Equal(t, "45000", env.Data["price"])

	// Overlapping range conflicts, even touching endpoints.
	resp, env = doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-05", "2025-06-07"), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Dates conflict with existing booking", env.Message)

	// Availability is public and includes the booked range.
	req := httptest.NewRequest(http.MethodGet, "/api/booking/availability", nil)
	availResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, availResp.StatusCode)
	var avail struct {
		Success bool                     `json:"success"`
		Data    []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(availResp.Body).Decode(&avail))
	availResp.Body.Close()
	assert.Len(t, avail.Data, 1)
}

func TestBookingCreate_InvalidRange(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	cookie := signupAndCookie(t, app, "Jane", "jane@example.com")

	resp, env := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-05", "2025-06-02"), cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Check-out must be after check-in", env.Message)

	// persons outside 1..10 fails validation.
	body := bookingBody("2025-06-02", "2025-06-05")
	body["persons"] = 11
	resp, env = doJSON(t, app, http.MethodPost, "/api/booking/", body, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", env.Message)
}

func TestBookingCancelFlow(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	ownerCookie := signupAndCookie(t, app, "Owner", "owner@example.com")
	otherCookie := signupAndCookie(t, app, "Other", "other@example.com")

	resp, env := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-02", "2025-06-05"), ownerCookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookingID := env.Data["id"].(string)

	// A non-owner cannot cancel, regardless of timing.
	resp, env = doJSON(t, app, http.MethodDelete, "/api/booking/"+bookingID+"/cancel", nil, otherCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Not authorized to cancel this booking", env.Message)

	// Owner cancels within the window.
	resp, env = doJSON(t, app, http.MethodDelete, "/api/booking/"+bookingID+"/cancel", nil, ownerCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cancelled", env.Data["status"])
	assert.Equal(t, false, env.Data["paymentConfirmed"])

	// Second cancel reports the terminal state.
	resp, env = doJSON(t, app, http.MethodDelete, "/api/booking/"+bookingID+"/cancel", nil, ownerCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Booking is already cancelled", env.Message)

	// Unknown id.
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/booking/no-such-id/cancel", nil, ownerCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMyBookings(t *testing.T) {
	app, _, err := setupApp()
	require.NoError(t, err)

	cookie := signupAndCookie(t, app, "Jane", "jane@example.com")
	otherCookie := signupAndCookie(t, app, "Other", "other@example.com")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-02", "2025-06-05"), cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-10", "2025-06-12"), otherCookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/booking/my-bookings", nil)
	req.AddCookie(cookie)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	var list struct {
		Success bool                     `json:"success"`
		Data    []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	listResp.Body.Close()
	require.Len(t, list.Data, 1)
	assert.Equal(t, "2025-06-02", list.Data[0]["checkIn"].(string)[:10])
}

func TestAdminSurface(t *testing.T) {
	app, authService, err := setupApp()
	require.NoError(t, err)

	guestCookie := signupAndCookie(t, app, "Guest", "guest@example.com")
	adminC := adminCookie(t, app, authService, "admin@example.com")

	resp, env := doJSON(t, app, http.MethodPost, "/api/booking/", bookingBody("2025-06-02", "2025-06-05"), guestCookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	bookingID := env.Data["id"].(string)

	// Guests are rejected from every admin route.
	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/api/booking/admin/all"},
		{http.MethodGet, "/api/admin/bookings"},
		{http.MethodPut, "/api/admin/bookings/" + bookingID + "/status"},
		{http.MethodDelete, "/api/admin/bookings/" + bookingID},
	} {
		resp, env := doJSON(t, app, probe.method, probe.path, map[string]interface{}{"status": "confirmed"}, guestCookie)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, probe.path)
		assert.Equal(t, "Admin access required", env.Message)
	}

	// Admin listing joins in owner contact fields on both surfaces.
	for _, path := range []string{"/api/admin/bookings", "/api/booking/admin/all"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(adminC)
		listResp, err := app.Test(req, -1)
		require.NoError(t, err)
		var list struct {
			Success bool                     `json:"success"`
			Data    []map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
		listResp.Body.Close()
		require.Len(t, list.Data, 1, path)
		owner := list.Data[0]["user"].(map[string]interface{})
		assert.Equal(t, "guest@example.com", owner["email"], path)
	}

	// Owner cancels, then the admin resurrects the booking: the override
	// path has no state-machine restriction.
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/booking/"+bookingID+"/cancel", nil, guestCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodPut, "/api/admin/bookings/"+bookingID+"/status", map[string]interface{}{
		"status":           "confirmed",
		"paymentConfirmed": true,
	}, adminC)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "Booking confirmed", env.Message)
	assert.Equal(t, "confirmed", env.Data["status"])
	assert.Equal(t, true, env.Data["paymentConfirmed"])

	// The parallel /booking surface accepts the same override.
	resp, env = doJSON(t, app, http.MethodPut, "/api/booking/"+bookingID+"/status", map[string]interface{}{
		"status": "pending",
	}, adminC)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", env.Data["status"])

	// Hard delete, then the id is gone.
	resp, env = doJSON(t, app, http.MethodDelete, "/api/admin/bookings/"+bookingID, nil, adminC)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Booking deleted successfully", env.Message)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/admin/bookings/"+bookingID, nil, adminC)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
