package handlers

import (
	"errors"
	"log"

	"villabook/internal/middleware"
	"villabook/internal/models"
	"villabook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *services.BookingService
	adminService   *services.AdminService
	validate       *validator.Validate
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *services.BookingService, adminService *services.AdminService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		adminService:   adminService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the booking routes. The availability calendar is
// public; everything else requires a session, and the two admin routes
// additionally require the admin role.
func (h *BookingHandler) RegisterRoutes(router fiber.Router, authRequired, adminRequired fiber.Handler) {
	bookingRoutes := router.Group("/booking")
	bookingRoutes.Get("/availability", h.HandleAvailability)
	bookingRoutes.Post("/", authRequired, h.HandleCreateBooking)
	bookingRoutes.Get("/my-bookings", authRequired, h.HandleMyBookings)
	bookingRoutes.Delete("/:id/cancel", authRequired, h.HandleCancelBooking)
	bookingRoutes.Put("/:id/status", authRequired, adminRequired, h.HandleUpdateStatus)
	bookingRoutes.Get("/admin/all", authRequired, adminRequired, h.HandleGetAllBookings)
}

// HandleAvailability returns the booked date ranges for the villa so the
// client can grey out calendar dates. No authentication required.
func (h *BookingHandler) HandleAvailability(c *fiber.Ctx) error {
	ranges, err := h.bookingService.Availability(c.Query("villaId", models.DefaultVillaID))
	if err != nil {
		log.Printf("Error getting availability: %v", err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    ranges,
	})
}

// HandleCreateBooking creates a new pending booking for the caller.
func (h *BookingHandler) HandleCreateBooking(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing booking request body: %v", err)
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	booking, err := h.bookingService.Create(req, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDateConflict):
			return badRequest(c, "Dates conflict with existing booking")
		case errors.Is(err, services.ErrInvalidDates):
			return badRequest(c, "Check-out must be after check-in")
		}
		log.Printf("Error creating booking: %v", err)
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking created successfully (Pending Confirmation)",
		"data":    booking,
	})
}

// HandleMyBookings lists the caller's bookings, newest first.
func (h *BookingHandler) HandleMyBookings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	bookings, err := h.bookingService.MyBookings(user.ID)
	if err != nil {
		log.Printf("Error getting bookings for user %s: %v", user.ID, err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    bookings,
	})
}

// HandleCancelBooking cancels the caller's own booking within the
// 24-hour window.
func (h *BookingHandler) HandleCancelBooking(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	bookingID := c.Params("id")

	booking, err := h.bookingService.Cancel(bookingID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Booking not found",
			})
		case errors.Is(err, services.ErrNotBookingOwner):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Not authorized to cancel this booking",
			})
		case errors.Is(err, services.ErrCancelWindowExpired):
			return badRequest(c, "Cancellation window has expired")
		case errors.Is(err, services.ErrAlreadyCancelled):
			return badRequest(c, "Booking is already cancelled")
		}
		log.Printf("Error cancelling booking %s: %v", bookingID, err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking cancelled successfully",
		"data":    booking,
	})
}

// HandleUpdateStatus is the admin status override exposed under /booking.
func (h *BookingHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	return handleAdminSetStatus(c, h.adminService, h.validate)
}

// HandleGetAllBookings is the admin listing exposed under /booking.
func (h *BookingHandler) HandleGetAllBookings(c *fiber.Ctx) error {
	return handleAdminListAll(c, h.adminService)
}
