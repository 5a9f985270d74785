package handlers

import (
	"errors"
	"fmt"
	"log"

	"villabook/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler exposes the parallel admin surface under /api/admin.
// The same operations are also reachable under /api/booking; both route
// groups existed in the original API and clients use both.
type AdminHandler struct {
	adminService *services.AdminService
	validate     *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the admin routes. All require a session and the
// admin role.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, authRequired, adminRequired fiber.Handler) {
	adminRoutes := router.Group("/admin", authRequired, adminRequired)
	adminRoutes.Get("/bookings", h.HandleListBookings)
	adminRoutes.Put("/bookings/:id/status", h.HandleSetStatus)
	adminRoutes.Delete("/bookings/:id", h.HandleDeleteBooking)
}

// HandleListBookings returns every booking with owner contact fields.
func (h *AdminHandler) HandleListBookings(c *fiber.Ctx) error {
	return handleAdminListAll(c, h.adminService)
}

// HandleSetStatus overrides a booking's status and payment flag.
func (h *AdminHandler) HandleSetStatus(c *fiber.Ctx) error {
	return handleAdminSetStatus(c, h.adminService, h.validate)
}

// HandleDeleteBooking hard-deletes a booking. Irreversible.
func (h *AdminHandler) HandleDeleteBooking(c *fiber.Ctx) error {
	bookingID := c.Params("id")

	if err := h.adminService.Delete(bookingID); err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Booking not found",
			})
		}
		log.Printf("Error deleting booking %s: %v", bookingID, err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking deleted successfully",
		"data":    fiber.Map{"id": bookingID},
	})
}

// StatusUpdateRequest represents the admin status-override request body.
type StatusUpdateRequest struct {
	Status           string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	PaymentConfirmed bool   `json:"paymentConfirmed"`
}

// handleAdminSetStatus is shared between the /booking and /admin surfaces.
func handleAdminSetStatus(c *fiber.Ctx, adminService *services.AdminService, validate *validator.Validate) error {
	bookingID := c.Params("id")

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing status update body: %v", err)
		return badRequest(c, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	booking, err := adminService.SetStatus(bookingID, req.Status, req.PaymentConfirmed)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Booking not found",
			})
		case errors.Is(err, services.ErrInvalidStatus):
			return badRequest(c, fmt.Sprintf("Invalid booking status: %s", req.Status))
		}
		log.Printf("Error updating booking %s status: %v", bookingID, err)
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Booking %s", booking.Status),
		"data":    booking,
	})
}

// handleAdminListAll is shared between the /booking and /admin surfaces.
func handleAdminListAll(c *fiber.Ctx, adminService *services.AdminService) error {
	bookings, err := adminService.ListAll()
	if err != nil {
		log.Printf("Error getting all bookings: %v", err)
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    bookings,
	})
}
