package repositories

import (
	"time"

	"villabook/internal/models"
)

// BookingRepository defines the interface for booking data access.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(id string) (*models.Booking, error)
	// GetByUser returns the user's bookings, newest first.
	GetByUser(userID string) ([]models.Booking, error)
	// GetAll returns every booking newest first with owner contact
	// fields preloaded, for the admin listing.
	GetAll() ([]models.Booking, error)
	// ListRanges returns the date ranges of all bookings for a villa,
	// regardless of status. The availability calendar is built from this.
	ListRanges(villaID string) ([]models.DateRange, error)
	// FindOverlapping returns bookings for the villa whose interval
	// touches [checkIn, checkOut] under the inclusive-bounds conflict
	// rule: existing.checkIn <= checkOut AND existing.checkOut >= checkIn.
	FindOverlapping(villaID string, checkIn, checkOut time.Time) ([]models.Booking, error)
	Update(booking *models.Booking) error
	Delete(id string) error
}
