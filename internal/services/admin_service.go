package services

import (
	"errors"
	"fmt"
	"log"

	"villabook/internal/models"
	"villabook/internal/repositories"
)

// ErrInvalidStatus is returned when an admin submits an unknown status value.
var ErrInvalidStatus = errors.New("invalid booking status")

// AdminService handles the privileged override surface: it bypasses the
// ownership and cancellation-window checks the owner path enforces.
type AdminService struct {
	bookingRepo repositories.BookingRepository
	cache       AvailabilityCache
}

// NewAdminService creates a new AdminService.
func NewAdminService(bookingRepo repositories.BookingRepository, cache AvailabilityCache) *AdminService {
	return &AdminService{
		bookingRepo: bookingRepo,
		cache:       cache,
	}
}

// ListAll returns every booking, newest first, with owner contact fields.
func (s *AdminService) ListAll() ([]models.Booking, error) {
	return s.bookingRepo.GetAll()
}

// SetStatus unconditionally overrides a booking's status and payment flag.
// No state-machine validation: an admin may move any status to any other,
// including resurrecting a cancelled booking. This is an override tool.
func (s *AdminService) SetStatus(bookingID, status string, paymentConfirmed bool) (*models.Booking, error) {
	validStatuses := map[string]bool{
		models.StatusPending:   true,
		models.StatusConfirmed: true,
		models.StatusCancelled: true,
	}
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	booking.Status = status
	booking.PaymentConfirmed = paymentConfirmed
	if err := s.bookingRepo.Update(booking); err != nil {
		return nil, fmt.Errorf("failed to update booking %s status: %w", bookingID, err)
	}
	log.Printf("Admin set booking %s to status=%s paymentConfirmed=%t", booking.Reference(), status, paymentConfirmed)
	return booking, nil
}

// Delete permanently removes a booking. Irreversible.
func (s *AdminService) Delete(bookingID string) error {
	err := s.bookingRepo.Delete(bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return err
	}
	s.invalidateAvailability()
	return nil
}

func (s *AdminService) invalidateAvailability() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(bgContext, "availability:"+models.DefaultVillaID); err != nil {
		log.Printf("Warning: failed to invalidate availability cache: %v", err)
	}
}
