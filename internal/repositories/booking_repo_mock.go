package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"villabook/internal/models"

	"github.com/google/uuid"
)

// MockBookingRepository is an in-memory implementation of BookingRepository.
type MockBookingRepository struct {
	bookings map[string]models.Booking
	mu       sync.RWMutex
}

// NewMockBookingRepository creates a new instance of MockBookingRepository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]models.Booking),
	}
}

// Create adds a new booking.
func (r *MockBookingRepository) Create(booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = *booking
	return nil
}

// GetByID returns a booking by its ID.
func (r *MockBookingRepository) GetByID(id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking with ID %s: %w", id, ErrNotFound)
	}
	return &booking, nil
}

// GetByUser returns a user's bookings, newest first.
func (r *MockBookingRepository) GetByUser(userID string) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			list = append(list, b)
		}
	}
	sortNewestFirst(list)
	return list, nil
}

// GetAll returns every booking, newest first.
func (r *MockBookingRepository) GetAll() ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		list = append(list, b)
	}
	sortNewestFirst(list)
	return list, nil
}

// ListRanges returns the date ranges of all bookings for a villa.
func (r *MockBookingRepository) ListRanges(villaID string) ([]models.DateRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ranges []models.DateRange
	for _, b := range r.bookings {
		if b.VillaID == villaID {
			ranges = append(ranges, models.DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		}
	}
	return ranges, nil
}

// FindOverlapping applies the inclusive-bounds conflict test.
func (r *MockBookingRepository) FindOverlapping(villaID string, checkIn, checkOut time.Time) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []models.Booking
	for _, b := range r.bookings {
		if b.VillaID != villaID {
			continue
		}
		if !b.CheckIn.After(checkOut) && !b.CheckOut.Before(checkIn) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

// Update replaces an existing booking.
func (r *MockBookingRepository) Update(booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[booking.ID]; !ok {
		return fmt.Errorf("booking with ID %s: %w", booking.ID, ErrNotFound)
	}
	booking.UpdatedAt = time.Now()
	r.bookings[booking.ID] = *booking
	return nil
}

// Delete removes a booking.
func (r *MockBookingRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return fmt.Errorf("booking with ID %s: %w", id, ErrNotFound)
	}
	delete(r.bookings, id)
	return nil
}

func sortNewestFirst(list []models.Booking) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
