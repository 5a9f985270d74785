package repositories

import (
	"fmt"
	"time"

	"villabook/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBookingRepository is a GORM implementation of BookingRepository.
type GORMBookingRepository struct {
	db *gorm.DB
}

// NewGORMBookingRepository creates a new instance of GORMBookingRepository.
func NewGORMBookingRepository(db *gorm.DB) *GORMBookingRepository {
	return &GORMBookingRepository{
		db: db,
	}
}

// Create creates a new booking in the database.
func (r *GORMBookingRepository) Create(booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if err := r.db.Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID.
func (r *GORMBookingRepository) GetByID(id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.First(&booking, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("booking with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking by ID %s: %w", id, err)
	}
	return &booking, nil
}

// GetByUser retrieves all bookings owned by a user, newest first.
func (r *GORMBookingRepository) GetByUser(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}

// GetAll retrieves every booking newest first with owner contact fields.
func (r *GORMBookingRepository) GetAll() ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email", "phone")
	}).Order("created_at DESC").Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all bookings: %w", err)
	}
	return bookings, nil
}

// ListRanges retrieves the date ranges of all bookings for a villa.
// No status filter is applied; see the booking service for why.
func (r *GORMBookingRepository) ListRanges(villaID string) ([]models.DateRange, error) {
	var ranges []models.DateRange
	err := r.db.Model(&models.Booking{}).
		Where("villa_id = ?", villaID).
		Select("check_in", "check_out").
		Find(&ranges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booking ranges for villa %s: %w", villaID, err)
	}
	return ranges, nil
}

// FindOverlapping applies the inclusive-bounds conflict test used by
// booking creation. Status is deliberately not filtered here.
func (r *GORMBookingRepository) FindOverlapping(villaID string, checkIn, checkOut time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.
		Where("villa_id = ? AND check_in <= ? AND check_out >= ?", villaID, checkOut, checkIn).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings for villa %s: %w", villaID, err)
	}
	return bookings, nil
}

// Update saves all fields of an existing booking.
func (r *GORMBookingRepository) Update(booking *models.Booking) error {
	if err := r.db.Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}
	return nil
}

// Delete removes a booking permanently.
func (r *GORMBookingRepository) Delete(id string) error {
	res := r.db.Delete(&models.Booking{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("booking with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
