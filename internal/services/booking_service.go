package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"villabook/internal/models"
	"villabook/internal/repositories"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by the booking service. Handlers map these to
// HTTP statuses and envelope messages.
var (
	ErrInvalidDates        = errors.New("check-out must be after check-in")
	ErrDateConflict        = errors.New("dates conflict with existing booking")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrNotBookingOwner     = errors.New("not authorized to cancel this booking")
	ErrCancelWindowExpired = errors.New("cancellation window has expired")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
)

// CancelWindow is how long after creation the owner may self-cancel.
const CancelWindow = 24 * time.Hour

const availabilityCacheTTL = 5 * time.Minute

// EventPublisher publishes booking events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// AvailabilityCache caches the availability calendar.
type AvailabilityCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

var bgContext = context.Background()

// BookingRequest carries the guest-supplied fields of a new booking.
// The price is computed server-side from the rate table; any amount the
// client sends is ignored.
type BookingRequest struct {
	CheckIn  string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Days     int    `json:"days"`
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Persons  int    `json:"persons" validate:"required,min=1,max=10"`
	VillaID  string `json:"villaId"`
}

// BookingService handles the booking lifecycle: conflict detection, price
// computation and the time-boxed owner cancellation.
type BookingService struct {
	bookingRepo repositories.BookingRepository
	publisher   EventPublisher
	cache       AvailabilityCache
	weekdayRate decimal.Decimal
	weekendRate decimal.Decimal
}

// NewBookingService creates a new BookingService. The publisher and cache
// may be nil; both are best-effort collaborators.
func NewBookingService(bookingRepo repositories.BookingRepository, publisher EventPublisher, cache AvailabilityCache, weekdayRate, weekendRate decimal.Decimal) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		publisher:   publisher,
		cache:       cache,
		weekdayRate: weekdayRate,
		weekendRate: weekendRate,
	}
}

// Availability returns the date ranges of all bookings for the villa so a
// client can grey out calendar dates. No status filter is applied: this
// mirrors the conflict rule in Create, which also ignores status, so the
// calendar never shows a date as free that Create would reject.
func (s *BookingService) Availability(villaID string) ([]models.DateRange, error) {
	if villaID == "" {
		villaID = models.DefaultVillaID
	}
	cacheKey := "availability:" + villaID

	if s.cache != nil {
		if cached, err := s.cache.Get(bgContext, cacheKey); err == nil && cached != "" {
			var ranges []models.DateRange
			if err := json.Unmarshal([]byte(cached), &ranges); err == nil {
				return ranges, nil
			}
		}
	}

	ranges, err := s.bookingRepo.ListRanges(villaID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if body, err := json.Marshal(ranges); err == nil {
			if err := s.cache.Set(bgContext, cacheKey, string(body), availabilityCacheTTL); err != nil {
				log.Printf("Warning: failed to cache availability for %s: %v", villaID, err)
			}
		}
	}
	return ranges, nil
}

// Create validates the requested date range against existing bookings and
// persists a new pending booking. The conflict test uses inclusive bounds
// and ignores booking status: a cancelled booking still blocks its dates.
//
// The read-then-write sequence has no transactional guarantee; two
// concurrent calls for overlapping dates can both pass the conflict check.
// Accepted for a single-property booking flow.
func (s *BookingService) Create(req BookingRequest, ownerID string) (*models.Booking, error) {
	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date %q: %w", req.CheckIn, ErrInvalidDates)
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check-out date %q: %w", req.CheckOut, ErrInvalidDates)
	}
	nights := NightCount(checkIn, checkOut)
	if nights < 1 {
		return nil, ErrInvalidDates
	}
	if req.Days != 0 && req.Days != nights {
		return nil, fmt.Errorf("days field does not match the date range: %w", ErrInvalidDates)
	}

	villaID := req.VillaID
	if villaID == "" {
		villaID = models.DefaultVillaID
	}

	existing, err := s.bookingRepo.FindOverlapping(villaID, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("conflict check failed: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrDateConflict
	}

	booking := &models.Booking{
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Days:             nights,
		Price:            ComputePrice(checkIn, checkOut, s.weekdayRate, s.weekendRate),
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		Persons:          req.Persons,
		VillaID:          villaID,
		UserID:           ownerID,
		Status:           models.StatusPending,
		PaymentConfirmed: false,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.invalidateAvailability(villaID)
	s.publishEvent(EventBookingCreated, booking)
	return booking, nil
}

// Cancel lets the booking's owner cancel within the 24-hour window.
// Rules are checked in order: existence, ownership, window, current status.
// A second call on a cancelled booking returns ErrAlreadyCancelled, which
// callers should treat as "already in the desired terminal state".
func (s *BookingService) Cancel(bookingID, requesterID string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != requesterID {
		return nil, ErrNotBookingOwner
	}
	if time.Since(booking.CreatedAt) > CancelWindow {
		return nil, ErrCancelWindowExpired
	}
	if booking.Status == models.StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	booking.Status = models.StatusCancelled
	booking.PaymentConfirmed = false
	if err := s.bookingRepo.Update(booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking %s: %w", bookingID, err)
	}

	s.invalidateAvailability(booking.VillaID)
	s.publishEvent(EventBookingCancelled, booking)
	return booking, nil
}

// MyBookings returns the caller's bookings, newest first.
func (s *BookingService) MyBookings(userID string) ([]models.Booking, error) {
	return s.bookingRepo.GetByUser(userID)
}

// publishEvent hands the booking to the notification pipeline. Publishing
// is fire-and-forget: failures are logged and never surfaced to the caller,
// since booking success must not depend on email delivery.
func (s *BookingService) publishEvent(event string, booking *models.Booking) {
	if s.publisher == nil {
		log.Println("Event publisher is not initialized. Skipping booking event.")
		return
	}
	body, err := json.Marshal(BookingEvent{Event: event, Booking: *booking})
	if err != nil {
		log.Printf("Failed to marshal %s event for booking %s: %v", event, booking.ID, err)
		return
	}
	if err := s.publisher.Publish("", "booking_events", body); err != nil {
		log.Printf("Warning: failed to publish %s event for booking %s: %v", event, booking.ID, err)
	} else {
		log.Printf("Published %s event for booking %s", event, booking.Reference())
	}
}

func (s *BookingService) invalidateAvailability(villaID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(bgContext, "availability:"+villaID); err != nil {
		log.Printf("Warning: failed to invalidate availability cache for %s: %v", villaID, err)
	}
}

// Booking event names carried on the message queue.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is the JSON payload published for each booking mutation.
type BookingEvent struct {
	Event   string         `json:"event"`
	Booking models.Booking `json:"booking"`
}
