package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVillaID is the single rentable property. The model keeps a villa
// identifier column so the schema does not need to change if a second
// property is ever added.
const DefaultVillaID = "villa-1"

// Booking status values.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking represents a single reservation attempt for the villa.
type Booking struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CheckIn          time.Time       `json:"checkIn" gorm:"not null"`
	CheckOut         time.Time       `json:"checkOut" gorm:"not null"`
	Days             int             `json:"days" gorm:"not null" validate:"gte=1"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	FullName         string          `json:"fullName" gorm:"type:varchar(100)" validate:"required"`
	Email            string          `json:"email" gorm:"type:varchar(255)" validate:"required,email"`
	Phone            string          `json:"phone" gorm:"type:varchar(20)" validate:"required"`
	Address          string          `json:"address" gorm:"type:varchar(500)" validate:"required"`
	Persons          int             `json:"persons" validate:"required,min=1,max=10"`
	VillaID          string          `json:"villaId" gorm:"index;type:varchar(36);default:villa-1"`
	UserID           string          `json:"userId" gorm:"index;type:varchar(36)"`
	Status           string          `json:"status" gorm:"type:varchar(10);default:pending"`
	PaymentConfirmed bool            `json:"paymentConfirmed" gorm:"default:false"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Owner contact fields, joined in for the admin listing only.
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Reference returns the human-friendly 6-character booking reference
// derived from the booking ID, for display and email subjects.
func (b Booking) Reference() string {
	id := b.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// DateRange is the public availability projection of a booking.
type DateRange struct {
	CheckIn  time.Time `json:"checkIn"`
	CheckOut time.Time `json:"checkOut"`
}
