package repositories

import (
	"errors"
	"time"

	"villabook/internal/models"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetByResetToken(hashedToken string, now time.Time) (*models.User, error)
	Update(user *models.User) error
}
