package models

import "time"

// Role values for User.Role.
const (
	RoleGuest = "guest"
	RoleAdmin = "admin"
)

// User represents a registered customer or the administrator.
type User struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name                 string     `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email                string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Phone                string     `json:"phone" gorm:"type:varchar(20)" validate:"required"`
	Password             string     `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	Role                 string     `json:"role" gorm:"type:varchar(10);default:guest"`
	ResetPasswordToken   string     `json:"-" gorm:"type:varchar(64)"` // sha256 hex of the raw reset token
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Sanitized returns a copy safe to include in API responses.
func (u User) Sanitized() User {
	u.Password = ""
	u.ResetPasswordToken = ""
	u.ResetPasswordExpires = nil
	return u
}
