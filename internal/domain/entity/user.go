package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User represents a staff member who can sign in and record sales
type User struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	Email     string        `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string        `gorm:"size:255;not null" json:"-"`
	Role      enum.UserRole `gorm:"size:20;not null" json:"role"`
	IsActive  bool          `gorm:"not null" json:"is_active"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// HasRole checks if the user has one of the given roles
func (u *User) HasRole(roles ...enum.UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
