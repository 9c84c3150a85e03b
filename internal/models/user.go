// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID       string    `gorm:"primaryKey;size:36" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	Password string    `gorm:"not null" json:"-"`
	Avatar   string    `json:"avatar"`
	Date     time.Time `gorm:"autoCreateTime" json:"date,omitzero"`
}

// BeforeCreate assigns an opaque id to new users.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
