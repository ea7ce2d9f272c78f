package models

import (
	"gorm.io/gorm"
)

// User roles
const (
	RoleClient = "user_client"
	RoleAdmin  = "admin"
)

type User struct {
	gorm.Model
	FirstName         string `gorm:"not null"`
	LastName          string `gorm:"not null"`
	Email             string `gorm:"uniqueIndex;not null"`
	PhoneNumber       string
	Password          string `gorm:"not null"`
	Promocode         string `gorm:"uniqueIndex;not null"`
	Role              string `gorm:"not null;default:'user_client'"`
	Network           string
	NetworkAddress    string
	ReferredBy        *uint `gorm:"index"`
	MembershipFeePaid bool  `gorm:"default:false"`
	TokenVersion      int   `gorm:"default:1"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
