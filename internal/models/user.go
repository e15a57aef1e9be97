package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Email    string   `json:"email" gorm:"not null;uniqueIndex;size:255" validate:"required,email"`
	Password string   `json:"-" gorm:"not null"`
	FullName string   `json:"fullName" gorm:"size:255"`
	Role     UserRole `json:"role" gorm:"not null;default:user;size:20" validate:"omitempty,user_role"`
	IsActive bool     `json:"isActive" gorm:"not null"`

	// Subject of the Casdoor account that was linked to this user on first SSO login
	ExternalID *string `json:"-" gorm:"uniqueIndex;size:255"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the public projection returned by auth endpoints
type UserSummary struct {
	ID       uint     `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}
