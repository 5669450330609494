package model

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleAdmin   UserRole = "admin"
)

// Student is the principal of both credential channels. Email is a unique
// alternate key; every access decision resolves it to ID first.
// swagger:model Student
type Student struct {
	BaseModel
	Name            string     `gorm:"size:100;not null" json:"name"`
	Email           string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone           string     `gorm:"size:20" json:"phone"`
	Password        string     `gorm:"size:255;not null" json:"-"`
	Role            UserRole   `gorm:"size:20;default:student" json:"role"`
	ProfilePicture  string     `gorm:"size:255" json:"profilePicture,omitempty"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	LastLoginMobile *time.Time `json:"lastLoginMobile,omitempty"`
}

func (Student) TableName() string {
	return "students"
}

// PublicStudent is what login endpoints return: never the secret hash.
type PublicStudent struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func (s *Student) Public() PublicStudent {
	return PublicStudent{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		Phone:          s.Phone,
		ProfilePicture: s.ProfilePicture,
	}
}
