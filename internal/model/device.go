package model

import (
	"time"
)

// Device is keyed by (StudentID, DeviceID); a re-login from the same device
// updates its metadata in place.
type Device struct {
	BaseModel
	StudentID  uint       `gorm:"column:user_id;uniqueIndex:idx_user_device;not null" json:"userId"`
	Student    *Student   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	DeviceID   string     `gorm:"size:128;uniqueIndex:idx_user_device;not null" json:"deviceId"`
	DeviceType string     `gorm:"size:20;not null" json:"deviceType"`
	DeviceName string     `gorm:"size:100" json:"deviceName"`
	PushToken  string     `gorm:"size:255" json:"-"`
	AppVersion string     `gorm:"size:20" json:"appVersion"`
	OSVersion  string     `gorm:"column:os_version;size:20" json:"osVersion"`
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	LastActive time.Time  `json:"lastActive"`
	LastSync   *time.Time `json:"lastSync,omitempty"`
}

func (Device) TableName() string {
	return "user_devices"
}

// MobileSession holds one session credential plus its refresh credential per
// login. Only SHA-256 digests of the tokens are stored.
type MobileSession struct {
	BaseModel
	StudentID        uint      `gorm:"column:user_id;index;not null"`
	Student          *Student  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
	DeviceID         string    `gorm:"size:128;index;not null"`
	SessionTokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	RefreshTokenHash string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt        time.Time `gorm:"not null"`
	RefreshExpiresAt time.Time `gorm:"not null"`
	IsActive         bool      `gorm:"default:true;not null"`
}

func (MobileSession) TableName() string {
	return "mobile_sessions"
}
