package model

import (
	"time"

	"gorm.io/datatypes"
)

// VideoProgress is unique per (StudentID, ModuleID).
type VideoProgress struct {
	ID                  uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID           uint      `gorm:"column:user_id;uniqueIndex:idx_progress_user_module;not null" json:"userId"`
	Student             *Student  `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	ModuleID            uint      `gorm:"uniqueIndex:idx_progress_user_module;not null" json:"moduleId"`
	Module              *Module   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID            uint      `gorm:"index;not null" json:"courseId"`
	Course              *Course   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	WatchedDuration     float64   `gorm:"not null;default:0" json:"watchedDuration"`
	TotalDuration       float64   `gorm:"not null;default:0" json:"totalDuration"`
	WatchedPercentage   float64   `gorm:"not null;default:0" json:"watchedPercentage"`
	Completed           bool      `gorm:"not null;default:false" json:"completed"`
	LastWatchedPosition float64   `gorm:"not null;default:0" json:"lastWatchedPosition"`
	LastWatched         time.Time `gorm:"index" json:"lastWatched"`
}

func (VideoProgress) TableName() string {
	return "video_progress"
}

// SyncEvent is the audit trail of offline items a device has pushed.
type SyncEvent struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uint           `gorm:"column:user_id;index;not null" json:"userId"`
	Student   *Student       `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	DeviceID  string         `gorm:"size:128;index" json:"deviceId"`
	ItemID    string         `gorm:"size:128" json:"itemId"`
	Action    string         `gorm:"size:50" json:"action"`
	Payload   datatypes.JSON `json:"payload"`
	Success   bool           `json:"success"`
	Error     string         `gorm:"size:255" json:"error,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (SyncEvent) TableName() string {
	return "sync_events"
}
