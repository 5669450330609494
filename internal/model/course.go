package model

import (
	"time"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Thumbnail   string     `gorm:"size:255" json:"thumbnail"`
	Syllabus    string     `gorm:"type:text" json:"syllabus,omitempty"`
	Modules     []Module   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Materials   []Material `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// Module is a content unit: one lesson whose video is hosted externally.
// swagger:model Module
type Module struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint       `gorm:"index;not null" json:"courseId"`
	Title     string     `gorm:"size:100;not null" json:"title"`
	Day       int        `gorm:"not null" json:"day"`
	Week      *int       `json:"week,omitempty"`
	VideoURL  string     `gorm:"column:video_url;size:255" json:"videoUrl"`
	Materials []Material `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
	CreatedAt time.Time  `json:"-"`
}

func (Module) TableName() string {
	return "course_modules"
}

// swagger:model Material
type Material struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ModuleID  uint      `gorm:"index;not null" json:"moduleId"`
	CourseID  uint      `gorm:"index;not null" json:"courseId"`
	Material  string    `gorm:"size:255;not null" json:"material"`
	ObjectKey string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"-"`
}

func (Material) TableName() string {
	return "module_materials"
}
