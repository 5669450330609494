package model

import (
	"time"
)

type EnrollmentStatus int

const (
	// EnrollmentNone is only ever returned by status queries, never stored.
	EnrollmentNone     EnrollmentStatus = -1
	EnrollmentPending  EnrollmentStatus = 0
	EnrollmentApproved EnrollmentStatus = 1
	EnrollmentRejected EnrollmentStatus = 2
)

func (s EnrollmentStatus) String() string {
	switch s {
	case EnrollmentPending:
		return "pending"
	case EnrollmentApproved:
		return "approved"
	case EnrollmentRejected:
		return "rejected"
	default:
		return "none"
	}
}

// Enrollment is a student's request, with payment evidence, to be granted a course.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID     uint             `gorm:"index:idx_enrollment_student_course;not null" json:"studentId"`
	Student       *Student         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID      uint             `gorm:"index:idx_enrollment_student_course;not null" json:"courseId"`
	Course        *Course          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name          string           `gorm:"size:100;not null" json:"name"`
	Email         string           `gorm:"size:100;index;not null" json:"email"`
	TransactionID string           `gorm:"column:transaction_id;size:100;not null" json:"transactionId"`
	CourseName    string           `gorm:"size:100;not null" json:"courseName"`
	Amount        float64          `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        EnrollmentStatus `gorm:"default:0;not null" json:"status"`
	RejectReason  string           `gorm:"size:255" json:"rejectReason,omitempty"`
	DecidedAt     *time.Time       `json:"decidedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "pending"
}

// AccessGrant is the durable student/course relation consulted by every gated read.
type AccessGrant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID uint      `gorm:"uniqueIndex:idx_grant_student_course;not null" json:"studentId"`
	Student   *Student  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID  uint      `gorm:"uniqueIndex:idx_grant_student_course;not null" json:"courseId"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	GrantedAt time.Time `gorm:"not null" json:"accessGranted"`
}

func (AccessGrant) TableName() string {
	return "user_courses"
}
