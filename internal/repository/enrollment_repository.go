package repository

import (
	"time"

	"sankalp_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

// FindOpen 返回学生在该课程下仍处于待审或已通过的记录
func (r *EnrollmentRepository) FindOpen(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ? AND status IN ?",
		studentID, courseID, []model.EnrollmentStatus{model.EnrollmentPending, model.EnrollmentApproved}).
		Order("id DESC").
		First(&e).Error
	return &e, err
}

func (r *EnrollmentRepository) Latest(studentID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("id DESC").
		First(&e).Error
	return &e, err
}

// FindPendingForUpdate 按报名时留存的邮箱定位待审记录并加行锁
func (r *EnrollmentRepository) FindPendingForUpdate(email string, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("email = ? AND course_id = ? AND status = ?", NormalizeEmail(email), courseID, model.EnrollmentPending).
		Order("id ASC").
		First(&e).Error
	return &e, err
}

// Transition 仅当记录仍处于 from 状态时才更新，返回是否命中
func (r *EnrollmentRepository) Transition(id uint, from, to model.EnrollmentStatus, reason string, at time.Time) (bool, error) {
	fields := map[string]interface{}{
		"status":     to,
		"decided_at": at,
		"updated_at": at,
	}
	if reason != "" {
		fields["reject_reason"] = reason
	}
	result := r.DB.Model(&model.Enrollment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return result.RowsAffected == 1, result.Error
}

// CloseApproved 把学生在该课程下已通过的记录转为已拒绝，撤销授权时使用
func (r *EnrollmentRepository) CloseApproved(studentID, courseID uint, reason string, at time.Time) (int64, error) {
	result := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, model.EnrollmentApproved).
		Updates(map[string]interface{}{
			"status":        model.EnrollmentRejected,
			"reject_reason": reason,
			"decided_at":    at,
			"updated_at":    at,
		})
	return result.RowsAffected, result.Error
}

func (r *EnrollmentRepository) List(status *model.EnrollmentStatus) ([]model.Enrollment, error) {
	var list []model.Enrollment
	q := r.DB.Order("created_at DESC").Order("id DESC")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) CountByStatus(studentID, courseID uint, status model.EnrollmentStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, status).
		Count(&count).Error
	return count, err
}
