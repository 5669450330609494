package repository

import (
	"time"

	"sankalp_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessRepository 是 user_courses 授权表，所有受控读取都要查它
type AccessRepository struct {
	DB *gorm.DB
}

func NewAccessRepository(db *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: db}
}

func (r *AccessRepository) WithTx(tx *gorm.DB) *AccessRepository {
	return &AccessRepository{DB: tx}
}

// Grant 插入授权，已存在时不做任何事；返回是否新建
func (r *AccessRepository) Grant(studentID, courseID uint, at time.Time) (bool, error) {
	grant := model.AccessGrant{StudentID: studentID, CourseID: courseID, GrantedAt: at}
	result := r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant)
	return result.RowsAffected == 1, result.Error
}

func (r *AccessRepository) Find(studentID, courseID uint) (*model.AccessGrant, error) {
	var grant model.AccessGrant
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&grant).Error
	return &grant, err
}

func (r *AccessRepository) HasAccess(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AccessGrant{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *AccessRepository) Revoke(studentID, courseID uint) (int64, error) {
	result := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).Delete(&model.AccessGrant{})
	return result.RowsAffected, result.Error
}

func (r *AccessRepository) CountByStudent(studentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.AccessGrant{}).Where("student_id = ?", studentID).Count(&count).Error
	return count, err
}

// ListCourses 返回学生已获授权的课程，最近授权的在前
func (r *AccessRepository) ListCourses(studentID uint) ([]model.CourseProgress, error) {
	var courses []model.CourseProgress
	err := r.DB.Table("user_courses AS uc").
		Select("c.id, c.title, c.description, c.thumbnail, uc.granted_at AS access_granted").
		Joins("JOIN courses c ON c.id = uc.course_id").
		Where("uc.student_id = ?", studentID).
		Order("uc.granted_at DESC").Order("c.id ASC").
		Scan(&courses).Error
	return courses, err
}
