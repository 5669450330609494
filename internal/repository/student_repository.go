package repository

import (
	"strings"
	"time"

	"sankalp_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) WithTx(tx *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: tx}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *StudentRepository) Create(student *model.Student) error {
	student.Email = NormalizeEmail(student.Email)
	return r.DB.Create(student).Error
}

func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, id).Error
	return &student, err
}

// FindByIDForUpdate 在事务内锁定学生行，串行化同一学生的并发报名
func (r *StudentRepository) FindByIDForUpdate(id uint) (*model.Student, error) {
	var student model.Student
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&student, id).Error
	return &student, err
}

func (r *StudentRepository) FindByEmail(email string) (*model.Student, error) {
	var student model.Student
	err := r.DB.Where("email = ?", NormalizeEmail(email)).First(&student).Error
	return &student, err
}

func (r *StudentRepository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Student{}).
		Where("email = ? AND id <> ?", NormalizeEmail(email), excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	return r.DB.Model(&model.Student{}).Where("id = ?", id).Updates(fields).Error
}

func (r *StudentRepository) UpdatePassword(id uint, hash string) error {
	return r.DB.Model(&model.Student{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *StudentRepository) TouchLastLogin(id uint, channel string, at time.Time) error {
	column := "last_login"
	if channel == "mobile" {
		column = "last_login_mobile"
	}
	return r.DB.Model(&model.Student{}).Where("id = ?", id).Update(column, at).Error
}
