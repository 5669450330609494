package service

import (
	"errors"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"

	"gorm.io/gorm"
)

type AccessStatus struct {
	HasAccess   bool       `json:"hasAccess"`
	GrantedDate *time.Time `json:"grantedDate,omitempty"`
}

// AccessService 授权判断一律落到学生 ID 上，邮箱只用于定位
type AccessService struct {
	DB             *gorm.DB
	StudentRepo    *repository.StudentRepository
	AccessRepo     *repository.AccessRepository
	EnrollmentRepo *repository.EnrollmentRepository
	now            func() time.Time
}

func NewAccessService(
	db *gorm.DB,
	studentRepo *repository.StudentRepository,
	accessRepo *repository.AccessRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *AccessService {
	return &AccessService{
		DB:             db,
		StudentRepo:    studentRepo,
		AccessRepo:     accessRepo,
		EnrollmentRepo: enrollmentRepo,
		now:            time.Now,
	}
}

// Principal 把请求体里的邮箱解析为学生。
// 普通学生按登录令牌里的 ID 取当前邮箱比对，令牌里的邮箱在改邮箱后会过时，不参与判断；
// 管理员可以指定任意学生，邮箱不存在时返回 ErrStudentNotFound。
func (s *AccessService) Principal(userID uint, admin bool, email string) (*model.Student, error) {
	if admin {
		student, err := s.StudentRepo.FindByEmail(email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrStudentNotFound
		}
		return student, err
	}

	student, err := s.StudentRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.Deny(util.ReasonUnknownPrincipal, nil)
	} else if err != nil {
		return nil, err
	}
	if student.Email != repository.NormalizeEmail(email) {
		return nil, util.Deny(util.ReasonPrincipalMismatch, nil)
	}
	return student, nil
}

func (s *AccessService) HasAccess(studentID, courseID uint) (bool, error) {
	return s.AccessRepo.HasAccess(studentID, courseID)
}

func (s *AccessService) CheckAccess(studentID, courseID uint) (*AccessStatus, error) {
	grant, err := s.AccessRepo.Find(studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AccessStatus{HasAccess: false}, nil
	} else if err != nil {
		return nil, err
	}
	granted := grant.GrantedAt
	return &AccessStatus{HasAccess: true, GrantedDate: &granted}, nil
}

// Revoke 管理员撤销授权，已签发的视频令牌在校验时随之失效。
// 对应的已通过报名在同一事务内转为已拒绝，学生可以重新报名。
func (s *AccessService) Revoke(email string, courseID uint) error {
	student, err := s.StudentRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrStudentNotFound
	} else if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		n, err := s.AccessRepo.WithTx(tx).Revoke(student.ID, courseID)
		if err != nil {
			return err
		}
		if n == 0 {
			return util.ErrNotFound
		}
		_, err = s.EnrollmentRepo.WithTx(tx).CloseApproved(student.ID, courseID, util.RevokedReason, s.now())
		return err
	})
}
