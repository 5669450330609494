package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"
	"sankalp_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SubmitEnrollmentRequest struct {
	Name          string  `json:"name" binding:"required"`
	Email         string  `json:"email" binding:"required,email"`
	TransactionID string  `json:"transactionId" binding:"required"`
	CourseName    string  `json:"courseName" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	CourseID      uint    `json:"courseId" binding:"required"`
}

// EnrollmentService 报名状态机：absent -> pending(0) -> approved(1) | rejected(2)
type EnrollmentService struct {
	DB             *gorm.DB
	StudentRepo    *repository.StudentRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	AccessRepo     *repository.AccessRepository
	Mail           *MailService
	now            func() time.Time
	// async 执行审批后的通知，测试中替换为同步执行
	async func(func())
}

func NewEnrollmentService(
	db *gorm.DB,
	studentRepo *repository.StudentRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	accessRepo *repository.AccessRepository,
	mail *MailService,
) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		StudentRepo:    studentRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		AccessRepo:     accessRepo,
		Mail:           mail,
		now:            time.Now,
		async:          func(f func()) { go f() },
	}
}

// Submit 在锁定学生行的事务内检查是否已有待审或已通过的记录
func (s *EnrollmentService) Submit(studentID uint, req SubmitEnrollmentRequest) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(req.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	} else if err != nil {
		return nil, err
	}

	var enrollment *model.Enrollment
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		student, err := s.StudentRepo.WithTx(tx).FindByIDForUpdate(studentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStudentNotFound
		} else if err != nil {
			return err
		}

		enrollments := s.EnrollmentRepo.WithTx(tx)
		open, err := enrollments.FindOpen(student.ID, course.ID)
		if err == nil {
			if open.Status == model.EnrollmentApproved {
				return util.ErrEnrollmentApproved
			}
			return util.ErrEnrollmentPending
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		courseName := strings.TrimSpace(req.CourseName)
		if courseName == "" {
			courseName = course.Title
		}
		enrollment = &model.Enrollment{
			StudentID:     student.ID,
			CourseID:      course.ID,
			Name:          req.Name,
			Email:         student.Email,
			TransactionID: strings.TrimSpace(req.TransactionID),
			CourseName:    courseName,
			Amount:        req.Amount,
			Status:        model.EnrollmentPending,
		}
		return enrollments.Create(enrollment)
	})
	if err != nil {
		return nil, err
	}

	monitoring.EnrollmentTransitions.WithLabelValues(model.EnrollmentPending.String()).Inc()
	return enrollment, nil
}

// Status 返回学生在课程下最新记录的状态，无记录为 -1
func (s *EnrollmentService) Status(studentID, courseID uint) (model.EnrollmentStatus, error) {
	latest, err := s.EnrollmentRepo.Latest(studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.EnrollmentNone, nil
	} else if err != nil {
		return model.EnrollmentNone, err
	}
	return latest.Status, nil
}

func (s *EnrollmentService) List(status *model.EnrollmentStatus) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.List(status)
}

// Approve 状态翻转与授权写入在同一事务提交，邮件通知在提交后异步发送
func (s *EnrollmentService) Approve(email string, courseID uint) (*model.Enrollment, error) {
	var (
		enrollment *model.Enrollment
		student    *model.Student
	)
	now := s.now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollments := s.EnrollmentRepo.WithTx(tx)
		var err error
		enrollment, err = enrollments.FindPendingForUpdate(email, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPendingNotFound
		} else if err != nil {
			return err
		}

		student, err = s.StudentRepo.WithTx(tx).FindByID(enrollment.StudentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrStudentNotFound
		} else if err != nil {
			return err
		}

		ok, err := enrollments.Transition(enrollment.ID, model.EnrollmentPending, model.EnrollmentApproved, "", now)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrPendingNotFound
		}

		if _, err := s.AccessRepo.WithTx(tx).Grant(student.ID, courseID, now); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = model.EnrollmentApproved
	enrollment.DecidedAt = &now
	monitoring.EnrollmentTransitions.WithLabelValues(model.EnrollmentApproved.String()).Inc()

	to, name, course := student.Email, student.Name, enrollment.CourseName
	s.notify("approved", to, func(ctx context.Context) error {
		return s.Mail.SendEnrollmentApproved(ctx, to, name, course)
	})
	return enrollment, nil
}

func (s *EnrollmentService) Reject(email string, courseID uint, reason string) (*model.Enrollment, error) {
	var enrollment *model.Enrollment
	now := s.now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollments := s.EnrollmentRepo.WithTx(tx)
		var err error
		enrollment, err = enrollments.FindPendingForUpdate(email, courseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPendingNotFound
		} else if err != nil {
			return err
		}

		ok, err := enrollments.Transition(enrollment.ID, model.EnrollmentPending, model.EnrollmentRejected, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrPendingNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enrollment.Status = model.EnrollmentRejected
	enrollment.RejectReason = reason
	enrollment.DecidedAt = &now
	monitoring.EnrollmentTransitions.WithLabelValues(model.EnrollmentRejected.String()).Inc()

	to, name, course := enrollment.Email, enrollment.Name, enrollment.CourseName
	s.notify("rejected", to, func(ctx context.Context) error {
		return s.Mail.SendEnrollmentRejected(ctx, to, name, course, reason)
	})
	return enrollment, nil
}

// notify 通知失败只记录日志，不影响已提交的状态
func (s *EnrollmentService) notify(kind, to string, send func(ctx context.Context) error) {
	if s.Mail == nil {
		return
	}
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			logger.Log.Error("Failed to send enrollment notification",
				zap.String("kind", kind),
				zap.String("email", to),
				zap.Error(err),
			)
		}
	})
}
