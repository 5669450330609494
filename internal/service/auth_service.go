package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateProfileRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	ProfilePicture string `json:"profilePicture"`
}

// pendingRegistration 随注册验证码暂存，只保存密码哈希
type pendingRegistration struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"passwordHash"`
}

type AuthService struct {
	StudentRepo *repository.StudentRepository
	OTP         *OTPService
	Mail        *MailService
	Cfg         *config.Config
	now         func() time.Time
}

func NewAuthService(studentRepo *repository.StudentRepository, otp *OTPService, mail *MailService, cfg *config.Config) *AuthService {
	return &AuthService{
		StudentRepo: studentRepo,
		OTP:         otp,
		Mail:        mail,
		Cfg:         cfg,
		now:         time.Now,
	}
}

func (s *AuthService) StartRegistration(ctx context.Context, req RegisterRequest) error {
	email := repository.NormalizeEmail(req.Email)
	_, err := s.StudentRepo.FindByEmail(email)
	if err == nil {
		return util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	code, err := s.OTP.Issue(ctx, OTPRegister, email, pendingRegistration{
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.Mail.SendOTP(ctx, email, req.Name, code, OTPRegister); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyRegistration(ctx context.Context, email, code string) (*model.Student, error) {
	var pending pendingRegistration
	if err := s.OTP.Verify(ctx, OTPRegister, email, code, &pending); err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:     pending.Name,
		Email:    pending.Email,
		Phone:    pending.Phone,
		Password: pending.PasswordHash,
		Role:     model.RoleStudent,
	}
	if err := s.StudentRepo.Create(student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, err
	}

	if err := s.OTP.Consume(ctx, OTPRegister, email); err != nil {
		logger.Log.Warn("Failed to delete registration OTP", zap.String("email", email), zap.Error(err))
	}
	return student, nil
}

func (s *AuthService) Login(email, password string) (*model.Student, string, error) {
	student, err := s.StudentRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", util.ErrInvalidCredentials
	} else if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(password)); err != nil {
		return nil, "", util.ErrInvalidCredentials
	}

	now := s.now()
	token, err := util.GenerateJWT(student, s.Cfg.JWT.Secret, now, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, "", err
	}

	if err := s.StudentRepo.TouchLastLogin(student.ID, util.ChannelWeb, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("userId", student.ID), zap.Error(err))
	}
	return student, token, nil
}

// Authenticate 校验 Web 端 Bearer 令牌，无服务端会话
func (s *AuthService) Authenticate(token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret, s.now)
	if err != nil {
		return nil, util.ErrInvalidToken
	}
	if claims.Channel != util.ChannelWeb || claims.TokenType != "" {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	student, err := s.StudentRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrStudentNotFound
	} else if err != nil {
		return err
	}

	code, err := s.OTP.Issue(ctx, OTPReset, student.Email, nil)
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.Mail.SendOTP(ctx, student.Email, student.Name, code, OTPReset); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

func (s *AuthService) VerifyResetOTP(ctx context.Context, email, code string) error {
	return s.OTP.Verify(ctx, OTPReset, email, code, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string) error {
	if len(password) < 6 {
		return util.NewValidationError("Password must be at least 6 characters")
	}
	if err := s.OTP.Verify(ctx, OTPReset, email, code, nil); err != nil {
		return err
	}

	student, err := s.StudentRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrStudentNotFound
	} else if err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.StudentRepo.UpdatePassword(student.ID, string(hashedPassword)); err != nil {
		return err
	}

	if err := s.OTP.Consume(ctx, OTPReset, email); err != nil {
		logger.Log.Warn("Failed to delete reset OTP", zap.String("email", email), zap.Error(err))
	}
	if err := s.Mail.SendPasswordReset(ctx, student.Email, student.Name); err != nil {
		logger.Log.Warn("Failed to send password reset confirmation", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// UpdateProfile 修改邮箱不影响数字 ID，授权等关系都以 ID 关联
func (s *AuthService) UpdateProfile(studentID uint, req UpdateProfileRequest) (*model.Student, error) {
	student, err := s.StudentRepo.FindByID(studentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotFound
	} else if err != nil {
		return nil, err
	}

	email := repository.NormalizeEmail(req.Email)
	if email != student.Email {
		taken, err := s.StudentRepo.EmailTaken(email, student.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, util.ErrEmailInUse
		}
	}

	fields := map[string]interface{}{
		"name":  req.Name,
		"email": email,
		"phone": req.Phone,
	}
	if req.ProfilePicture != "" {
		fields["profile_picture"] = req.ProfilePicture
	}
	if err := s.StudentRepo.UpdateFields(student.ID, fields); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailInUse
		}
		return nil, err
	}

	return s.StudentRepo.FindByID(student.ID)
}

func (s *AuthService) Contact(ctx context.Context, form ContactForm) error {
	return s.Mail.SendContact(ctx, form)
}
