package service

import (
	"errors"
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

type MobileLoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	DeviceID   string `json:"deviceId" binding:"required"`
	DeviceType string `json:"deviceType" binding:"required"`
	DeviceName string `json:"deviceName"`
	PushToken  string `json:"pushToken"`
	AppVersion string `json:"appVersion"`
	OSVersion  string `json:"osVersion"`
}

type MobileTokens struct {
	SessionToken     string     `json:"sessionToken"`
	RefreshToken     string     `json:"refreshToken,omitempty"`
	ExpiresAt        time.Time  `json:"expiresAt"`
	RefreshExpiresAt *time.Time `json:"refreshExpiresAt,omitempty"`
}

type MobileLoginResult struct {
	User   model.PublicStudent `json:"user"`
	Tokens MobileTokens        `json:"tokens"`
}

// MobileAuthService 移动端会话：短期会话令牌 + 长期刷新令牌，服务端只存哈希
type MobileAuthService struct {
	DB          *gorm.DB
	StudentRepo *repository.StudentRepository
	SessionRepo *repository.SessionRepository
	Cfg         *config.Config
	now         func() time.Time
}

func NewMobileAuthService(db *gorm.DB, studentRepo *repository.StudentRepository, sessionRepo *repository.SessionRepository, cfg *config.Config) *MobileAuthService {
	return &MobileAuthService{
		DB:          db,
		StudentRepo: studentRepo,
		SessionRepo: sessionRepo,
		Cfg:         cfg,
		now:         time.Now,
	}
}

func (s *MobileAuthService) Login(req MobileLoginRequest) (*MobileLoginResult, error) {
	student, err := s.StudentRepo.FindByEmail(req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(student.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	now := s.now()
	secret := s.Cfg.JWT.Secret
	sessionToken, err := util.GenerateSessionJWT(student, req.DeviceID, secret, now, s.Cfg.Mobile.SessionTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := util.GenerateRefreshJWT(student.ID, req.DeviceID, secret, now, s.Cfg.Mobile.RefreshTTL)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(s.Cfg.Mobile.SessionTTL)
	refreshExpiresAt := now.Add(s.Cfg.Mobile.RefreshTTL)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		sessions := s.SessionRepo.WithTx(tx)
		device := &model.Device{
			StudentID:  student.ID,
			DeviceID:   req.DeviceID,
			DeviceType: req.DeviceType,
			DeviceName: req.DeviceName,
			PushToken:  req.PushToken,
			AppVersion: req.AppVersion,
			OSVersion:  req.OSVersion,
			IsActive:   true,
			LastActive: now,
		}
		if err := sessions.UpsertDevice(device); err != nil {
			return err
		}
		// 每台设备只保留一个有效会话
		if err := sessions.DeactivateDeviceSessions(student.ID, req.DeviceID); err != nil {
			return err
		}
		if err := sessions.CreateSession(&model.MobileSession{
			StudentID:        student.ID,
			DeviceID:         req.DeviceID,
			SessionTokenHash: util.HashToken(sessionToken),
			RefreshTokenHash: util.HashToken(refreshToken),
			ExpiresAt:        expiresAt,
			RefreshExpiresAt: refreshExpiresAt,
			IsActive:         true,
		}); err != nil {
			return err
		}
		return s.StudentRepo.WithTx(tx).TouchLastLogin(student.ID, util.ChannelMobile, now)
	})
	if err != nil {
		return nil, err
	}

	return &MobileLoginResult{
		User: student.Public(),
		Tokens: MobileTokens{
			SessionToken:     sessionToken,
			RefreshToken:     refreshToken,
			ExpiresAt:        expiresAt,
			RefreshExpiresAt: &refreshExpiresAt,
		},
	}, nil
}

// Refresh 校验刷新令牌后原地替换该设备会话的会话令牌
func (s *MobileAuthService) Refresh(refreshToken string) (*MobileTokens, error) {
	now := s.now()
	claims, err := util.ParseJWT(refreshToken, s.Cfg.JWT.Secret, s.now)
	if err != nil || claims.TokenType != util.RefreshTokenType {
		return nil, util.ErrInvalidToken
	}

	session, err := s.SessionRepo.FindByRefreshHash(util.HashToken(refreshToken), now)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidToken
	} else if err != nil {
		return nil, err
	}
	if session.StudentID != claims.UserID {
		return nil, util.ErrInvalidToken
	}

	student, err := s.StudentRepo.FindByID(session.StudentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidToken
	} else if err != nil {
		return nil, err
	}

	sessionToken, err := util.GenerateSessionJWT(student, session.DeviceID, s.Cfg.JWT.Secret, now, s.Cfg.Mobile.SessionTTL)
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.Cfg.Mobile.SessionTTL)
	if err := s.SessionRepo.RotateSessionToken(session.ID, util.HashToken(sessionToken), expiresAt); err != nil {
		return nil, err
	}

	return &MobileTokens{SessionToken: sessionToken, ExpiresAt: expiresAt}, nil
}

// Authenticate 会话令牌既要签名有效，也要对应一条仍然有效的会话记录
func (s *MobileAuthService) Authenticate(token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret, s.now)
	if err != nil || claims.Channel != util.ChannelMobile || claims.TokenType != "" {
		return nil, util.ErrInvalidToken
	}

	session, err := s.SessionRepo.FindBySessionHash(util.HashToken(token), s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionExpired
	} else if err != nil {
		return nil, err
	}
	if session.StudentID != claims.UserID || session.DeviceID != claims.DeviceID {
		return nil, util.ErrInvalidToken
	}
	return claims, nil
}

func (s *MobileAuthService) Logout(token string) error {
	session, err := s.SessionRepo.FindBySessionHash(util.HashToken(token), s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	} else if err != nil {
		return err
	}
	return s.SessionRepo.Deactivate(session.ID)
}

// TouchDevice 记录设备最近活跃时间，失败只记日志
func (s *MobileAuthService) TouchDevice(studentID uint, deviceID string) {
	if err := s.SessionRepo.TouchDevice(studentID, deviceID, "last_active", s.now()); err != nil {
		logger.Log.Warn("Failed to update device activity",
			zap.Uint("userId", studentID),
			zap.String("deviceId", deviceID),
			zap.Error(err),
		)
	}
}
