package service

import (
	"context"
	"errors"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"
	"sankalp_backend/pkg/monitoring"
	"sankalp_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlaybackDescriptor 校验通过后返回给播放页的内容
type PlaybackDescriptor struct {
	Email     string `json:"email"`
	ModuleID  uint   `json:"moduleId"`
	CourseID  uint   `json:"courseId"`
	Title     string `json:"title"`
	VideoURL  string `json:"videoUrl"`
	YouTubeID string `json:"youtubeId"`
}

type IssuedVideoToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// VideoTokenService 签发只绑定 {email, moduleId} 的短期令牌。
// 课程 ID 不进令牌，校验时从课时重新推导，并再次查询授权表。
type VideoTokenService struct {
	StudentRepo *repository.StudentRepository
	CourseRepo  *repository.CourseRepository
	AccessRepo  *repository.AccessRepository
	Cfg         config.VideoConfig
	now         func() time.Time
}

func NewVideoTokenService(
	studentRepo *repository.StudentRepository,
	courseRepo *repository.CourseRepository,
	accessRepo *repository.AccessRepository,
	cfg *config.Config,
) *VideoTokenService {
	return &VideoTokenService{
		StudentRepo: studentRepo,
		CourseRepo:  courseRepo,
		AccessRepo:  accessRepo,
		Cfg:         cfg.Video,
		now:         time.Now,
	}
}

// authorize 依次解析学生、课时、授权；每一步失败都是不同的拒绝原因
func (s *VideoTokenService) authorize(email string, moduleID uint) (*model.Student, *model.Module, error) {
	student, err := s.StudentRepo.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, util.Deny(util.ReasonUnknownPrincipal, nil)
	} else if err != nil {
		return nil, nil, err
	}

	module, err := s.CourseRepo.FindModule(moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return student, nil, util.Deny(util.ReasonUnknownContentUnit, nil)
	} else if err != nil {
		return nil, nil, err
	}

	ok, err := s.AccessRepo.HasAccess(student.ID, module.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return student, module, util.Deny(util.ReasonNoAccessGrant, nil)
	}
	return student, module, nil
}

func (s *VideoTokenService) Issue(ctx context.Context, email string, moduleID uint) (*IssuedVideoToken, error) {
	_, span := tracing.Tracer.Start(ctx, "video_token.issue")
	defer span.End()
	span.SetAttributes(attribute.Int64("module.id", int64(moduleID)))

	student, _, err := s.authorize(email, moduleID)
	if err != nil {
		s.logDenial("issue", email, moduleID, err)
		return nil, err
	}

	now := s.now()
	token, err := util.GenerateVideoToken(student.Email, moduleID, s.Cfg.TokenSecret, now, s.Cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	monitoring.ObserveVideoToken("issue", "")
	return &IssuedVideoToken{Token: token, ExpiresAt: now.Add(s.Cfg.TokenTTL)}, nil
}

// Verify 无状态，可在有效期内重复校验
func (s *VideoTokenService) Verify(ctx context.Context, token string, moduleID uint) (*PlaybackDescriptor, error) {
	_, span := tracing.Tracer.Start(ctx, "video_token.verify")
	defer span.End()
	span.SetAttributes(attribute.Int64("module.id", int64(moduleID)))

	claims, err := util.ParseVideoToken(token, s.Cfg.TokenSecret, s.now)
	if err != nil {
		err = util.Deny(util.ReasonBadToken, err)
		s.logDenial("verify", "", moduleID, err)
		return nil, err
	}

	if claims.ModuleID != moduleID {
		err = util.Deny(util.ReasonScopeMismatch, nil)
		s.logDenial("verify", claims.Email, moduleID, err)
		return nil, err
	}

	_, module, err := s.authorize(claims.Email, moduleID)
	if util.DenialReason(err) == util.ReasonUnknownContentUnit {
		// 令牌本身有效，只是课时已被删除
		s.logDenial("verify", claims.Email, moduleID, err)
		return nil, util.ErrVideoNotFound
	}
	if err != nil {
		s.logDenial("verify", claims.Email, moduleID, err)
		return nil, err
	}

	if module.VideoURL == "" {
		return nil, util.ErrVideoNotFound
	}
	youtubeID, ok := util.YouTubeID(module.VideoURL)
	if !ok {
		logger.Log.Warn("Module has a non YouTube locator", zap.Uint("moduleId", module.ID))
		return nil, util.ErrInvalidVideoURL
	}

	monitoring.ObserveVideoToken("verify", "")
	return &PlaybackDescriptor{
		Email:     claims.Email,
		ModuleID:  module.ID,
		CourseID:  module.CourseID,
		Title:     module.Title,
		VideoURL:  module.VideoURL,
		YouTubeID: youtubeID,
	}, nil
}

func (s *VideoTokenService) logDenial(op, email string, moduleID uint, err error) {
	reason := util.DenialReason(err)
	if reason == "" {
		logger.Log.Error("Video token "+op+" failed", zap.Uint("moduleId", moduleID), zap.Error(err))
		return
	}
	monitoring.ObserveVideoToken(op, reason)
	logger.Log.Warn("Video access denied",
		zap.String("op", op),
		zap.String("reason", reason),
		zap.String("email", email),
		zap.Uint("moduleId", moduleID),
	)
}
