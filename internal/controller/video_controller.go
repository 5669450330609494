package controller

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"
	"sankalp_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

//go:embed templates/player.html
var templateFS embed.FS

var playerTemplate = template.Must(template.ParseFS(templateFS, "templates/player.html"))

type VideoController struct {
	VideoTokenService *service.VideoTokenService
	AccessService     *service.AccessService
}

func NewVideoController(videoTokenService *service.VideoTokenService, accessService *service.AccessService) *VideoController {
	return &VideoController{
		VideoTokenService: videoTokenService,
		AccessService:     accessService,
	}
}

type GenerateVideoTokenRequest struct {
	Email    string `json:"email" binding:"required"`
	ModuleID uint   `json:"moduleId" binding:"required"`
}

// GenerateToken godoc
// @Summary 签发视频令牌
// @Description 令牌只绑定 {email, moduleId}，有效期很短；拒绝原因只写日志
// @Tags 视频
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body GenerateVideoTokenRequest true "邮箱与课时"
// @Success 200 {object} service.IssuedVideoToken
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 403 {object} util.MessageResponse "Access denied"
// @Router /api/generate-video-token [post]
func (c *VideoController) GenerateToken(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req GenerateVideoTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and moduleId are required")
		return
	}

	// 令牌只能为当前登录学生本人签发，按学生 ID 取当前邮箱
	student, err := c.AccessService.Principal(claims.UserID, isAdmin(claims), req.Email)
	if errors.Is(err, util.ErrStudentNotFound) {
		err = util.Deny(util.ReasonUnknownPrincipal, err)
	}
	if err != nil {
		if reason := util.DenialReason(err); reason != "" {
			monitoring.ObserveVideoToken("issue", reason)
			logger.Log.Warn("Video access denied",
				zap.String("op", "issue"),
				zap.String("reason", reason),
				zap.Uint("userId", claims.UserID),
				zap.Uint("moduleId", req.ModuleID),
			)
		}
		respondError(ctx, err, "Failed to generate token")
		return
	}

	issued, err := c.VideoTokenService.Issue(ctx.Request.Context(), student.Email, req.ModuleID)
	if err != nil {
		respondError(ctx, err, "Failed to generate token")
		return
	}
	ctx.JSON(http.StatusOK, issued)
}

func noCache(ctx *gin.Context) {
	ctx.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	ctx.Header("Pragma", "no-cache")
	ctx.Header("Expires", "0")
}

// SecureVideo godoc
// @Summary 播放视频
// @Description 校验视频令牌后返回播放页；Accept 为 application/json 时返回播放描述
// @Tags 视频
// @Produce  html
// @Produce  json
// @Param   moduleId path int true "课时ID"
// @Param   token query string true "视频令牌"
// @Success 200 {object} service.PlaybackDescriptor
// @Failure 400 {string} string "Invalid YouTube URL"
// @Failure 403 {string} string "Access denied"
// @Failure 404 {string} string "Video not found"
// @Router /api/secure-video/{moduleId} [get]
func (c *VideoController) SecureVideo(ctx *gin.Context) {
	noCache(ctx)
	asJSON := ctx.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
	fail := func(status int, message string) {
		if asJSON {
			util.Message(ctx, status, message)
		} else {
			ctx.String(status, message)
		}
	}

	moduleID, ok := util.ParseID(ctx.Param("moduleId"))
	if !ok {
		fail(http.StatusBadRequest, "Module ID is required")
		return
	}
	token := ctx.Query("token")
	if token == "" {
		fail(http.StatusForbidden, "Access denied")
		return
	}

	desc, err := c.VideoTokenService.Verify(ctx.Request.Context(), token, moduleID)
	switch {
	case err == nil:
	case errors.Is(err, util.ErrAccessDenied):
		fail(http.StatusForbidden, "Access denied")
		return
	case errors.Is(err, util.ErrVideoNotFound):
		fail(http.StatusNotFound, "Video not found")
		return
	case errors.Is(err, util.ErrInvalidVideoURL):
		fail(http.StatusBadRequest, "Invalid YouTube URL")
		return
	default:
		logger.Log.Error("Error serving video", zap.Uint("moduleId", moduleID), zap.Error(err))
		fail(http.StatusInternalServerError, "Error serving video")
		return
	}

	if asJSON {
		ctx.JSON(http.StatusOK, desc)
		return
	}
	ctx.Render(http.StatusOK, render.HTML{
		Template: playerTemplate,
		Name:     "player.html",
		Data:     desc,
	})
}
