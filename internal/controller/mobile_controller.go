package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// MobileController 移动端接口，统一返回 {success, message, code, data}
type MobileController struct {
	MobileAuthService *service.MobileAuthService
	ProgressService   *service.ProgressService
	SyncService       *service.SyncService
}

func NewMobileController(
	mobileAuthService *service.MobileAuthService,
	progressService *service.ProgressService,
	syncService *service.SyncService,
) *MobileController {
	return &MobileController{
		MobileAuthService: mobileAuthService,
		ProgressService:   progressService,
		SyncService:       syncService,
	}
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SyncRequest syncData 先按原始 JSON 接收，再检查是否为数组
type SyncRequest struct {
	SyncData json.RawMessage `json:"syncData" swaggertype:"array,object"`
}

// Login godoc
// @Summary 移动端登录
// @Description 登记设备并签发会话令牌与刷新令牌，同一设备之前的会话失效
// @Tags 移动端
// @Accept  json
// @Produce  json
// @Param   body body service.MobileLoginRequest true "登录凭证与设备信息"
// @Success 200 {object} util.MobileResponse{data=service.MobileLoginResult}
// @Failure 400 {object} util.MobileResponse "MISSING_FIELDS"
// @Failure 401 {object} util.MobileResponse "INVALID_CREDENTIALS"
// @Failure 500 {object} util.MobileResponse "LOGIN_ERROR"
// @Router /api/mobile/auth/login [post]
func (c *MobileController) Login(ctx *gin.Context) {
	var req service.MobileLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.MobileError(ctx, http.StatusBadRequest, "Email, password, deviceId, and deviceType are required", util.CodeMissingFields)
		return
	}

	result, err := c.MobileAuthService.Login(req)
	if errors.Is(err, util.ErrInvalidCredentials) {
		util.MobileError(ctx, http.StatusUnauthorized, "Invalid credentials", util.CodeInvalidCredentials)
		return
	}
	if err != nil {
		util.LogMobileInternalError(ctx, "Login failed", util.CodeLoginError, err)
		return
	}
	util.MobileSuccess(ctx, "Login successful", result)
}

// Refresh godoc
// @Summary 刷新会话令牌
// @Description 原地替换会话令牌，刷新令牌保持不变
// @Tags 移动端
// @Accept  json
// @Produce  json
// @Param   body body RefreshRequest true "刷新令牌"
// @Success 200 {object} util.MobileResponse{data=service.MobileTokens}
// @Failure 400 {object} util.MobileResponse "NO_REFRESH_TOKEN"
// @Failure 401 {object} util.MobileResponse "INVALID_REFRESH_TOKEN"
// @Router /api/mobile/auth/refresh [post]
func (c *MobileController) Refresh(ctx *gin.Context) {
	var req RefreshRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.MobileError(ctx, http.StatusBadRequest, "Refresh token required", util.CodeNoRefreshToken)
		return
	}

	tokens, err := c.MobileAuthService.Refresh(req.RefreshToken)
	if errors.Is(err, util.ErrInvalidToken) {
		util.MobileError(ctx, http.StatusUnauthorized, "Invalid refresh token", util.CodeInvalidRefreshToken)
		return
	}
	if err != nil {
		util.LogMobileInternalError(ctx, "Token refresh failed", util.CodeRefreshError, err)
		return
	}
	util.MobileSuccess(ctx, "Token refreshed", tokens)
}

// Logout godoc
// @Summary 移动端退出
// @Tags 移动端
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.MobileResponse
// @Router /api/mobile/auth/logout [post]
func (c *MobileController) Logout(ctx *gin.Context) {
	if err := c.MobileAuthService.Logout(ctx.GetString("sessionToken")); err != nil {
		util.LogMobileInternalError(ctx, "Logout failed", util.CodeLoginError, err)
		return
	}
	util.MobileSuccess(ctx, "Logged out", nil)
}

// Dashboard godoc
// @Summary 学习概览
// @Description 已授权课程及进度、最近观看、汇总统计
// @Tags 移动端
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.MobileResponse{data=model.Dashboard}
// @Failure 401 {object} util.MobileResponse
// @Failure 500 {object} util.MobileResponse "DASHBOARD_ERROR"
// @Router /api/mobile/dashboard [get]
func (c *MobileController) Dashboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	dashboard, err := c.ProgressService.Dashboard(claims.UserID)
	if err != nil {
		util.LogMobileInternalError(ctx, "Failed to load dashboard", util.CodeDashboardError, err)
		return
	}
	util.MobileSuccess(ctx, "", dashboard)
}

// UpdateProgress godoc
// @Summary 上报观看进度
// @Description 与已有记录单调合并：观看时长与百分比只增不减，完成后不会回退
// @Tags 移动端
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProgressUpdate true "进度"
// @Success 200 {object} util.MobileResponse{data=model.VideoProgress}
// @Failure 400 {object} util.MobileResponse "MISSING_FIELDS"
// @Failure 404 {object} util.MobileResponse "NOT_FOUND"
// @Router /api/mobile/video/progress [post]
func (c *MobileController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.ProgressUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.MobileError(ctx, http.StatusBadRequest, "moduleId and courseId are required", util.CodeMissingFields)
		return
	}

	progress, err := c.ProgressService.Record(claims.UserID, req)
	var validation *util.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &validation):
		util.MobileError(ctx, http.StatusBadRequest, validation.Message, util.CodeMissingFields)
		return
	case errors.Is(err, util.ErrModuleNotFound):
		util.MobileError(ctx, http.StatusNotFound, "Module not found", util.CodeNotFound)
		return
	default:
		util.LogMobileInternalError(ctx, "Failed to update progress", util.CodeProgressError, err)
		return
	}
	util.MobileSuccess(ctx, "Progress updated successfully", progress)
}

// GetProgress godoc
// @Summary 查询单个课时进度
// @Tags 移动端
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId path int true "课时ID"
// @Success 200 {object} util.MobileResponse{data=model.VideoProgress}
// @Failure 404 {object} util.MobileResponse "NOT_FOUND"
// @Router /api/mobile/video/progress/{moduleId} [get]
func (c *MobileController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	moduleID, ok := util.ParseID(ctx.Param("moduleId"))
	if !ok {
		util.MobileError(ctx, http.StatusBadRequest, "Invalid module ID", util.CodeMissingFields)
		return
	}

	progress, err := c.ProgressService.Get(claims.UserID, moduleID)
	if errors.Is(err, util.ErrNotFound) {
		util.MobileError(ctx, http.StatusNotFound, "No progress recorded", util.CodeNotFound)
		return
	}
	if err != nil {
		util.LogMobileInternalError(ctx, "Failed to load progress", util.CodeProgressError, err)
		return
	}
	util.MobileSuccess(ctx, "", progress)
}

// Sync godoc
// @Summary 离线同步
// @Description 逐条应用离线缓存的事件，单条失败不影响其他条目，结果按原 id 返回
// @Tags 移动端
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body SyncRequest true "离线事件"
// @Success 200 {object} util.MobileResponse{data=object{results=[]service.SyncResult}}
// @Failure 400 {object} util.MobileResponse "INVALID_SYNC_DATA"
// @Router /api/mobile/sync [post]
func (c *MobileController) Sync(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.MobileError(ctx, http.StatusBadRequest, "syncData must be an array", util.CodeInvalidSyncData)
		return
	}

	var raw []json.RawMessage
	data := bytes.TrimSpace(req.SyncData)
	if len(data) == 0 || data[0] != '[' || json.Unmarshal(data, &raw) != nil {
		util.MobileError(ctx, http.StatusBadRequest, "syncData must be an array", util.CodeInvalidSyncData)
		return
	}

	// 无法解析的条目按空动作处理，结果里报 unknown sync action
	items := make([]service.SyncItem, len(raw))
	for i, r := range raw {
		_ = json.Unmarshal(r, &items[i])
	}

	results := c.SyncService.Sync(ctx.Request.Context(), claims.UserID, claims.DeviceID, items)
	util.MobileSuccess(ctx, "", gin.H{"results": results})
}
