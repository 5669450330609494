package controller

import (
	"errors"
	"net/http"
	"strconv"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	AccessService     *service.AccessService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, accessService *service.AccessService) *EnrollmentController {
	return &EnrollmentController{
		EnrollmentService: enrollmentService,
		AccessService:     accessService,
	}
}

// CourseEmailRequest 报名查询、审批、授权查询共用
// swagger:model CourseEmailRequest
type CourseEmailRequest struct {
	Email    string `json:"email" binding:"required"`
	CourseID uint   `json:"courseId" binding:"required"`
}

type RejectRequest struct {
	Email    string `json:"email" binding:"required"`
	CourseID uint   `json:"courseId" binding:"required"`
	Reason   string `json:"reason" binding:"max=255"`
}

// Submit godoc
// @Summary 提交报名
// @Description 提交付款凭证，进入待审核状态；同一课程已有待审或已通过的记录时返回 409
// @Tags 报名
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SubmitEnrollmentRequest true "报名信息"
// @Success 200 {object} object{message=string,value=int} "已提交，等待审核"
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 403 {object} util.MessageResponse "只能为自己报名"
// @Failure 404 {object} util.MessageResponse "课程或学生不存在"
// @Failure 409 {object} object{message=string,value=int} "已有待审(0)或已通过(1)的报名"
// @Router /api/pending [post]
func (c *EnrollmentController) Submit(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req service.SubmitEnrollmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "All fields are required")
		return
	}
	// 学生只能为自己报名，管理员代报名时按请求中的邮箱定位学生
	student, err := c.AccessService.Principal(claims.UserID, isAdmin(claims), req.Email)
	if err != nil {
		if reason := util.DenialReason(err); reason != "" {
			logger.Log.Warn("Enrollment email does not match principal",
				zap.String("reason", reason),
				zap.Uint("userId", claims.UserID),
				zap.String("email", req.Email),
			)
		}
		respondError(ctx, err, "Registration failed")
		return
	}

	enrollment, err := c.EnrollmentService.Submit(student.ID, req)
	if err != nil {
		respondError(ctx, err, "Registration failed")
		return
	}

	logger.Log.Info("Enrollment submitted",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.Uint("courseId", enrollment.CourseID),
		zap.String("email", enrollment.Email),
	)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Registration is under review",
		"value":   model.EnrollmentPending,
	})
}

// Check godoc
// @Summary 查询报名状态
// @Description value: -1 无记录，0 待审核，1 已通过，2 已拒绝(含撤销授权)
// @Tags 报名
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CourseEmailRequest true "邮箱与课程"
// @Success 200 {object} object{message=string,value=int}
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 403 {object} util.MessageResponse "只能查询自己的报名"
// @Router /api/pending-check [post]
func (c *EnrollmentController) Check(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req CourseEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and courseId are required")
		return
	}
	status := model.EnrollmentNone
	student, err := c.AccessService.Principal(claims.UserID, isAdmin(claims), req.Email)
	switch {
	case err == nil:
		status, err = c.EnrollmentService.Status(student.ID, req.CourseID)
	case errors.Is(err, util.ErrStudentNotFound):
		err = nil
	}
	if err != nil {
		respondError(ctx, err, "Failed to check registration status")
		return
	}

	message := "Registration status found"
	if status == model.EnrollmentNone {
		message = "No registration found"
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
		"value":   status,
	})
}

// AdminList godoc
// @Summary 报名列表
// @Description 管理员查看报名记录，可按状态过滤
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   status query int false "0 待审核，1 已通过，2 已拒绝"
// @Success 200 {object} object{data=[]model.Enrollment}
// @Failure 400 {object} util.MessageResponse "状态参数错误"
// @Failure 403 {object} util.MessageResponse "非管理员"
// @Router /api/admin-check [get]
func (c *EnrollmentController) AdminList(ctx *gin.Context) {
	var filter *model.EnrollmentStatus
	if raw := ctx.Query("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < int(model.EnrollmentPending) || n > int(model.EnrollmentRejected) {
			util.BadRequest(ctx, "Invalid status")
			return
		}
		status := model.EnrollmentStatus(n)
		filter = &status
	}

	enrollments, err := c.EnrollmentService.List(filter)
	if err != nil {
		respondError(ctx, err, "Failed to fetch pending registrations")
		return
	}
	if enrollments == nil {
		enrollments = []model.Enrollment{}
	}
	ctx.JSON(http.StatusOK, gin.H{"data": enrollments})
}

// Approve godoc
// @Summary 审批通过
// @Description 待审记录转为已通过并写入课程授权，二者在同一事务内提交
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CourseEmailRequest true "邮箱与课程"
// @Success 200 {object} object{message=string,status=int}
// @Failure 404 {object} util.MessageResponse "无待审记录或用户不存在"
// @Router /api/admin-approve [post]
func (c *EnrollmentController) Approve(ctx *gin.Context) {
	var req CourseEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and courseId are required")
		return
	}

	enrollment, err := c.EnrollmentService.Approve(req.Email, req.CourseID)
	if err != nil {
		respondError(ctx, err, "Failed to approve registration")
		return
	}

	logger.Log.Info("Enrollment approved",
		zap.Uint("enrollmentId", enrollment.ID),
		zap.Uint("courseId", enrollment.CourseID),
		zap.Uint("adminId", util.GetUserFromContext(ctx).UserID),
	)
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Registration approved successfully",
		"status":  model.EnrollmentApproved,
	})
}

// Reject godoc
// @Summary 拒绝报名
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body RejectRequest true "邮箱、课程与拒绝原因"
// @Success 200 {object} object{message=string,status=int}
// @Failure 404 {object} util.MessageResponse "无待审记录"
// @Router /api/admin-reject [post]
func (c *EnrollmentController) Reject(ctx *gin.Context) {
	var req RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and courseId are required")
		return
	}

	if _, err := c.EnrollmentService.Reject(req.Email, req.CourseID, req.Reason); err != nil {
		respondError(ctx, err, "Failed to reject registration")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Registration rejected",
		"status":  model.EnrollmentRejected,
	})
}

// Revoke godoc
// @Summary 撤销课程授权
// @Description 撤销后已签发的视频令牌在下次校验时失效
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CourseEmailRequest true "邮箱与课程"
// @Success 200 {object} util.MessageResponse
// @Failure 404 {object} util.MessageResponse "用户不存在或无授权"
// @Router /api/admin-revoke [post]
func (c *EnrollmentController) Revoke(ctx *gin.Context) {
	var req CourseEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and courseId are required")
		return
	}

	if err := c.AccessService.Revoke(req.Email, req.CourseID); err != nil {
		respondError(ctx, err, "Failed to revoke access")
		return
	}
	util.Message(ctx, http.StatusOK, "Access revoked")
}

// CheckAccess godoc
// @Summary 查询课程授权
// @Description 学生只能查询自己；管理员查询未注册的邮箱返回 hasAccess=false
// @Tags 报名
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CourseEmailRequest true "邮箱与课程"
// @Success 200 {object} service.AccessStatus
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 403 {object} util.MessageResponse "只能查询自己的授权"
// @Router /api/check-course-access [post]
func (c *EnrollmentController) CheckAccess(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req CourseEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and courseId are required")
		return
	}
	status := &service.AccessStatus{HasAccess: false}
	student, err := c.AccessService.Principal(claims.UserID, isAdmin(claims), req.Email)
	switch {
	case err == nil:
		status, err = c.AccessService.CheckAccess(student.ID, req.CourseID)
	case errors.Is(err, util.ErrStudentNotFound):
		err = nil
	}
	if err != nil {
		respondError(ctx, err, "Failed to check course access")
		return
	}
	ctx.JSON(http.StatusOK, status)
}
