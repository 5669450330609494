package controller

import (
	"errors"
	"net/http"

	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// VerifyOTPRequest 注册确认与找回密码共用
// swagger:model VerifyOTPRequest
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary 注册新学生
// @Description 暂存注册信息并向邮箱发送验证码，验证通过后才创建账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "学生注册信息"
// @Success 200 {object} util.MessageResponse "验证码已发送"
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 409 {object} util.MessageResponse "邮箱已被注册"
// @Failure 500 {object} util.MessageResponse "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		bindError(ctx, err)
		return
	}

	if err := c.AuthService.StartRegistration(ctx.Request.Context(), req); err != nil {
		respondError(ctx, err, "Registration failed")
		return
	}
	util.Message(ctx, http.StatusOK, "OTP sent to your email")
}

// VerifyRegistration godoc
// @Summary 确认注册
// @Description 校验注册验证码并创建学生账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body VerifyOTPRequest true "邮箱与验证码"
// @Success 201 {object} object{message=string,userId=int,user=model.PublicStudent} "注册成功"
// @Failure 400 {object} util.MessageResponse "验证码不存在、已过期或错误"
// @Failure 409 {object} util.MessageResponse "邮箱已被注册"
// @Failure 429 {object} util.MessageResponse "错误次数或请求过多"
// @Router /api/verify-registration [post]
func (c *AuthController) VerifyRegistration(ctx *gin.Context) {
	var req VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and OTP are required")
		return
	}

	student, err := c.AuthService.VerifyRegistration(ctx.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(ctx, err, "Registration verification failed")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"userId":  student.ID,
		"user":    student.Public(),
	})
}

// Login godoc
// @Summary Web 端登录
// @Description 校验邮箱密码并返回 Bearer 令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭证"
// @Success 200 {object} object{message=string,token=string,user=model.PublicStudent} "登录成功"
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Failure 401 {object} util.MessageResponse "邮箱或密码错误"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and password are required")
		return
	}

	student, token, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		respondError(ctx, err, "Login failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    student.Public(),
	})
}

// ForgotPassword godoc
// @Summary 找回密码
// @Description 向已注册邮箱发送重置验证码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body ForgotPasswordRequest true "邮箱"
// @Success 200 {object} util.MessageResponse
// @Failure 404 {object} util.MessageResponse "邮箱未注册"
// @Router /api/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email is required")
		return
	}

	err := c.AuthService.ForgotPassword(ctx.Request.Context(), req.Email)
	if errors.Is(err, util.ErrStudentNotFound) {
		util.NotFound(ctx, "No account found with this email")
		return
	}
	if err != nil {
		respondError(ctx, err, "Failed to process request")
		return
	}
	util.Message(ctx, http.StatusOK, "OTP sent to your email")
}

// VerifyOTP godoc
// @Summary 校验重置验证码
// @Description 只校验，不消耗验证码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body VerifyOTPRequest true "邮箱与验证码"
// @Success 200 {object} util.MessageResponse
// @Failure 400 {object} util.MessageResponse "验证码不存在、已过期或错误"
// @Failure 429 {object} util.MessageResponse "错误次数或请求过多"
// @Router /api/verify-otp [post]
func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var req VerifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email and OTP are required")
		return
	}

	if err := c.AuthService.VerifyResetOTP(ctx.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(ctx, err, "Failed to verify OTP")
		return
	}
	util.Message(ctx, http.StatusOK, "OTP verified successfully")
}

// ResetPassword godoc
// @Summary 重置密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body ResetPasswordRequest true "邮箱、验证码与新密码"
// @Success 200 {object} util.MessageResponse
// @Failure 400 {object} util.MessageResponse "验证码无效或已过期"
// @Failure 404 {object} util.MessageResponse "用户不存在"
// @Failure 429 {object} util.MessageResponse "错误次数或请求过多"
// @Router /api/reset-password [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Email, OTP, and password are required")
		return
	}

	err := c.AuthService.ResetPassword(ctx.Request.Context(), req.Email, req.OTP, req.Password)
	switch {
	case errors.Is(err, util.ErrOTPNotFound), errors.Is(err, util.ErrOTPExpired), errors.Is(err, util.ErrOTPInvalid):
		util.BadRequest(ctx, "Invalid or expired OTP")
		return
	case err != nil:
		respondError(ctx, err, "Failed to reset password")
		return
	}
	util.Message(ctx, http.StatusOK, "Password reset successful")
}

// UpdateProfile godoc
// @Summary 修改个人资料
// @Description 修改当前学生的姓名、邮箱、电话；邮箱不能与他人重复
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.UpdateProfileRequest true "个人资料"
// @Success 200 {object} object{message=string,user=model.PublicStudent}
// @Failure 400 {object} util.MessageResponse "邮箱已被占用"
// @Failure 401 {object} util.MessageResponse "未登录"
// @Router /api/update-profile [post]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Name and email are required")
		return
	}

	student, err := c.AuthService.UpdateProfile(claims.UserID, req)
	if err != nil {
		respondError(ctx, err, "Failed to update profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    student.Public(),
	})
}

// Contact godoc
// @Summary 联系管理员
// @Description 转发留言给管理员，并给留言人发送回执
// @Tags 系统
// @Accept  json
// @Produce  json
// @Param   body body service.ContactForm true "留言"
// @Success 200 {object} util.MessageResponse
// @Failure 400 {object} util.MessageResponse "请求参数错误"
// @Router /api/contact [post]
func (c *AuthController) Contact(ctx *gin.Context) {
	var form service.ContactForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		util.BadRequest(ctx, "Name, email and message are required")
		return
	}

	if err := c.AuthService.Contact(ctx.Request.Context(), form); err != nil {
		respondError(ctx, err, "Failed to send message")
		return
	}
	util.Message(ctx, http.StatusOK, "Message sent successfully")
}
