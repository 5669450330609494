package controller

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// userMessage 将哨兵错误转成面向用户的提示
func userMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// respondError 把服务层错误映射为 Web 端的 HTTP 状态码，未知错误统一记录并返回 fallback
func respondError(ctx *gin.Context, err error, fallback string) {
	var validation *util.ValidationError
	switch {
	case errors.As(err, &validation):
		util.BadRequest(ctx, validation.Message)
	case errors.Is(err, util.ErrAccessDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrEnrollmentPending):
		util.Conflict(ctx, userMessage(err), gin.H{"value": model.EnrollmentPending})
	case errors.Is(err, util.ErrEnrollmentApproved):
		util.Conflict(ctx, userMessage(err), gin.H{"value": model.EnrollmentApproved})
	case errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, userMessage(err), nil)
	case errors.Is(err, util.ErrOTPAttempts):
		util.Message(ctx, http.StatusTooManyRequests, userMessage(err))
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Message(ctx, http.StatusUnauthorized, userMessage(err))
	case errors.Is(err, util.ErrOTPNotFound),
		errors.Is(err, util.ErrOTPExpired),
		errors.Is(err, util.ErrOTPInvalid),
		errors.Is(err, util.ErrEmailInUse),
		errors.Is(err, util.ErrInvalidVideoURL):
		util.BadRequest(ctx, userMessage(err))
	case errors.Is(err, util.ErrStudentNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrModuleNotFound),
		errors.Is(err, util.ErrMaterialNotFound),
		errors.Is(err, util.ErrPendingNotFound),
		errors.Is(err, util.ErrVideoNotFound),
		errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx, userMessage(err))
	default:
		util.LogInternalError(ctx, fallback, err)
	}
}

// bindError 绑定失败时只返回第一条校验信息
func bindError(ctx *gin.Context, err error) {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i > 0 {
		msg = msg[:i]
	}
	util.BadRequest(ctx, msg)
}

// currentUser 取出认证中间件写入的身份，缺失时直接返回 401
func currentUser(ctx *gin.Context) *util.Claims {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
	}
	return claims
}

func isAdmin(claims *util.Claims) bool {
	return claims.Role == model.RoleAdmin
}
