package util

import (
	"net/http"

	"sankalp_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// The web channel answers with bare objects ({"message": ...}), the mobile
// channel with MobileResponse. Clients branch on shape, so both stay as is.

// MessageResponse 仅用于接口文档
type MessageResponse struct {
	Message string `json:"message"`
}

type MobileResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Message(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

func BadRequest(c *gin.Context, message string) {
	Message(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context) {
	Message(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Message(c, http.StatusForbidden, "Access denied")
}

func NotFound(c *gin.Context, message string) {
	Message(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusConflict, body)
}

func InternalServerError(c *gin.Context, message string) {
	Message(c, http.StatusInternalServerError, message)
}

func LogInternalError(c *gin.Context, message string, err error) {
	logger.Log.Error(message,
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c, message)
}

func MobileSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, MobileResponse{
		Success: true,
		Message: message,
		Code:    CodeOK,
		Data:    data,
	})
}

func MobileError(c *gin.Context, status int, message, code string) {
	c.JSON(status, MobileResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

func MobileAbort(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, MobileResponse{
		Success: false,
		Message: message,
		Code:    code,
	})
}

func LogMobileInternalError(c *gin.Context, message, code string, err error) {
	logger.Log.Error(message,
		zap.Error(err),
		zap.String("code", code),
		zap.String("path", c.FullPath()),
	)
	MobileError(c, http.StatusInternalServerError, message, code)
}
