package middleware

import (
	"errors"
	"net/http"
	"strings"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenAuthenticator 校验一种渠道的 Bearer 令牌
type TokenAuthenticator interface {
	Authenticate(token string) (*util.Claims, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// AuthMiddleware 接受 Web 令牌或移动端会话令牌，两种渠道共用同一个学生身份
func AuthMiddleware(web, mobile TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := web.Authenticate(tokenString)
		if err != nil && mobile != nil {
			claims, err = mobile.Authenticate(tokenString)
		}
		if err != nil {
			logger.Log.Debug("Bearer token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

// MobileAuthMiddleware 移动端接口，错误使用统一信封格式
func MobileAuthMiddleware(mobile TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.MobileAbort(c, http.StatusUnauthorized, "Access token required", util.CodeNoToken)
			return
		}

		claims, err := mobile.Authenticate(tokenString)
		if errors.Is(err, util.ErrSessionExpired) {
			util.MobileAbort(c, http.StatusUnauthorized, "Session expired", util.CodeSessionExpired)
			return
		}
		if err != nil {
			util.MobileAbort(c, http.StatusUnauthorized, "Invalid token", util.CodeInvalidToken)
			return
		}

		c.Set("user", claims)
		c.Set("sessionToken", tokenString)
		c.Next()
	}
}

func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if user.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			logger.Log.Warn("Role check failed",
				zap.Uint("userId", user.UserID),
				zap.String("role", string(user.Role)),
				zap.String("path", c.FullPath()),
			)
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

type DeviceActivity interface {
	TouchDevice(studentID uint, deviceID string)
}

// ActivityMiddleware 移动端请求结束后刷新设备最近活跃时间
func ActivityMiddleware(devices DeviceActivity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		claims := util.GetUserFromContext(c)
		if claims != nil && claims.Channel == util.ChannelMobile && claims.DeviceID != "" {
			devices.TouchDevice(claims.UserID, claims.DeviceID)
		}
	}
}
