package app

import (
	"sankalp_backend/docs"
	"sankalp_backend/internal/middleware"
	"sankalp_backend/internal/model"
	"sankalp_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(api, c)

	// 2. 需要登录的路由，Web 令牌与移动端会话令牌均可
	authGroup := api.Group("")
	authGroup.Use(middleware.AuthMiddleware(a.Services.Auth, a.Services.MobileAuth))
	{
		a.registerStudentRoutes(authGroup, c)

		// 3. 管理员相关接口
		admin := authGroup.Group("")
		admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
		a.registerAdminRoutes(admin, c)
	}

	// 4. 移动端
	a.registerMobileRoutes(api, c)
}

func (a *App) registerPublicRoutes(api *gin.RouterGroup, c *controllers) {
	api.GET("/health", c.health.HealthCheck)
	api.POST("/login", c.auth.Login)

	// 会发邮件或校验验证码的接口单独限流
	otp := api.Group("")
	otp.Use(a.otpLimiter.Middleware())
	{
		otp.POST("/register", c.auth.Register)
		otp.POST("/verify-registration", c.auth.VerifyRegistration)
		otp.POST("/forgot-password", c.auth.ForgotPassword)
		otp.POST("/verify-otp", c.auth.VerifyOTP)
		otp.POST("/reset-password", c.auth.ResetPassword)
		otp.POST("/contact", c.auth.Contact)
	}

	api.GET("/courses", c.course.List)
	api.GET("/course-modules/:courseId", c.course.Modules)
	api.GET("/module-materials/:courseId", c.course.Materials)

	// 播放页凭视频令牌访问，不走 Bearer 认证
	api.GET("/secure-video/:moduleId", c.video.SecureVideo)
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/update-profile", c.auth.UpdateProfile)

	rg.POST("/pending", c.enrollment.Submit)
	rg.POST("/pending-check", c.enrollment.Check)
	rg.POST("/check-course-access", c.enrollment.CheckAccess)

	rg.POST("/generate-video-token", c.video.GenerateToken)
	rg.GET("/materials/:id/download", c.course.DownloadMaterial)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/admin-check", c.enrollment.AdminList)
	rg.POST("/admin-approve", c.enrollment.Approve)
	rg.POST("/admin-reject", c.enrollment.Reject)
	rg.POST("/admin-revoke", c.enrollment.Revoke)

	rg.POST("/courses", c.course.Create)
	rg.DELETE("/courses/:id", c.course.Delete)
	rg.POST("/materials/upload", c.course.UploadMaterial)
}

func (a *App) registerMobileRoutes(api *gin.RouterGroup, c *controllers) {
	mobile := api.Group("/mobile")
	{
		mobile.POST("/auth/login", c.mobile.Login)
		mobile.POST("/auth/refresh", c.mobile.Refresh)

		authed := mobile.Group("")
		authed.Use(middleware.MobileAuthMiddleware(a.Services.MobileAuth), middleware.ActivityMiddleware(a.Services.MobileAuth))
		{
			authed.POST("/auth/logout", c.mobile.Logout)
			authed.GET("/dashboard", c.mobile.Dashboard)
			authed.POST("/video/progress", c.mobile.UpdateProgress)
			authed.GET("/video/progress/:moduleId", c.mobile.GetProgress)
			authed.POST("/sync", c.mobile.Sync)
		}
	}
}
