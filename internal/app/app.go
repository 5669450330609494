package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/controller"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/configwatcher"
	"sankalp_backend/pkg/database"
	"sankalp_backend/pkg/logger"
	"sankalp_backend/pkg/monitoring"
	"sankalp_backend/pkg/security"
	"sankalp_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config     *config.Config
	ConfigPath string
	Router     *gin.Engine
	DB         *gorm.DB
	Redis      *redis.Client
	Services   *Services

	apiLimiter *security.RateLimiter
	otpLimiter *security.RateLimiter
	tracer     *sdktrace.TracerProvider
}

type repositories struct {
	student    *repository.StudentRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	access     *repository.AccessRepository
	session    *repository.SessionRepository
	progress   *repository.ProgressRepository
	syncEvent  *repository.SyncEventRepository
}

// Services 导出给集成测试使用
type Services struct {
	Auth       *service.AuthService
	MobileAuth *service.MobileAuthService
	OTP        *service.OTPService
	Mail       *service.MailService
	Access     *service.AccessService
	Enrollment *service.EnrollmentService
	VideoToken *service.VideoTokenService
	Progress   *service.ProgressService
	Sync       *service.SyncService
	Course     *service.CourseService
	Storage    *service.StorageService
}

type controllers struct {
	auth       *controller.AuthController
	enrollment *controller.EnrollmentController
	course     *controller.CourseController
	video      *controller.VideoController
	mobile     *controller.MobileController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		student:    repository.NewStudentRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		access:     repository.NewAccessRepository(db),
		session:    repository.NewSessionRepository(db),
		progress:   repository.NewProgressRepository(db),
		syncEvent:  repository.NewSyncEventRepository(db),
	}
}

func (a *App) initServices(r *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*Services, error) {
	mailer, err := service.NewMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}
	mail := service.NewMailService(mailer, cfg)

	provider, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if minioProvider, ok := provider.(*service.MinioStorageProvider); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := minioProvider.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
	}

	otp := service.NewOTPService(rdb, cfg.OTP.TTL)
	if cfg.OTP.MaxAttempts > 0 {
		otp.MaxAttempts = cfg.OTP.MaxAttempts
	}
	progress := service.NewProgressService(db, r.course, r.progress, r.access)

	return &Services{
		Auth:       service.NewAuthService(r.student, otp, mail, cfg),
		MobileAuth: service.NewMobileAuthService(db, r.student, r.session, cfg),
		OTP:        otp,
		Mail:       mail,
		Access:     service.NewAccessService(db, r.student, r.access, r.enrollment),
		Enrollment: service.NewEnrollmentService(db, r.student, r.course, r.enrollment, r.access, mail),
		VideoToken: service.NewVideoTokenService(r.student, r.course, r.access, cfg),
		Progress:   progress,
		Sync:       service.NewSyncService(progress, r.syncEvent, r.session),
		Course:     service.NewCourseService(r.course),
		Storage:    service.NewStorageService(provider, r.course, r.access),
	}, nil
}

func (a *App) initControllers(s *Services) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.Auth),
		enrollment: controller.NewEnrollmentController(s.Enrollment, s.Access),
		course:     controller.NewCourseController(s.Course, s.Storage),
		video:      controller.NewVideoController(s.VideoToken, s.Access),
		mobile:     controller.NewMobileController(s.MobileAuth, s.Progress, s.Sync),
		health:     controller.NewHealthController(a.DB, a.Redis),
	}
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("videourl", util.VideoURLValidator)
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(a.apiLimiter.Middleware())
}

func rateWindow(cfg *config.Config) time.Duration {
	if cfg.RateLimit.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
}

// Build 用已建立的连接组装应用，NewApp 与集成测试共用
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := registerValidators(); err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		apiLimiter: security.NewRateLimiter(cfg.RateLimit.MaxRequests, rateWindow(cfg)),
		otpLimiter: security.NewRateLimiter(cfg.RateLimit.OTPMaxRequests, rateWindow(cfg)),
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		app.closeLimiters()
		return nil, err
	}
	app.Services = services
	controllers := app.initControllers(services)

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	return app, nil
}

func NewApp(cfg *config.Config, configPath string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || !cfg.IsRelease() {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	if n, err := database.PromoteAdmins(db, cfg.Admin.Emails); err != nil {
		logger.Log.Error("Failed to promote admin accounts", zap.Error(err))
	} else if n > 0 {
		logger.Log.Info("Promoted admin accounts", zap.Int64("count", n))
	}
	if cfg.MigrateOnly {
		return &App{Config: cfg, ConfigPath: configPath, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app, err := Build(cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}
	app.ConfigPath = configPath

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("sankalp-backend", cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	return app
}

// reload 只应用可以热更新的配置项：日志级别与限流参数
func (a *App) reload(cfg *config.Config) {
	logger.SetMode(cfg.Server.Mode)
	window := rateWindow(cfg)
	a.apiLimiter.Update(cfg.RateLimit.MaxRequests, window)
	a.otpLimiter.Update(cfg.RateLimit.OTPMaxRequests, window)
	logger.Log.Info("Configuration reloaded",
		zap.String("mode", cfg.Server.Mode),
		zap.Int("maxRequests", cfg.RateLimit.MaxRequests),
		zap.Int("otpMaxRequests", cfg.RateLimit.OTPMaxRequests),
	)
}

func (a *App) closeLimiters() {
	if a.apiLimiter != nil {
		a.apiLimiter.Close()
	}
	if a.otpLimiter != nil {
		a.otpLimiter.Close()
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if a.ConfigPath != "" {
		go func() {
			file := filepath.Join(a.ConfigPath, "config.yaml")
			if err := configwatcher.WatchConfig(watchCtx, file, a.reload); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopWatch()
	a.closeLimiters()
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
