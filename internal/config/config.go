package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Mobile    MobileConfig
	Video     VideoConfig
	OTP       OTPConfig
	Mail      MailConfig
	Storage   StorageConfig
	Admin     AdminConfig
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	MigrateOnly  bool `mapstructure:"-"`
	ForceMigrate bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port    string
	Mode    string
	BaseURL string `mapstructure:"base_url"`
	LogFile string `mapstructure:"log_file"`
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Charset         string
	ParseTime       bool
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        // sqlite file
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type MobileConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type VideoConfig struct {
	TokenSecret string        `mapstructure:"token_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
}

type OTPConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// 连续输错次数上限，达到后验证码作废
	MaxAttempts int `mapstructure:"max_attempts"`
}

type MailConfig struct {
	Provider       string `mapstructure:"provider"` // console | smtp | sendgrid
	From           string `mapstructure:"from"`
	FromName       string `mapstructure:"from_name"`
	AdminEmail     string `mapstructure:"admin_email"`
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUser       string `mapstructure:"smtp_user"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
}

type StorageConfig struct {
	Type          string        `mapstructure:"type"`
	LocalPath     string        `mapstructure:"local_path"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"minio_access_key"`
	MinioSecret   string        `mapstructure:"minio_secret_key"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioSecure   bool          `mapstructure:"minio_secure"`
	PresignTTL    time.Duration `mapstructure:"presign_ttl"`
}

type AdminConfig struct {
	Emails []string `mapstructure:"emails"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
	// 采样比例，0 到 1；未配置时全部采样
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
	// OTP 发送类接口（注册、找回密码）单独限流
	OTPMaxRequests int `mapstructure:"otp_max_requests"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.log_file", "logs/app.log")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("redis.pool_size", 50)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("mobile.session_ttl", "168h")
	v.SetDefault("mobile.refresh_ttl", "720h")
	v.SetDefault("video.token_ttl", "1m")
	v.SetDefault("otp.ttl", "10m")
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("mail.provider", "console")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.presign_ttl", "5m")
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("rate_limit.otp_max_requests", 5)
	v.SetDefault("tracing.sample_ratio", 1.0)
}

func LoadConfig(path string) (*Config, error) {
	// .env 可选，不存在时直接使用系统环境变量
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SANKALP")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Secrets
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("video.token_secret", "VIDEO_TOKEN_SECRET")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Mail
	v.BindEnv("mail.provider", "MAIL_PROVIDER")
	v.BindEnv("mail.from", "EMAIL_FROM")
	v.BindEnv("mail.admin_email", "ADMIN_EMAIL")
	v.BindEnv("mail.smtp_host", "EMAIL_HOST")
	v.BindEnv("mail.smtp_port", "EMAIL_PORT")
	v.BindEnv("mail.smtp_user", "EMAIL_USER")
	v.BindEnv("mail.smtp_password", "EMAIL_PASSWORD")
	v.BindEnv("mail.sendgrid_api_key", "SENDGRID_API_KEY")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	if cfg.Video.TokenSecret == "" {
		cfg.Video.TokenSecret = cfg.JWT.Secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}
	if c.Video.TokenTTL <= 0 {
		return fmt.Errorf("video token ttl must be positive")
	}
	if c.Mobile.SessionTTL <= 0 || c.Mobile.RefreshTTL < c.Mobile.SessionTTL {
		return fmt.Errorf("mobile refresh ttl (%s) must outlive session ttl (%s)", c.Mobile.RefreshTTL, c.Mobile.SessionTTL)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	return nil
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}
