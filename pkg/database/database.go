package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.Port,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "sankalp.db"
		}
		// sqlite 默认不开启外键，级联删除依赖它
		if !strings.Contains(path, "_foreign_keys") {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			path += sep + "_foreign_keys=1"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// 连接池有上限，超出的请求排队等待连接而不是直接失败
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	log.Printf("Database connection established (%s)", cfg.Driver)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Student{},
		&model.Course{},
		&model.Module{},
		&model.Material{},
		&model.Enrollment{},
		&model.AccessGrant{},
		&model.Device{},
		&model.MobileSession{},
		&model.VideoProgress{},
		&model.SyncEvent{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

// PromoteAdmins 将配置中的邮箱提升为管理员，账号不存在时跳过
func PromoteAdmins(db *gorm.DB, emails []string) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			normalized = append(normalized, e)
		}
	}
	result := db.Model(&model.Student{}).
		Where("email IN ? AND role <> ?", normalized, model.RoleAdmin).
		Updates(map[string]interface{}{"role": model.RoleAdmin, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}
