package repository

import (
	"time"

	"sankalp_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: tx}
}

// UpsertDevice 以 (user_id, device_id) 为键，重复登录只更新设备信息
func (r *SessionRepository) UpsertDevice(device *model.Device) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"device_type", "device_name", "push_token", "app_version", "os_version",
			"is_active", "last_active", "updated_at",
		}),
	}).Create(device).Error
}

func (r *SessionRepository) FindDevice(studentID uint, deviceID string) (*model.Device, error) {
	var device model.Device
	err := r.DB.Where("user_id = ? AND device_id = ?", studentID, deviceID).First(&device).Error
	return &device, err
}

func (r *SessionRepository) TouchDevice(studentID uint, deviceID, column string, at time.Time) error {
	return r.DB.Model(&model.Device{}).
		Where("user_id = ? AND device_id = ?", studentID, deviceID).
		Update(column, at).Error
}

func (r *SessionRepository) DeactivateDeviceSessions(studentID uint, deviceID string) error {
	return r.DB.Model(&model.MobileSession{}).
		Where("user_id = ? AND device_id = ? AND is_active = ?", studentID, deviceID, true).
		Update("is_active", false).Error
}

func (r *SessionRepository) CreateSession(session *model.MobileSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindBySessionHash(hash string, now time.Time) (*model.MobileSession, error) {
	var session model.MobileSession
	err := r.DB.Where("session_token_hash = ? AND is_active = ? AND expires_at > ?", hash, true, now).
		First(&session).Error
	return &session, err
}

func (r *SessionRepository) FindByRefreshHash(hash string, now time.Time) (*model.MobileSession, error) {
	var session model.MobileSession
	err := r.DB.Where("refresh_token_hash = ? AND is_active = ? AND refresh_expires_at > ?", hash, true, now).
		First(&session).Error
	return &session, err
}

// RotateSessionToken 原地替换会话令牌，刷新令牌保持不变
func (r *SessionRepository) RotateSessionToken(id uint, hash string, expiresAt time.Time) error {
	return r.DB.Model(&model.MobileSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"session_token_hash": hash,
			"expires_at":         expiresAt,
			"updated_at":         time.Now(),
		}).Error
}

func (r *SessionRepository) Deactivate(id uint) error {
	return r.DB.Model(&model.MobileSession{}).Where("id = ?", id).Update("is_active", false).Error
}
