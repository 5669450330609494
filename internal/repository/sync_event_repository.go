package repository

import (
	"sankalp_backend/internal/model"

	"gorm.io/gorm"
)

type SyncEventRepository struct {
	DB *gorm.DB
}

func NewSyncEventRepository(db *gorm.DB) *SyncEventRepository {
	return &SyncEventRepository{DB: db}
}

func (r *SyncEventRepository) Create(e *model.SyncEvent) error {
	return r.DB.Create(e).Error
}

func (r *SyncEventRepository) ListByDevice(userID uint, deviceID string, limit int) ([]model.SyncEvent, error) {
	var events []model.SyncEvent
	err := r.DB.Where("user_id = ? AND device_id = ?", userID, deviceID).
		Order("id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
