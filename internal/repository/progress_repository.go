package repository

import (
	"sankalp_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) FindForUpdate(userID, moduleID uint) (*model.VideoProgress, error) {
	var p model.VideoProgress
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND module_id = ?", userID, moduleID).
		First(&p).Error
	return &p, err
}

func (r *ProgressRepository) Find(userID, moduleID uint) (*model.VideoProgress, error) {
	var p model.VideoProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&p).Error
	return &p, err
}

func (r *ProgressRepository) Create(p *model.VideoProgress) error {
	return r.DB.Create(p).Error
}

func (r *ProgressRepository) Save(p *model.VideoProgress) error {
	return r.DB.Save(p).Error
}

type CourseTotal struct {
	CourseID      uint
	Completed     int
	PercentageSum float64
}

// CourseTotals 汇总每门课的已完成课时数与进度百分比之和
func (r *ProgressRepository) CourseTotals(userID uint) (map[uint]CourseTotal, error) {
	var sums []CourseTotal
	err := r.DB.Model(&model.VideoProgress{}).
		Select("course_id, SUM(watched_percentage) AS percentage_sum").
		Where("user_id = ?", userID).
		Group("course_id").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}

	var completed []CourseTotal
	err = r.DB.Model(&model.VideoProgress{}).
		Select("course_id, COUNT(*) AS completed").
		Where("user_id = ? AND completed = ?", userID, true).
		Group("course_id").
		Scan(&completed).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[uint]CourseTotal, len(sums))
	for _, s := range sums {
		totals[s.CourseID] = s
	}
	for _, c := range completed {
		row := totals[c.CourseID]
		row.CourseID = c.CourseID
		row.Completed = c.Completed
		totals[c.CourseID] = row
	}
	return totals, nil
}

func (r *ProgressRepository) Recent(userID uint, limit int) ([]model.RecentActivity, error) {
	var activity []model.RecentActivity
	err := r.DB.Table("video_progress AS vp").
		Select("vp.module_id, cm.title AS module_title, c.title AS course_title, vp.last_watched, vp.watched_percentage").
		Joins("JOIN course_modules cm ON cm.id = vp.module_id").
		Joins("JOIN courses c ON c.id = vp.course_id").
		Where("vp.user_id = ?", userID).
		Order("vp.last_watched DESC").
		Limit(limit).
		Scan(&activity).Error
	return activity, err
}

func (r *ProgressRepository) TotalWatchTime(userID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&model.VideoProgress{}).
		Select("COALESCE(SUM(watched_duration), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	return total, err
}
