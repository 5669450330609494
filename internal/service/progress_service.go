package service

import (
	"errors"
	"math"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressUpdate struct {
	ModuleID        uint    `json:"moduleId" binding:"required"`
	CourseID        uint    `json:"courseId" binding:"required"`
	WatchedDuration float64 `json:"watchedDuration" binding:"gte=0"`
	TotalDuration   float64 `json:"totalDuration" binding:"gte=0"`
	CurrentPosition float64 `json:"currentPosition" binding:"gte=0"`
}

const recentActivityLimit = 5

// Percentage 按总时长计算观看百分比，总时长为 0 时返回 0，最多 100
func Percentage(watched, total float64) float64 {
	if total <= 0 || watched <= 0 {
		return 0
	}
	return math.Min(watched/total*100, 100)
}

// Merge 单调合并：观看时长和百分比取最大值，完成标记只会由 false 变 true；
// 总时长与播放位置以最新上报为准。
func Merge(existing *model.VideoProgress, incoming model.VideoProgress) model.VideoProgress {
	if existing == nil {
		return incoming
	}
	merged := *existing
	merged.WatchedDuration = math.Max(existing.WatchedDuration, incoming.WatchedDuration)
	merged.WatchedPercentage = math.Max(existing.WatchedPercentage, incoming.WatchedPercentage)
	merged.Completed = existing.Completed || incoming.Completed
	merged.TotalDuration = incoming.TotalDuration
	merged.LastWatchedPosition = incoming.LastWatchedPosition
	merged.LastWatched = incoming.LastWatched
	return merged
}

type ProgressService struct {
	DB           *gorm.DB
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	AccessRepo   *repository.AccessRepository
	now          func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	accessRepo *repository.AccessRepository,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		AccessRepo:   accessRepo,
		now:          time.Now,
	}
}

func (s *ProgressService) Record(userID uint, u ProgressUpdate) (*model.VideoProgress, error) {
	if u.ModuleID == 0 || u.CourseID == 0 {
		return nil, util.NewValidationError("moduleId and courseId are required")
	}

	module, err := s.CourseRepo.FindModule(u.ModuleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrModuleNotFound
	} else if err != nil {
		return nil, err
	}
	if module.CourseID != u.CourseID {
		return nil, util.ErrModuleNotFound
	}

	pct := Percentage(u.WatchedDuration, u.TotalDuration)
	incoming := model.VideoProgress{
		StudentID:           userID,
		ModuleID:            u.ModuleID,
		CourseID:            u.CourseID,
		WatchedDuration:     u.WatchedDuration,
		TotalDuration:       u.TotalDuration,
		WatchedPercentage:   pct,
		Completed:           pct >= util.CompletionThreshold,
		LastWatchedPosition: u.CurrentPosition,
		LastWatched:         s.now(),
	}

	var result model.VideoProgress
	// 首次写入时并发插入可能撞唯一索引，重试一次即走更新分支
	for attempt := 0; attempt < 2; attempt++ {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			repo := s.ProgressRepo.WithTx(tx)
			existing, err := repo.FindForUpdate(userID, u.ModuleID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = Merge(nil, incoming)
				return repo.Create(&result)
			} else if err != nil {
				return err
			}
			result = Merge(existing, incoming)
			return repo.Save(&result)
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *ProgressService) Get(userID, moduleID uint) (*model.VideoProgress, error) {
	p, err := s.ProgressRepo.Find(userID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotFound
	}
	return p, err
}

func (s *ProgressService) Dashboard(userID uint) (*model.Dashboard, error) {
	courses, err := s.AccessRepo.ListCourses(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	moduleCounts, err := s.CourseRepo.CountModules(ids)
	if err != nil {
		return nil, err
	}
	totals, err := s.ProgressRepo.CourseTotals(userID)
	if err != nil {
		return nil, err
	}

	stats := model.DashboardStats{TotalCourses: len(courses)}
	for i := range courses {
		c := &courses[i]
		c.TotalModules = moduleCounts[c.ID]
		t := totals[c.ID]
		c.CompletedModules = t.Completed
		if c.TotalModules > 0 {
			c.OverallProgress = math.Round(t.PercentageSum/float64(c.TotalModules)*100) / 100
		}
		if c.OverallProgress >= util.CompletionThreshold {
			stats.CompletedCourses++
		}
	}

	recent, err := s.ProgressRepo.Recent(userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	stats.TotalWatchTime, err = s.ProgressRepo.TotalWatchTime(userID)
	if err != nil {
		return nil, err
	}

	if courses == nil {
		courses = []model.CourseProgress{}
	}
	if recent == nil {
		recent = []model.RecentActivity{}
	}
	return &model.Dashboard{Courses: courses, RecentActivity: recent, Stats: stats}, nil
}
