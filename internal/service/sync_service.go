package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"
	"sankalp_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SyncItem 的 id 由客户端生成，可能是数字也可能是字符串，原样回传
type SyncItem struct {
	ID     json.RawMessage `json:"id"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type SyncResult struct {
	ID      json.RawMessage `json:"id"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
}

// syncNumber 离线队列里的数字可能被序列化成字符串，两种都接受
type syncNumber float64

func (n *syncNumber) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = syncNumber(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return err
	}
	*n = syncNumber(f)
	return nil
}

// id 只接受非负整数
func (n syncNumber) id() (uint, bool) {
	f := float64(n)
	if f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, false
	}
	return uint(f), true
}

type syncProgressData struct {
	ModuleID            syncNumber  `json:"moduleId"`
	CourseID            syncNumber  `json:"courseId"`
	WatchedDuration     syncNumber  `json:"watchedDuration"`
	TotalDuration       syncNumber  `json:"totalDuration"`
	LastWatchedPosition *syncNumber `json:"lastWatchedPosition"`
	CurrentPosition     *syncNumber `json:"currentPosition"`
}

// SyncService 逐条应用离线事件，单条失败不影响其他条目。
// 重放安全依赖进度合并规则本身的幂等性。
type SyncService struct {
	Progress    *ProgressService
	EventRepo   *repository.SyncEventRepository
	SessionRepo *repository.SessionRepository
	now         func() time.Time
}

func NewSyncService(progress *ProgressService, eventRepo *repository.SyncEventRepository, sessionRepo *repository.SessionRepository) *SyncService {
	return &SyncService{
		Progress:    progress,
		EventRepo:   eventRepo,
		SessionRepo: sessionRepo,
		now:         time.Now,
	}
}

func (s *SyncService) Sync(ctx context.Context, userID uint, deviceID string, items []SyncItem) []SyncResult {
	results := make([]SyncResult, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			results = append(results, SyncResult{ID: item.ID, Success: false, Error: "request cancelled"})
			continue
		}

		err := s.apply(userID, item)
		res := SyncResult{ID: item.ID, Success: err == nil}
		if err != nil {
			res.Error = syncErrorMessage(err)
		}
		results = append(results, res)

		monitoring.ObserveSyncItem(item.Action, err == nil)
		s.audit(userID, deviceID, item, res)
	}

	if deviceID != "" {
		if err := s.SessionRepo.TouchDevice(userID, deviceID, "last_sync", s.now()); err != nil {
			logger.Log.Warn("Failed to update device last sync", zap.Uint("userId", userID), zap.Error(err))
		}
	}
	return results
}

func (s *SyncService) apply(userID uint, item SyncItem) error {
	switch item.Action {
	case util.SyncActionVideoProgress:
		var data syncProgressData
		if len(item.Data) == 0 {
			return util.NewValidationError("missing data")
		}
		if err := json.Unmarshal(item.Data, &data); err != nil {
			return util.NewValidationError("invalid data")
		}

		moduleID, okModule := data.ModuleID.id()
		courseID, okCourse := data.CourseID.id()
		if !okModule || !okCourse {
			return util.NewValidationError("invalid data")
		}

		// 百分比与完成状态由服务端按时长重新计算，客户端上报的值忽略
		position := 0.0
		if data.LastWatchedPosition != nil {
			position = float64(*data.LastWatchedPosition)
		} else if data.CurrentPosition != nil {
			position = float64(*data.CurrentPosition)
		}
		watched, total := float64(data.WatchedDuration), float64(data.TotalDuration)
		if watched < 0 || total < 0 || position < 0 {
			return util.NewValidationError("durations must not be negative")
		}

		_, err := s.Progress.Record(userID, ProgressUpdate{
			ModuleID:        moduleID,
			CourseID:        courseID,
			WatchedDuration: watched,
			TotalDuration:   total,
			CurrentPosition: position,
		})
		return err
	default:
		return fmt.Errorf("%w: %s", util.ErrUnknownSyncAction, item.Action)
	}
}

// syncErrorMessage 只把可以安全返回的错误原文给客户端
func syncErrorMessage(err error) string {
	switch {
	case errors.Is(err, util.ErrUnknownSyncAction), util.IsValidation(err):
		return err.Error()
	case errors.Is(err, util.ErrModuleNotFound):
		return "module not found"
	default:
		logger.Log.Error("Sync item failed", zap.Error(err))
		return "failed to apply item"
	}
}

// audit 写同步流水，失败不影响条目结果
func (s *SyncService) audit(userID uint, deviceID string, item SyncItem, res SyncResult) {
	payload := datatypes.JSON(item.Data)
	if len(payload) == 0 || !json.Valid(payload) {
		payload = datatypes.JSON("null")
	}
	event := &model.SyncEvent{
		StudentID: userID,
		DeviceID:  deviceID,
		ItemID:    string(item.ID),
		Action:    item.Action,
		Payload:   payload,
		Success:   res.Success,
		Error:     truncate(res.Error, 255),
		CreatedAt: s.now(),
	}
	if err := s.EventRepo.Create(event); err != nil {
		logger.Log.Warn("Failed to record sync event", zap.Uint("userId", userID), zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
