package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncService(f *fixture) *SyncService {
	s := NewSyncService(f.progressService(), f.events, f.sessions)
	s.now = f.clock.Now
	return s
}

func progressItem(id string, moduleID, courseID uint, watched, total float64) SyncItem {
	return SyncItem{
		ID:     json.RawMessage(id),
		Action: "video_progress",
		Data: json.RawMessage(fmt.Sprintf(
			`{"moduleId":%d,"courseId":%d,"watchedDuration":%g,"totalDuration":%g,"lastWatchedPosition":%g,"watchedPercentage":5,"completed":false}`,
			moduleID, courseID, watched, total, watched)),
	}
}

func TestSyncAppliesItemsIndependently(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newSyncService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 2)
	require.NoError(t, f.sessions.UpsertDevice(&model.Device{
		StudentID:  student.ID,
		DeviceID:   "pixel-7",
		DeviceType: "android",
		IsActive:   true,
		LastActive: f.clock.Now(),
	}))

	items := []SyncItem{
		progressItem(`1`, modules[0].ID, course.ID, 570, 600),
		{ID: json.RawMessage(`"abc"`), Action: "quiz_answer", Data: json.RawMessage(`{}`)},
		{ID: json.RawMessage(`3`), Action: "video_progress"},
		progressItem(`4`, 9999, course.ID, 10, 600),
		{ID: json.RawMessage(`5`), Action: "video_progress", Data: json.RawMessage(`"oops"`)},
	}
	results := s.Sync(ctx, student.ID, "pixel-7", items)
	require.Len(t, results, len(items))

	assert.Equal(t, json.RawMessage(`1`), results[0].ID)
	assert.True(t, results[0].Success)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, json.RawMessage(`"abc"`), results[1].ID)
	assert.False(t, results[1].Success)
	assert.Equal(t, "unknown sync action: quiz_answer", results[1].Error)

	assert.Equal(t, "missing data", results[2].Error)
	assert.Equal(t, "module not found", results[3].Error)
	assert.Equal(t, "invalid data", results[4].Error)

	// 百分比由服务端重新计算，忽略客户端上报的 5%
	p, err := f.progress.Find(student.ID, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, p.WatchedPercentage)
	assert.True(t, p.Completed)

	events, err := f.events.ListByDevice(student.ID, "pixel-7", 10)
	require.NoError(t, err)
	require.Len(t, events, len(items))
	assert.Equal(t, "5", events[0].ItemID)
	assert.Equal(t, "1", events[4].ItemID)
	assert.True(t, events[4].Success)

	device, err := f.sessions.FindDevice(student.ID, "pixel-7")
	require.NoError(t, err)
	require.NotNil(t, device.LastSync)
	assert.True(t, device.LastSync.Equal(f.clock.Now()))
}

func TestSyncReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newSyncService(f)
	student := testutil.CreateStudent(t, f.db, "ravi@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	batch := []SyncItem{
		progressItem(`"a"`, modules[0].ID, course.ID, 300, 600),
		progressItem(`"b"`, modules[0].ID, course.ID, 120, 600),
	}
	for i := 0; i < 2; i++ {
		results := s.Sync(ctx, student.ID, "", batch)
		for _, r := range results {
			assert.True(t, r.Success)
		}
		f.clock.Advance(time.Minute)
	}

	p, err := f.progress.Find(student.ID, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, p.WatchedDuration)
	assert.Equal(t, 50.0, p.WatchedPercentage)
	assert.Equal(t, 120.0, p.LastWatchedPosition)
	assert.False(t, p.Completed)
}

func TestSyncStopsApplyingWhenCancelled(t *testing.T) {
	f := newFixture(t)
	s := newSyncService(f)
	student := testutil.CreateStudent(t, f.db, "dev@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := s.Sync(ctx, student.ID, "", []SyncItem{progressItem(`1`, modules[0].ID, course.ID, 60, 600)})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	_, err := f.progress.Find(student.ID, modules[0].ID)
	assert.Error(t, err)
}

func TestSyncAcceptsNumericStrings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newSyncService(f)
	student := testutil.CreateStudent(t, f.db, "meera@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	items := []SyncItem{
		{ID: json.RawMessage(`1`), Action: "video_progress", Data: json.RawMessage(fmt.Sprintf(
			`{"moduleId":"%d","courseId":"%d","watchedDuration":"150","totalDuration":600,"currentPosition":" 150 "}`,
			modules[0].ID, course.ID))},
		{ID: json.RawMessage(`2`), Action: "video_progress", Data: json.RawMessage(fmt.Sprintf(
			`{"moduleId":"abc","courseId":%d,"watchedDuration":10,"totalDuration":600}`, course.ID))},
		{ID: json.RawMessage(`3`), Action: "video_progress", Data: json.RawMessage(fmt.Sprintf(
			`{"moduleId":1.5,"courseId":%d,"watchedDuration":10,"totalDuration":600}`, course.ID))},
	}
	results := s.Sync(ctx, student.ID, "", items)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, "invalid data", results[1].Error)
	assert.Equal(t, "invalid data", results[2].Error)

	p, err := f.progress.Find(student.ID, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, p.WatchedDuration)
	assert.Equal(t, 25.0, p.WatchedPercentage)
	assert.Equal(t, 150.0, p.LastWatchedPosition)
}
