package service

import (
	"testing"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/testutil"
	"sankalp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(30, 0))
	assert.Equal(t, 0.0, Percentage(0, 100))
	assert.Equal(t, 50.0, Percentage(30, 60))
	assert.Equal(t, 100.0, Percentage(120, 60))
}

func TestMergeIsMonotonic(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := &model.VideoProgress{
		WatchedDuration:     540,
		TotalDuration:       600,
		WatchedPercentage:   90,
		Completed:           true,
		LastWatchedPosition: 540,
		LastWatched:         at,
	}
	incoming := model.VideoProgress{
		WatchedDuration:     60,
		TotalDuration:       600,
		WatchedPercentage:   10,
		LastWatchedPosition: 60,
		LastWatched:         at.Add(time.Hour),
	}

	merged := Merge(existing, incoming)
	assert.Equal(t, 540.0, merged.WatchedDuration)
	assert.Equal(t, 90.0, merged.WatchedPercentage)
	assert.True(t, merged.Completed)
	assert.Equal(t, 60.0, merged.LastWatchedPosition)
	assert.Equal(t, at.Add(time.Hour), merged.LastWatched)

	// 重复合并同一条结果不变
	assert.Equal(t, merged, Merge(&merged, incoming))
	assert.Equal(t, incoming, Merge(nil, incoming))
}

func TestRecordMergesAndValidates(t *testing.T) {
	f := newFixture(t)
	s := f.progressService()
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 2)
	other, _ := testutil.CreateCourse(t, f.db, "Other", 1)

	p, err := s.Record(student.ID, ProgressUpdate{ModuleID: modules[0].ID, CourseID: course.ID, WatchedDuration: 570, TotalDuration: 600, CurrentPosition: 570})
	require.NoError(t, err)
	assert.Equal(t, 95.0, p.WatchedPercentage)
	assert.True(t, p.Completed)

	f.clock.Advance(time.Minute)
	p, err = s.Record(student.ID, ProgressUpdate{ModuleID: modules[0].ID, CourseID: course.ID, WatchedDuration: 30, TotalDuration: 600, CurrentPosition: 30})
	require.NoError(t, err)
	assert.Equal(t, 570.0, p.WatchedDuration)
	assert.True(t, p.Completed)
	assert.Equal(t, 30.0, p.LastWatchedPosition)

	stored, err := s.Get(student.ID, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, stored.WatchedPercentage)
	assert.Equal(t, 30.0, stored.LastWatchedPosition)

	_, err = s.Get(student.ID, modules[1].ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = s.Record(student.ID, ProgressUpdate{ModuleID: modules[0].ID, CourseID: other.ID, WatchedDuration: 10, TotalDuration: 600})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
	_, err = s.Record(student.ID, ProgressUpdate{ModuleID: 9999, CourseID: course.ID})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
	_, err = s.Record(student.ID, ProgressUpdate{ModuleID: modules[0].ID})
	assert.True(t, util.IsValidation(err))
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	s := f.progressService()
	student := testutil.CreateStudent(t, f.db, "ravi@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 3)
	testutil.Grant(t, f.db, student.ID, course.ID)

	empty, err := s.Dashboard(student.ID)
	require.NoError(t, err)
	require.Len(t, empty.Courses, 1)
	assert.Equal(t, 3, empty.Courses[0].TotalModules)
	assert.Equal(t, 0.0, empty.Courses[0].OverallProgress)
	assert.NotNil(t, empty.RecentActivity)

	_, err = s.Record(student.ID, ProgressUpdate{ModuleID: modules[0].ID, CourseID: course.ID, WatchedDuration: 600, TotalDuration: 600})
	require.NoError(t, err)
	_, err = s.Record(student.ID, ProgressUpdate{ModuleID: modules[1].ID, CourseID: course.ID, WatchedDuration: 150, TotalDuration: 600})
	require.NoError(t, err)

	d, err := s.Dashboard(student.ID)
	require.NoError(t, err)
	require.Len(t, d.Courses, 1)
	c := d.Courses[0]
	assert.Equal(t, 1, c.CompletedModules)
	assert.Equal(t, 41.67, c.OverallProgress)
	assert.Equal(t, 1, d.Stats.TotalCourses)
	assert.Equal(t, 0, d.Stats.CompletedCourses)
	assert.Equal(t, 750.0, d.Stats.TotalWatchTime)
	assert.Len(t, d.RecentActivity, 2)
}
