// Package testutil builds throwaway in-memory databases and fixtures for package tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"
	"sankalp_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const Password = "secret123"

// NewDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps the shared-cache database alive for the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + name + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateStudent(t *testing.T, db *gorm.DB, email string) *model.Student {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	s := &model.Student{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Phone:    "9999999999",
		Password: string(hash),
		Role:     model.RoleStudent,
	}
	require.NoError(t, db.Create(s).Error)
	return s
}

// CreateCourse creates a course with n modules on consecutive days.
func CreateCourse(t *testing.T, db *gorm.DB, title string, n int) (*model.Course, []model.Module) {
	t.Helper()
	course := &model.Course{Title: title, Description: title + " course"}
	require.NoError(t, db.Create(course).Error)

	modules := make([]model.Module, 0, n)
	for i := 1; i <= n; i++ {
		m := model.Module{
			CourseID: course.ID,
			Title:    title + " day " + string(rune('0'+i)),
			Day:      i,
			VideoURL: "https://www.youtube.com/watch?v=dQw4w9WgXc" + string(rune('0'+i)),
		}
		require.NoError(t, db.Create(&m).Error)
		modules = append(modules, m)
	}
	return course, modules
}

func Grant(t *testing.T, db *gorm.DB, studentID, courseID uint) {
	t.Helper()
	require.NoError(t, db.Create(&model.AccessGrant{
		StudentID: studentID,
		CourseID:  courseID,
		GrantedAt: time.Now(),
	}).Error)
}

// Clock is a settable time source for code that takes a now func.
type Clock struct {
	T time.Time
}

func NewClock() *Clock {
	return &Clock{T: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
