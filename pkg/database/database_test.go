package database

import (
	"strconv"
	"testing"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + t.Name() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DatabaseConfig{Driver: "oracle", MaxOpenConns: 1})
	assert.ErrorContains(t, err, "unsupported")
}

func TestMigrateAndCascade(t *testing.T) {
	db, err := InitDB(openMemory(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	course := model.Course{Title: "Yoga"}
	require.NoError(t, db.Create(&course).Error)
	module := model.Module{CourseID: course.ID, Title: "Day 1", Day: 1, VideoURL: "https://youtu.be/dQw4w9WgXcQ"}
	require.NoError(t, db.Create(&module).Error)
	require.NoError(t, db.Create(&model.Material{ModuleID: module.ID, CourseID: course.ID, Material: "notes.pdf"}).Error)

	var materials int64
	db.Model(&model.Material{}).Count(&materials)
	require.Equal(t, int64(1), materials)

	require.NoError(t, db.Delete(&model.Course{}, course.ID).Error)

	var modules int64
	db.Model(&model.Module{}).Count(&modules)
	db.Model(&model.Material{}).Count(&materials)
	assert.Zero(t, modules)
	assert.Zero(t, materials)
}

func TestPromoteAdmins(t *testing.T) {
	db, err := InitDB(openMemory(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&model.Student{Name: "A", Email: "admin@example.com", Password: "x", Role: model.RoleStudent}).Error)

	n, err := PromoteAdmins(db, []string{" Admin@Example.com ", "missing@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var s model.Student
	require.NoError(t, db.Where("email = ?", "admin@example.com").First(&s).Error)
	assert.Equal(t, model.RoleAdmin, s.Role)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	rdb, err := InitRedis(&config.RedisConfig{Host: mr.Host(), Port: port})
	require.NoError(t, err)
	defer rdb.Close()
}
