package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/testutil"
	"sankalp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorageService(t *testing.T, f *fixture) *StorageService {
	provider, err := NewLocalStorageProvider(t.TempDir())
	require.NoError(t, err)
	return NewStorageService(provider, f.courses, f.access)
}

func TestUploadAndLocateMaterial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newStorageService(t, f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	body := "%PDF-1.4\nDay 1 worksheet\n"
	material, err := s.UploadMaterial(ctx, modules[0].ID, "worksheet.pdf", strings.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.Equal(t, "worksheet.pdf", material.Material)
	assert.Equal(t, course.ID, material.CourseID)
	assert.True(t, strings.HasPrefix(material.ObjectKey, "materials/"))

	_, _, err = s.LocateMaterial(ctx, student.ID, false, material.ID)
	require.ErrorIs(t, err, util.ErrAccessDenied)

	testutil.Grant(t, f.db, student.ID, course.ID)
	got, loc, err := s.LocateMaterial(ctx, student.ID, false, material.ID)
	require.NoError(t, err)
	assert.Equal(t, material.ID, got.ID)
	data, err := os.ReadFile(loc.Path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	_, _, err = s.LocateMaterial(ctx, student.ID, false, 9999)
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)
}

func TestUploadRejectsBadFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newStorageService(t, f)
	_, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	_, err := s.UploadMaterial(ctx, modules[0].ID, "setup.exe", strings.NewReader("MZ"), 2)
	assert.True(t, util.IsValidation(err))

	_, err = s.UploadMaterial(ctx, 9999, "notes.pdf", strings.NewReader("%PDF-1.4"), 8)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestLocateLinkMaterialAsAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newStorageService(t, f)
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	link := &model.Material{ModuleID: modules[0].ID, CourseID: course.ID, Material: "https://example.com/guide.pdf"}
	require.NoError(t, f.courses.CreateMaterial(link))

	_, loc, err := s.LocateMaterial(ctx, 0, true, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/guide.pdf", loc.URL)
}

func TestLocalProviderRejectsTraversal(t *testing.T) {
	p, err := NewLocalStorageProvider(t.TempDir())
	require.NoError(t, err)

	err = p.Upload(context.Background(), "../escape.txt", strings.NewReader("x"), 1, "text/plain")
	assert.Error(t, err)
	_, err = p.Locate(context.Background(), "../../etc/passwd", "passwd")
	assert.Error(t, err)
}

func TestCreateCourseValidatesModules(t *testing.T) {
	f := newFixture(t)
	s := NewCourseService(f.courses)
	week := 1

	_, err := s.Create(CreateCourseRequest{Title: "Empty"})
	assert.True(t, util.IsValidation(err))

	_, err = s.Create(CreateCourseRequest{Title: "Bad", Modules: []CreateModuleRequest{
		{Title: "Day 1", Day: 1, Week: &week, VideoURL: "https://vimeo.com/1"},
	}})
	assert.True(t, util.IsValidation(err))

	course, err := s.Create(CreateCourseRequest{Title: " Sankalp 2.0 ", Modules: []CreateModuleRequest{
		{Title: "Day 1", Day: 1, Week: &week, VideoURL: "https://youtu.be/dQw4w9WgXcQ", Materials: []string{"Workbook", " "}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Sankalp 2.0", course.Title)

	modules, err := s.Modules(course.ID)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	materials, err := s.Materials(course.ID)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, "Workbook", materials[0].Material)

	require.NoError(t, s.Delete(course.ID))
	assert.ErrorIs(t, s.Delete(course.ID), util.ErrCourseNotFound)
}
