package service

import (
	"context"
	"testing"
	"time"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/testutil"
	"sankalp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVideoTokenService(f *fixture) *VideoTokenService {
	s := NewVideoTokenService(f.students, f.courses, f.access, f.cfg)
	s.now = f.clock.Now
	return s
}

func TestIssueDenialReasons(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newVideoTokenService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	_, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	cases := []struct {
		name     string
		email    string
		moduleID uint
		reason   string
	}{
		{"unknown student", "ghost@example.com", modules[0].ID, util.ReasonUnknownPrincipal},
		{"unknown module", student.Email, 9999, util.ReasonUnknownContentUnit},
		{"no grant", student.Email, modules[0].ID, util.ReasonNoAccessGrant},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Issue(ctx, tc.email, tc.moduleID)
			require.ErrorIs(t, err, util.ErrAccessDenied)
			assert.Equal(t, tc.reason, util.DenialReason(err))
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newVideoTokenService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 2)
	testutil.Grant(t, f.db, student.ID, course.ID)

	issued, err := s.Issue(ctx, "Asha@Example.com", modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Minute), issued.ExpiresAt)

	desc, err := s.Verify(ctx, issued.Token, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", desc.Email)
	assert.Equal(t, course.ID, desc.CourseID)
	assert.Equal(t, "dQw4w9WgXc1", desc.YouTubeID)

	// 有效期内可重复校验
	again, err := s.Verify(ctx, issued.Token, modules[0].ID)
	require.NoError(t, err)
	assert.Equal(t, desc, again)

	// 令牌只对签发时的课时有效
	_, err = s.Verify(ctx, issued.Token, modules[1].ID)
	require.ErrorIs(t, err, util.ErrAccessDenied)
	assert.Equal(t, util.ReasonScopeMismatch, util.DenialReason(err))
}

func TestVerifyExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newVideoTokenService(f)
	student := testutil.CreateStudent(t, f.db, "ravi@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)
	testutil.Grant(t, f.db, student.ID, course.ID)

	issued, err := s.Issue(ctx, student.Email, modules[0].ID)
	require.NoError(t, err)

	_, err = s.Verify(ctx, "not-a-token", modules[0].ID)
	assert.Equal(t, util.ReasonBadToken, util.DenialReason(err))

	// Web 登录令牌不能当视频令牌
	webToken, err := util.GenerateJWT(student, f.cfg.Video.TokenSecret, f.clock.Now(), time.Hour)
	require.NoError(t, err)
	_, err = s.Verify(ctx, webToken, modules[0].ID)
	assert.Equal(t, util.ReasonBadToken, util.DenialReason(err))

	f.clock.Advance(time.Minute + time.Second)
	_, err = s.Verify(ctx, issued.Token, modules[0].ID)
	require.ErrorIs(t, err, util.ErrAccessDenied)
	assert.Equal(t, util.ReasonBadToken, util.DenialReason(err))
}

func TestVerifyRechecksGrantAndModule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newVideoTokenService(f)
	student := testutil.CreateStudent(t, f.db, "meera@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 2)
	testutil.Grant(t, f.db, student.ID, course.ID)

	first, err := s.Issue(ctx, student.Email, modules[0].ID)
	require.NoError(t, err)
	second, err := s.Issue(ctx, student.Email, modules[1].ID)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&model.Module{}, modules[1].ID).Error)
	_, err = s.Verify(ctx, second.Token, modules[1].ID)
	assert.ErrorIs(t, err, util.ErrVideoNotFound)

	_, err = f.access.Revoke(student.ID, course.ID)
	require.NoError(t, err)
	_, err = s.Verify(ctx, first.Token, modules[0].ID)
	require.ErrorIs(t, err, util.ErrAccessDenied)
	assert.Equal(t, util.ReasonNoAccessGrant, util.DenialReason(err))
}

func TestVerifyRejectsNonYouTubeLocator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newVideoTokenService(f)
	student := testutil.CreateStudent(t, f.db, "dev@example.com")
	course, modules := testutil.CreateCourse(t, f.db, "Sankalp", 1)
	testutil.Grant(t, f.db, student.ID, course.ID)

	require.NoError(t, f.db.Model(&model.Module{}).Where("id = ?", modules[0].ID).
		Update("video_url", "https://vimeo.com/123456").Error)

	issued, err := s.Issue(ctx, student.Email, modules[0].ID)
	require.NoError(t, err)
	_, err = s.Verify(ctx, issued.Token, modules[0].ID)
	assert.ErrorIs(t, err, util.ErrInvalidVideoURL)
}
