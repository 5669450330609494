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

func newAuthService(t *testing.T, f *fixture) *AuthService {
	otp := NewOTPService(newRedis(t), f.cfg.OTP.TTL)
	otp.now = f.clock.Now
	s := NewAuthService(f.students, otp, f.mail(), f.cfg)
	s.now = f.clock.Now
	return s
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newAuthService(t, f)

	req := RegisterRequest{Name: "Asha", Email: "Asha@Example.com", Phone: "9876543210", Password: "hunter22"}
	require.NoError(t, s.StartRegistration(ctx, req))

	// 验证前不创建账号
	_, err := f.students.FindByEmail("asha@example.com")
	require.Error(t, err)

	code := f.mailer.lastOTP(t, "asha@example.com")
	student, err := s.VerifyRegistration(ctx, "asha@example.com", code)
	require.NoError(t, err)
	assert.NotZero(t, student.ID)
	assert.Equal(t, "asha@example.com", student.Email)
	assert.Equal(t, model.RoleStudent, student.Role)
	assert.NotEqual(t, "hunter22", student.Password)

	// 验证码用过即删
	_, err = s.VerifyRegistration(ctx, "asha@example.com", code)
	assert.ErrorIs(t, err, util.ErrOTPNotFound)

	assert.ErrorIs(t, s.StartRegistration(ctx, req), util.ErrEmailRegistered)
}

func TestRegistrationWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newAuthService(t, f)

	require.NoError(t, s.StartRegistration(ctx, RegisterRequest{Name: "Ravi", Email: "ravi@example.com", Password: "hunter22"}))
	code := f.mailer.lastOTP(t, "ravi@example.com")
	wrong := "123456"
	if code == wrong {
		wrong = "654321"
	}

	_, err := s.VerifyRegistration(ctx, "ravi@example.com", wrong)
	assert.ErrorIs(t, err, util.ErrOTPInvalid)
}

func TestLoginIssuesWebToken(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(t, f)
	student := testutil.CreateStudent(t, f.db, "meera@example.com")

	_, _, err := s.Login("meera@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = s.Login("nobody@example.com", testutil.Password)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	got, token, err := s.Login("MEERA@example.com", testutil.Password)
	require.NoError(t, err)
	assert.Equal(t, student.ID, got.ID)

	claims, err := s.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, student.ID, claims.UserID)
	assert.Equal(t, util.ChannelWeb, claims.Channel)

	reloaded, err := f.students.FindByID(student.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLogin)

	// 移动端会话令牌不能当 Web 令牌使用
	mobileToken, err := util.GenerateSessionJWT(student, "device-1", f.cfg.JWT.Secret, f.clock.Now(), time.Hour)
	require.NoError(t, err)
	_, err = s.Authenticate(mobileToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	f.clock.Advance(f.cfg.JWT.ExpireTime + time.Second)
	_, err = s.Authenticate(token)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := newAuthService(t, f)
	testutil.CreateStudent(t, f.db, "dev@example.com")

	assert.ErrorIs(t, s.ForgotPassword(ctx, "ghost@example.com"), util.ErrStudentNotFound)

	require.NoError(t, s.ForgotPassword(ctx, "dev@example.com"))
	code := f.mailer.lastOTP(t, "dev@example.com")
	require.NoError(t, s.VerifyResetOTP(ctx, "dev@example.com", code))

	err := s.ResetPassword(ctx, "dev@example.com", code, "123")
	assert.True(t, util.IsValidation(err))

	require.NoError(t, s.ResetPassword(ctx, "dev@example.com", code, "new-password"))
	_, _, err = s.Login("dev@example.com", testutil.Password)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, _, err = s.Login("dev@example.com", "new-password")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.ResetPassword(ctx, "dev@example.com", code, "another-one"), util.ErrOTPNotFound)

	sent := f.mailer.all()
	assert.Equal(t, "Password reset successful", sent[len(sent)-1].Subject)
}

func TestUpdateProfileKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(t, f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	testutil.CreateStudent(t, f.db, "taken@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Yoga", 1)
	testutil.Grant(t, f.db, student.ID, course.ID)

	_, err := s.UpdateProfile(student.ID, UpdateProfileRequest{Name: "Asha", Email: "Taken@example.com"})
	assert.ErrorIs(t, err, util.ErrEmailInUse)

	updated, err := s.UpdateProfile(student.ID, UpdateProfileRequest{Name: "Asha K", Email: "Asha.K@example.com", Phone: "1234567890"})
	require.NoError(t, err)
	assert.Equal(t, student.ID, updated.ID)
	assert.Equal(t, "asha.k@example.com", updated.Email)
	assert.Equal(t, "Asha K", updated.Name)

	// 授权按 ID 关联，改邮箱后依旧有效
	ok, err := f.access.HasAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.UpdateProfile(9999, UpdateProfileRequest{Name: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, util.ErrStudentNotFound)
}

func TestContactNotifiesAdminAndSender(t *testing.T) {
	f := newFixture(t)
	s := newAuthService(t, f)

	require.NoError(t, s.Contact(context.Background(), ContactForm{Name: "Visitor", Email: "v@example.com", Message: "Hello"}))
	sent := f.mailer.all()
	require.Len(t, sent, 2)
	assert.Equal(t, "admin@example.com", sent[0].To)
	assert.Equal(t, "v@example.com", sent[0].ReplyTo)
	assert.Equal(t, "v@example.com", sent[1].To)
}
