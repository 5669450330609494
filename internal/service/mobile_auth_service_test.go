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

func newMobileAuthService(f *fixture) *MobileAuthService {
	s := NewMobileAuthService(f.db, f.students, f.sessions, f.cfg)
	s.now = f.clock.Now
	return s
}

func mobileLogin(email, deviceID string) MobileLoginRequest {
	return MobileLoginRequest{
		Email:      email,
		Password:   testutil.Password,
		DeviceID:   deviceID,
		DeviceType: "android",
		DeviceName: "Pixel 7",
		AppVersion: "1.4.0",
	}
}

func TestMobileLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	s := newMobileAuthService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")

	req := mobileLogin("asha@example.com", "pixel-7")
	req.Password = "nope"
	_, err := s.Login(req)
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	res, err := s.Login(mobileLogin("asha@example.com", "pixel-7"))
	require.NoError(t, err)
	assert.Equal(t, student.ID, res.User.ID)
	assert.NotEmpty(t, res.Tokens.RefreshToken)
	assert.Equal(t, f.clock.Now().Add(f.cfg.Mobile.SessionTTL), res.Tokens.ExpiresAt)

	claims, err := s.Authenticate(res.Tokens.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "pixel-7", claims.DeviceID)
	assert.Equal(t, util.ChannelMobile, claims.Channel)

	// 服务端只保存令牌摘要
	var session model.MobileSession
	require.NoError(t, f.db.Where("user_id = ?", student.ID).First(&session).Error)
	assert.Equal(t, util.HashToken(res.Tokens.SessionToken), session.SessionTokenHash)
	assert.NotEqual(t, res.Tokens.SessionToken, session.SessionTokenHash)

	device, err := f.sessions.FindDevice(student.ID, "pixel-7")
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", device.AppVersion)

	// Web 令牌和刷新令牌都不能当会话令牌
	webToken, err := util.GenerateJWT(student, f.cfg.JWT.Secret, f.clock.Now(), time.Hour)
	require.NoError(t, err)
	_, err = s.Authenticate(webToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
	_, err = s.Authenticate(res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	f.clock.Advance(f.cfg.Mobile.SessionTTL + time.Second)
	_, err = s.Authenticate(res.Tokens.SessionToken)
	assert.Error(t, err)
}

func TestMobileReloginReplacesDeviceSession(t *testing.T) {
	f := newFixture(t)
	s := newMobileAuthService(f)
	testutil.CreateStudent(t, f.db, "ravi@example.com")

	first, err := s.Login(mobileLogin("ravi@example.com", "iphone"))
	require.NoError(t, err)
	other, err := s.Login(mobileLogin("ravi@example.com", "ipad"))
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	second, err := s.Login(mobileLogin("ravi@example.com", "iphone"))
	require.NoError(t, err)

	_, err = s.Authenticate(first.Tokens.SessionToken)
	assert.ErrorIs(t, err, util.ErrSessionExpired)
	_, err = s.Authenticate(second.Tokens.SessionToken)
	assert.NoError(t, err)
	_, err = s.Authenticate(other.Tokens.SessionToken)
	assert.NoError(t, err)

	var devices int64
	require.NoError(t, f.db.Model(&model.Device{}).Count(&devices).Error)
	assert.EqualValues(t, 2, devices)
}

func TestMobileRefreshRotatesSessionToken(t *testing.T) {
	f := newFixture(t)
	s := newMobileAuthService(f)
	testutil.CreateStudent(t, f.db, "meera@example.com")

	res, err := s.Login(mobileLogin("meera@example.com", "pixel-7"))
	require.NoError(t, err)

	_, err = s.Refresh(res.Tokens.SessionToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)
	_, err = s.Refresh("garbage")
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	f.clock.Advance(time.Hour)
	tokens, err := s.Refresh(res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, tokens.RefreshToken)
	assert.Equal(t, f.clock.Now().Add(f.cfg.Mobile.SessionTTL), tokens.ExpiresAt)

	_, err = s.Authenticate(res.Tokens.SessionToken)
	assert.ErrorIs(t, err, util.ErrSessionExpired)
	_, err = s.Authenticate(tokens.SessionToken)
	assert.NoError(t, err)

	// 刷新令牌仍可继续使用
	_, err = s.Refresh(res.Tokens.RefreshToken)
	assert.NoError(t, err)
}

func TestMobileLogout(t *testing.T) {
	f := newFixture(t)
	s := newMobileAuthService(f)
	testutil.CreateStudent(t, f.db, "dev@example.com")

	res, err := s.Login(mobileLogin("dev@example.com", "pixel-7"))
	require.NoError(t, err)

	require.NoError(t, s.Logout(res.Tokens.SessionToken))
	_, err = s.Authenticate(res.Tokens.SessionToken)
	assert.ErrorIs(t, err, util.ErrSessionExpired)
	_, err = s.Refresh(res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, util.ErrInvalidToken)

	// 重复登出无副作用
	assert.NoError(t, s.Logout(res.Tokens.SessionToken))
}
