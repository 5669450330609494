package service

import (
	"context"
	"testing"
	"time"

	"sankalp_backend/internal/testutil"
	"sankalp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOTPService(t *testing.T) (*OTPService, *testutil.Clock) {
	clock := testutil.NewClock()
	s := NewOTPService(newRedis(t), 10*time.Minute)
	s.now = clock.Now
	return s, clock
}

func TestOTPIssueAndVerifyCarriesPayload(t *testing.T) {
	ctx := context.Background()
	s, _ := newOTPService(t)

	code, err := s.Issue(ctx, OTPRegister, "Asha@Example.com", pendingRegistration{Name: "Asha", Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Len(t, code, 6)

	var pending pendingRegistration
	require.NoError(t, s.Verify(ctx, OTPRegister, "asha@example.com", code, &pending))
	assert.Equal(t, "Asha", pending.Name)

	// 校验不删除条目
	require.NoError(t, s.Verify(ctx, OTPRegister, "asha@example.com", code, nil))
}

func TestOTPWrongCodeAndPurposeIsolation(t *testing.T) {
	ctx := context.Background()
	s, _ := newOTPService(t)

	code, err := s.Issue(ctx, OTPReset, "ravi@example.com", nil)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "ravi@example.com", wrong, nil), util.ErrOTPInvalid)
	assert.ErrorIs(t, s.Verify(ctx, OTPRegister, "ravi@example.com", code, nil), util.ErrOTPNotFound)
	assert.NoError(t, s.Verify(ctx, OTPReset, "ravi@example.com", code, nil))
}

func TestOTPExpiryRemovesEntry(t *testing.T) {
	ctx := context.Background()
	s, clock := newOTPService(t)

	code, err := s.Issue(ctx, OTPRegister, "meera@example.com", nil)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	assert.ErrorIs(t, s.Verify(ctx, OTPRegister, "meera@example.com", code, nil), util.ErrOTPExpired)
	assert.ErrorIs(t, s.Verify(ctx, OTPRegister, "meera@example.com", code, nil), util.ErrOTPNotFound)
}

func TestOTPReissueReplacesAndConsumeDeletes(t *testing.T) {
	ctx := context.Background()
	s, _ := newOTPService(t)

	first, err := s.Issue(ctx, OTPReset, "dev@example.com", nil)
	require.NoError(t, err)
	second, err := s.Issue(ctx, OTPReset, "dev@example.com", nil)
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, s.Verify(ctx, OTPReset, "dev@example.com", first, nil), util.ErrOTPInvalid)
	}
	require.NoError(t, s.Verify(ctx, OTPReset, "dev@example.com", second, nil))

	require.NoError(t, s.Consume(ctx, OTPReset, "dev@example.com"))
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "dev@example.com", second, nil), util.ErrOTPNotFound)
}

func wrongCode(code string) string {
	if code == "123456" {
		return "654321"
	}
	return "123456"
}

func TestOTPLocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	s, _ := newOTPService(t)
	s.MaxAttempts = 3

	code, err := s.Issue(ctx, OTPReset, "asha@example.com", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", wrongCode(code), nil), util.ErrOTPInvalid)
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", wrongCode(code), nil), util.ErrOTPInvalid)
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", wrongCode(code), nil), util.ErrOTPAttempts)

	// 作废后正确的验证码也不再可用
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", code, nil), util.ErrOTPNotFound)

	// 重新申请后计数清零
	code, err = s.Issue(ctx, OTPReset, "asha@example.com", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", wrongCode(code), nil), util.ErrOTPInvalid)
	assert.ErrorIs(t, s.Verify(ctx, OTPReset, "asha@example.com", wrongCode(code), nil), util.ErrOTPInvalid)
	assert.NoError(t, s.Verify(ctx, OTPReset, "asha@example.com", code, nil))
}
