package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

type OTPPurpose string

const (
	OTPRegister OTPPurpose = "register"
	OTPReset    OTPPurpose = "reset"
)

type otpEntry struct {
	Code      string          `json:"code"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const defaultOTPMaxAttempts = 5

// OTPService 一次性验证码存放在 Redis，按用途分命名空间。
// Redis 过期时间是有效期的两倍，超过有效期但仍在 Redis 中的条目会报"已过期"而不是"不存在"。
// 错误次数单独计数，达到 MaxAttempts 后验证码作废，必须重新申请。
type OTPService struct {
	Redis       *redis.Client
	TTL         time.Duration
	MaxAttempts int
	now         func() time.Time
}

func NewOTPService(rdb *redis.Client, ttl time.Duration) *OTPService {
	return &OTPService{
		Redis:       rdb,
		TTL:         ttl,
		MaxAttempts: defaultOTPMaxAttempts,
		now:         time.Now,
	}
}

func otpKey(purpose OTPPurpose, email string) string {
	return "otp:" + string(purpose) + ":" + repository.NormalizeEmail(email)
}

func attemptsKey(key string) string {
	return key + ":attempts"
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue 生成新验证码并覆盖同一邮箱之前的条目
func (s *OTPService) Issue(ctx context.Context, purpose OTPPurpose, email string, payload interface{}) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	entry := otpEntry{Code: code, ExpiresAt: s.now().Add(s.TTL)}
	if payload != nil {
		if entry.Payload, err = json.Marshal(payload); err != nil {
			return "", err
		}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return "", err
	}
	key := otpKey(purpose, email)
	if err := s.Redis.Set(ctx, key, raw, 2*s.TTL).Err(); err != nil {
		return "", err
	}
	// 新验证码重新计数
	if err := s.Redis.Del(ctx, attemptsKey(key)).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify 校验验证码，成功时把注册信息解码到 payload；不删除条目
func (s *OTPService) Verify(ctx context.Context, purpose OTPPurpose, email, code string, payload interface{}) error {
	key := otpKey(purpose, email)
	raw, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return util.ErrOTPNotFound
	}
	if err != nil {
		return err
	}

	var entry otpEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.Redis.Del(ctx, key, attemptsKey(key))
		return util.ErrOTPNotFound
	}

	if !s.now().Before(entry.ExpiresAt) {
		// 过期条目直接删除，需要重新发起
		s.Redis.Del(ctx, key, attemptsKey(key))
		return util.ErrOTPExpired
	}

	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		return s.recordFailure(ctx, key)
	}

	if payload != nil && len(entry.Payload) > 0 {
		if err := json.Unmarshal(entry.Payload, payload); err != nil {
			return err
		}
	}
	return nil
}

// recordFailure 累加错误次数，达到上限时连同验证码一起删除
func (s *OTPService) recordFailure(ctx context.Context, key string) error {
	counter := attemptsKey(key)
	n, err := s.Redis.Incr(ctx, counter).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		s.Redis.Expire(ctx, counter, 2*s.TTL)
	}
	if s.MaxAttempts > 0 && n >= int64(s.MaxAttempts) {
		s.Redis.Del(ctx, key, counter)
		return util.ErrOTPAttempts
	}
	return util.ErrOTPInvalid
}

func (s *OTPService) Consume(ctx context.Context, purpose OTPPurpose, email string) error {
	key := otpKey(purpose, email)
	return s.Redis.Del(ctx, key, attemptsKey(key)).Err()
}
