package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Mail
}

func (m *recordingMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func (m *recordingMailer) all() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}

var otpPattern = regexp.MustCompile(`letter-spacing:4px">(\d{6})<`)

// lastOTP 从最近一封发给 to 的验证码邮件里取出验证码
func (m *recordingMailer) lastOTP(t *testing.T, to string) string {
	t.Helper()
	sent := m.all()
	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To != to {
			continue
		}
		if match := otpPattern.FindStringSubmatch(sent[i].HTML); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no OTP mail sent to %s", to)
	return ""
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		JWT:    config.JWTConfig{Secret: "unit-test-secret", ExpireTime: 24 * time.Hour},
		Mobile: config.MobileConfig{SessionTTL: 7 * 24 * time.Hour, RefreshTTL: 30 * 24 * time.Hour},
		Video:  config.VideoConfig{TokenSecret: "video-test-secret", TokenTTL: time.Minute},
		OTP:    config.OTPConfig{TTL: 10 * time.Minute},
		Mail:   config.MailConfig{Provider: "console", From: "no-reply@example.com", AdminEmail: "admin@example.com"},
	}
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

type fixture struct {
	db     *gorm.DB
	cfg    *config.Config
	clock  *testutil.Clock
	mailer *recordingMailer

	students    *repository.StudentRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	access      *repository.AccessRepository
	sessions    *repository.SessionRepository
	progress    *repository.ProgressRepository
	events      *repository.SyncEventRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		db:          db,
		cfg:         testConfig(),
		clock:       testutil.NewClock(),
		mailer:      &recordingMailer{},
		students:    repository.NewStudentRepository(db),
		courses:     repository.NewCourseRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		access:      repository.NewAccessRepository(db),
		sessions:    repository.NewSessionRepository(db),
		progress:    repository.NewProgressRepository(db),
		events:      repository.NewSyncEventRepository(db),
	}
}

func (f *fixture) mail() *MailService {
	return NewMailService(f.mailer, f.cfg)
}

func (f *fixture) progressService() *ProgressService {
	s := NewProgressService(f.db, f.courses, f.progress, f.access)
	s.now = f.clock.Now
	return s
}

func TestRecordingMailerHelper(t *testing.T) {
	m := &recordingMailer{}
	svc := NewMailService(m, testConfig())
	require.NoError(t, svc.SendOTP(context.Background(), "a@example.com", "A", "123456", OTPRegister))
	require.Equal(t, "123456", m.lastOTP(t, "a@example.com"))
}
