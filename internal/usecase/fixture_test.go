package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-booking/config"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/testutil"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "s3cret"
	testSNILS         = "123-456-789 01"
	testPhone         = "+7 (999) 123-45-67"
)

type fixture struct {
	db    *gorm.DB
	redis *redis.Client
	mr    *miniredis.Miniredis
	log   *logrus.Logger
	hook  *test.Hook
	now   time.Time

	doctorRepo      domainRepo.DoctorRepository
	appointmentRepo domainRepo.AppointmentRepository
	sessionRepo     domainRepo.SessionRepository
	jwtService      *jwt.JWTService
	metrics         *metrics.Metrics
	calendarCache   *service.CalendarCache
	settings        ClinicSettings

	doctors      DoctorUsecase
	appointments AppointmentUsecase
	availability AvailabilityUsecase
	auth         AuthUsecase
	auditLogs    AuditLogUsecase
}

// newFixture wires every usecase against SQLite and miniredis. The clinic clock starts on
// Monday 2024-06-03 at 08:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	client, mr := testutil.NewTestRedis(t)
	log, hook := testutil.NewTestLogger()

	f := &fixture{
		db:              db,
		redis:           client,
		mr:              mr,
		log:             log,
		hook:            hook,
		now:             time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC),
		doctorRepo:      repository.NewDoctorRepository(),
		appointmentRepo: repository.NewAppointmentRepository(),
		sessionRepo:     repository.NewSessionRepository(client),
		jwtService:      jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour}),
		metrics:         metrics.NewNopMetrics(),
	}
	clock := func() time.Time { return f.now }

	settings := ClinicSettings{Hours: schedule.DefaultWorkingHours, Location: time.UTC, Now: clock}
	auditService := service.NewAuditService(db, log, repository.NewAuditLogRepository())
	cache := service.NewCalendarCache(client, 5*time.Minute, log, f.metrics)
	f.calendarCache = cache
	f.settings = settings
	guard := service.NewBookingGuard(log)
	t.Cleanup(guard.Stop)
	throttle := service.NewLoginThrottle(repository.NewLoginAttemptRepository(client), log).WithClock(clock)

	f.doctors = NewDoctorUsecase(db, log, f.doctorRepo, f.appointmentRepo, f.sessionRepo, cache, auditService)
	f.appointments = NewAppointmentUsecase(db, log, f.doctorRepo, f.appointmentRepo, guard, cache, auditService, f.metrics, settings)
	f.availability = NewAvailabilityUsecase(db, log, f.doctorRepo, f.appointmentRepo, cache, settings)
	f.auth = NewAuthUsecase(db, log, config.AdminConfig{Username: testAdminUsername, Password: testAdminPassword},
		f.doctorRepo, f.sessionRepo, f.jwtService, throttle, auditService, f.metrics)
	f.auditLogs = NewAuditLogUsecase(db, log, repository.NewAuditLogRepository())

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.mr.FastForward(d)
}

func adminContext() context.Context {
	return middleware.WithPrincipal(context.Background(),
		jwt.Principal{Role: entity.RoleAdmin, Username: testAdminUsername}, "admin-token")
}

func doctorContext(doctorID int64, username string) context.Context {
	return middleware.WithPrincipal(context.Background(),
		jwt.Principal{Role: entity.RoleDoctor, Username: username, DoctorID: doctorID}, "doctor-token")
}

func ipContext(ip string) context.Context {
	return middleware.WithClientIP(context.Background(), ip)
}

func (f *fixture) auditEntries(t *testing.T, action entity.AuditAction) []entity.AuditLog {
	t.Helper()

	var logs []entity.AuditLog
	require.NoError(t, f.db.Where("action = ?", action).Order("id ASC").Find(&logs).Error)
	return logs
}
