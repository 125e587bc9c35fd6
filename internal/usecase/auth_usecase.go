package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"clinic-booking/config"
	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotAuthenticated   = errors.New("no authenticated session")
)

type AuthUsecase interface {
	AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	DoctorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	admin        config.AdminConfig
	doctorRepo   repository.DoctorRepository
	sessionRepo  repository.SessionRepository
	jwtService   *jwt.JWTService
	throttle     *service.LoginThrottle
	auditService service.AuditService
	metrics      *metrics.Metrics
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	admin config.AdminConfig,
	doctorRepo repository.DoctorRepository,
	sessionRepo repository.SessionRepository,
	jwtService *jwt.JWTService,
	throttle *service.LoginThrottle,
	auditService service.AuditService,
	m *metrics.Metrics,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		admin:        admin,
		doctorRepo:   doctorRepo,
		sessionRepo:  sessionRepo,
		jwtService:   jwtService,
		throttle:     throttle,
		auditService: auditService,
		metrics:      m,
	}
}

func (u *authUsecase) AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ip := middleware.GetClientIPFromContext(ctx)
	username := strings.TrimSpace(req.Username)

	attempt, err := u.acquireAttempt(ctx, entity.RoleAdmin, username, ip)
	if err != nil {
		return nil, err
	}

	// An empty configured password disables the account.
	if u.admin.Password == "" || !constantTimeEqual(username, u.admin.Username) || !constantTimeEqual(req.Password, u.admin.Password) {
		u.failLogin(ctx, entity.RoleAdmin, entity.AuditActionAdminLoginFail, username, ip, attempt)
		return nil, ErrInvalidCredentials
	}

	resp, err := u.issueToken(ctx, jwt.Principal{Role: entity.RoleAdmin, Username: u.admin.Username})
	if err != nil {
		return nil, err
	}

	u.throttle.Reset(ctx, ip)
	u.metrics.RecordLogin(entity.RoleAdmin, metrics.LoginSuccess)
	u.auditService.Record(ctx, entity.AuditActionAdminLogin,
		fmt.Sprintf("Administrator %s logged in from %s", u.admin.Username, ip), service.Actor(u.admin.Username))

	return resp, nil
}

func (u *authUsecase) DoctorLogin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ip := middleware.GetClientIPFromContext(ctx)
	username := strings.TrimSpace(req.Username)

	attempt, err := u.acquireAttempt(ctx, entity.RoleDoctor, username, ip)
	if err != nil {
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByUsername(u.db.WithContext(ctx), username)
	if err != nil {
		u.log.Warnf("Failed to find doctor by username: %+v", err)
		return nil, err
	}
	if doctor == nil || !doctor.HasCredentials() ||
		bcrypt.CompareHashAndPassword([]byte(doctor.PasswordHash), []byte(req.Password)) != nil {
		u.failLogin(ctx, entity.RoleDoctor, entity.AuditActionDoctorLoginFail, username, ip, attempt)
		return nil, ErrInvalidCredentials
	}

	resp, err := u.issueToken(ctx, jwt.Principal{Role: entity.RoleDoctor, Username: username, DoctorID: doctor.ID})
	if err != nil {
		return nil, err
	}
	resp.Doctor = converter.DoctorToResponse(doctor)

	u.throttle.Reset(ctx, ip)
	u.metrics.RecordLogin(entity.RoleDoctor, metrics.LoginSuccess)
	u.auditService.Record(ctx, entity.AuditActionDoctorLogin,
		fmt.Sprintf("Doctor #%d %s logged in from %s", doctor.ID, doctor.Name, ip), service.Actor(username))

	return resp, nil
}

// Logout revokes the token the current request was authenticated with.
func (u *authUsecase) Logout(ctx context.Context) error {
	p, ok := middleware.GetPrincipalFromContext(ctx)
	if !ok {
		return ErrNotAuthenticated
	}
	tokenID, ok := middleware.GetTokenIDFromContext(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	if err := u.sessionRepo.Revoke(ctx, p.Subject(), tokenID); err != nil {
		u.log.Warnf("Failed to revoke session: %+v", err)
		return err
	}
	return nil
}

// acquireAttempt counts the attempt before any credential is compared.
func (u *authUsecase) acquireAttempt(ctx context.Context, role, username, ip string) (int, error) {
	attempt, err := u.throttle.Acquire(ctx, ip)
	if err != nil {
		u.metrics.RecordLogin(role, metrics.LoginBlocked)
		u.auditService.Record(ctx, entity.AuditActionLoginBlocked,
			fmt.Sprintf("Blocked %s login attempt for %q from %s", role, username, ip), nil)
		return 0, err
	}
	return attempt, nil
}

func (u *authUsecase) failLogin(ctx context.Context, role string, action entity.AuditAction, username, ip string, count int) {
	u.metrics.RecordLogin(role, metrics.LoginFailure)
	u.auditService.Record(ctx, action,
		fmt.Sprintf("Failed %s login for %q from %s (attempt %d)", role, username, ip, count), nil)
}

func (u *authUsecase) issueToken(ctx context.Context, p jwt.Principal) (*dto.LoginResponse, error) {
	accessToken, tokenID, err := u.jwtService.GenerateAccessToken(p)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	if err := u.sessionRepo.Store(ctx, p.Subject(), tokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:        p.Role,
	}, nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
