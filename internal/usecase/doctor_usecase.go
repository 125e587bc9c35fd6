package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/jwt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound              = errors.New("doctor not found")
	ErrDoctorUsernameExists        = errors.New("username already exists")
	ErrDoctorCredentialsIncomplete = errors.New("username and password must be set together")
	ErrInvalidDoctor               = errors.New("name and specialty are required")
)

type DoctorUsecase interface {
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	GetDoctor(ctx context.Context, doctorID int64) (*dto.DoctorResponse, error)
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, doctorID int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateCredentials(ctx context.Context, doctorID int64, req *dto.UpdateDoctorCredentialsRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID int64) error
}

type doctorUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	sessionRepo     repository.SessionRepository
	calendarCache   *service.CalendarCache
	auditService    service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	sessionRepo repository.SessionRepository,
	calendarCache *service.CalendarCache,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		sessionRepo:     sessionRepo,
		calendarCache:   calendarCache,
		auditService:    auditService,
	}
}

func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAllWithAppointmentCount(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsWithCountToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID int64) (*dto.DoctorResponse, error) {
	db := u.db.WithContext(ctx)

	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	count, err := u.appointmentRepo.CountByDoctor(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to count appointments of doctor %d: %+v", doctorID, err)
		return nil, err
	}

	resp := converter.DoctorToResponse(doctor)
	resp.AppointmentCount = count
	return resp, nil
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	name := strings.TrimSpace(req.Name)
	specialty := strings.TrimSpace(req.Specialty)
	if name == "" || specialty == "" {
		return nil, ErrInvalidDoctor
	}

	username := strings.TrimSpace(req.Username)
	if (username == "") != (req.Password == "") {
		return nil, ErrDoctorCredentialsIncomplete
	}

	doctor := &entity.Doctor{
		Name:      name,
		Specialty: specialty,
	}
	if username != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			u.log.Warnf("Failed to hash password: %+v", err)
			return nil, err
		}
		doctor.Username = &username
		doctor.PasswordHash = string(hashedPassword)
	}

	if err := u.doctorRepo.Create(u.db.WithContext(ctx), doctor); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrDoctorUsernameExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionAddDoctor,
		fmt.Sprintf("Added doctor #%d %s (%s)", doctor.ID, doctor.Name, doctor.Specialty),
		service.Actor(actorFromContext(ctx)))

	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID int64, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	name := strings.TrimSpace(req.Name)
	specialty := strings.TrimSpace(req.Specialty)
	if name == "" || specialty == "" {
		return nil, ErrInvalidDoctor
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	oldName, oldSpecialty := doctor.Name, doctor.Specialty
	doctor.Name = name
	doctor.Specialty = specialty

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor %d: %+v", doctorID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.auditService.Record(ctx, entity.AuditActionUpdateDoctor,
		fmt.Sprintf("Updated doctor #%d: %s (%s) -> %s (%s)", doctor.ID, oldName, oldSpecialty, doctor.Name, doctor.Specialty),
		service.Actor(actorFromContext(ctx)))

	return converter.DoctorToResponse(doctor), nil
}

// UpdateCredentials sets the doctor's login and ends every session issued under the old one.
func (u *doctorUsecase) UpdateCredentials(ctx context.Context, doctorID int64, req *dto.UpdateDoctorCredentialsRequest) (*dto.DoctorResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrDoctorCredentialsIncomplete
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	owner, err := u.doctorRepo.FindByUsername(tx, username)
	if err != nil {
		u.log.Warnf("Failed to find doctor by username: %+v", err)
		return nil, err
	}
	if owner != nil && owner.ID != doctor.ID {
		return nil, ErrDoctorUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}
	doctor.Username = &username
	doctor.PasswordHash = string(hashedPassword)

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrDoctorUsernameExists
		}
		u.log.Warnf("Failed to update credentials of doctor %d: %+v", doctorID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.revokeSessions(ctx, doctor.ID)
	u.auditService.Record(ctx, entity.AuditActionUpdateDoctorCredentials,
		fmt.Sprintf("Updated credentials of doctor #%d, username %s", doctor.ID, username),
		service.Actor(actorFromContext(ctx)))

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor removes the doctor together with every appointment booked with them.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID int64) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorRepo.FindByID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	removed, err := u.appointmentRepo.DeleteByDoctor(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete appointments of doctor %d: %+v", doctorID, err)
		return err
	}

	affectedRows, err := u.doctorRepo.Delete(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed delete doctor: %+v", err)
		return err
	}
	if affectedRows == 0 {
		return ErrDoctorNotFound
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.calendarCache.InvalidateDoctor(ctx, doctorID)
	u.revokeSessions(ctx, doctorID)
	u.auditService.Record(ctx, entity.AuditActionDeleteDoctor,
		fmt.Sprintf("Deleted doctor #%d %s (%s) with %d appointments", doctor.ID, doctor.Name, doctor.Specialty, removed),
		service.Actor(actorFromContext(ctx)))

	u.log.Infof("Doctor deleted: id=%d, appointments=%d", doctorID, removed)
	return nil
}

func (u *doctorUsecase) revokeSessions(ctx context.Context, doctorID int64) {
	subject := jwt.Principal{Role: entity.RoleDoctor, DoctorID: doctorID}.Subject()
	if err := u.sessionRepo.RevokeAll(ctx, subject); err != nil {
		u.log.Warnf("Failed to revoke sessions of doctor %d: %+v", doctorID, err)
	}
}
