package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/service"
	"clinic-booking/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAppointmentForbidden = errors.New("you are not allowed to cancel this appointment")
	ErrSlotTaken            = errors.New("this time slot is already booked")
	ErrInvalidAppointment   = errors.New("invalid appointment request")
	ErrNotADoctor           = errors.New("doctor identity not found in context")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, req *dto.CancelAppointmentRequest) error
	ListPatientAppointments(ctx context.Context, query *dto.PatientAppointmentsQuery) (*dto.AppointmentListResponse, error)
	ListDoctorAppointments(ctx context.Context, date string) (*dto.AppointmentListResponse, error)
	ListAllAppointments(ctx context.Context, query *dto.AppointmentFilterQuery) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	bookingGuard    *service.BookingGuard
	calendarCache   *service.CalendarCache
	auditService    service.AuditService
	metrics         *metrics.Metrics
	settings        ClinicSettings
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	bookingGuard *service.BookingGuard,
	calendarCache *service.CalendarCache,
	auditService service.AuditService,
	m *metrics.Metrics,
	settings ClinicSettings,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		bookingGuard:    bookingGuard,
		calendarCache:   calendarCache,
		auditService:    auditService,
		metrics:         m,
		settings:        settings,
	}
}

// CreateAppointment books a slot.
//
// Flow:
// 1. Validate the request against the booking grid
// 2. Check the doctor exists
// 3. Under the per-slot lock, re-check the slot and insert inside a transaction
// 4. A unique-index violation from a concurrent process is reported as ErrSlotTaken
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.validateBooking(req)
	if err != nil {
		u.metrics.RecordBooking(metrics.OutcomeRejected)
		return nil, err
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), appointment.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", appointment.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		u.metrics.RecordBooking(metrics.OutcomeRejected)
		return nil, ErrDoctorNotFound
	}

	if err := u.insertGuarded(ctx, appointment); err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			u.metrics.RecordBooking(metrics.OutcomeConflict)
		case errors.Is(err, ErrDoctorNotFound):
			u.metrics.RecordBooking(metrics.OutcomeRejected)
		}
		return nil, err
	}

	u.metrics.RecordBooking(metrics.OutcomeBooked)
	u.calendarCache.Invalidate(ctx, doctor.ID, monthOf(appointment.Date))
	u.auditService.Record(ctx, entity.AuditActionAddAppointment,
		fmt.Sprintf("Appointment #%d: %s with doctor #%d %s on %s at %s",
			appointment.ID, appointment.PatientName, doctor.ID, doctor.Name, appointment.Date, appointment.Time),
		service.Actor("phone:"+appointment.Phone))

	u.log.Infof("Appointment created: id=%d, doctor=%d, slot=%s %s", appointment.ID, doctor.ID, appointment.Date, appointment.Time)

	appointment.Doctor = doctor
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) insertGuarded(ctx context.Context, appointment *entity.Appointment) error {
	unlock := u.bookingGuard.Lock(appointment.DoctorID, appointment.Date, appointment.Time)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.appointmentRepo.FindBySlot(tx, appointment.DoctorID, appointment.Date, appointment.Time)
	if err != nil {
		u.log.Warnf("Failed to check slot: %+v", err)
		return err
	}
	if existing != nil {
		return ErrSlotTaken
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if mapped := insertError(err); mapped != nil {
			return mapped
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		if mapped := insertError(err); mapped != nil {
			return mapped
		}
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

// insertError maps constraint violations of an appointment insert to domain errors.
// The doctor may have been deleted after it was looked up.
func insertError(err error) error {
	switch {
	case isDuplicateKeyError(err, "idx_appointments_slot"):
		return ErrSlotTaken
	case isForeignKeyError(err):
		return ErrDoctorNotFound
	}
	return nil
}

// validateBooking normalizes the request and checks it against the grid and the clock.
func (u *appointmentUsecase) validateBooking(req *dto.CreateAppointmentRequest) (*entity.Appointment, error) {
	name := strings.TrimSpace(req.PatientName)
	snils := strings.TrimSpace(req.SNILS)
	rawPhone := strings.TrimSpace(req.Phone)
	date := strings.TrimSpace(req.Date)
	slotTime := strings.TrimSpace(req.Time)

	if req.DoctorID <= 0 || name == "" || snils == "" || rawPhone == "" || date == "" || slotTime == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidAppointment)
	}
	if !schedule.IsValidSNILS(snils) {
		return nil, fmt.Errorf("%w: snils must match the format 123-456-789 01", ErrInvalidAppointment)
	}
	phone := schedule.NormalizePhone(rawPhone)
	if len(phone) < schedule.PhoneDigits {
		return nil, fmt.Errorf("%w: phone must contain at least %d digits", ErrInvalidAppointment, schedule.PhoneDigits)
	}

	day, err := schedule.ParseDate(date, u.settings.location())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAppointment, err)
	}
	hour, err := schedule.ParseSlotTime(slotTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAppointment, err)
	}
	if err := schedule.CheckBookable(day, hour, u.settings.Hours, u.settings.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAppointment, err)
	}

	return &entity.Appointment{
		DoctorID:    req.DoctorID,
		PatientName: name,
		SNILS:       snils,
		Phone:       phone,
		Date:        day.Format(schedule.DateLayout),
		Time:        schedule.FormatHour(hour),
	}, nil
}

// CancelAppointment deletes an appointment for an administrator, or for a caller whose
// phone matches the booking after normalization.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, req *dto.CancelAppointmentRequest) error {
	db := u.db.WithContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(db, req.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %d: %+v", req.ID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	var actor string
	if p, ok := middleware.GetPrincipalFromContext(ctx); ok && p.Role == entity.RoleAdmin {
		actor = p.Username
	} else {
		claimed := schedule.NormalizePhone(req.Phone)
		if len(claimed) < schedule.PhoneDigits || claimed != schedule.NormalizePhone(appointment.Phone) {
			u.metrics.RecordBooking(metrics.OutcomeForbidden)
			return ErrAppointmentForbidden
		}
		actor = "phone:" + claimed
	}

	affectedRows, err := u.appointmentRepo.Delete(db, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %d: %+v", appointment.ID, err)
		return err
	}
	if affectedRows == 0 {
		return ErrAppointmentNotFound
	}

	u.metrics.RecordBooking(metrics.OutcomeCancelled)
	u.calendarCache.Invalidate(ctx, appointment.DoctorID, monthOf(appointment.Date))
	u.auditService.Record(ctx, entity.AuditActionDeleteAppointment,
		fmt.Sprintf("Cancelled appointment #%d with doctor #%d on %s at %s",
			appointment.ID, appointment.DoctorID, appointment.Date, appointment.Time),
		service.Actor(actor))

	u.log.Infof("Appointment cancelled: id=%d, doctor=%d", appointment.ID, appointment.DoctorID)
	return nil
}

// ListPatientAppointments finds bookings by phone, optionally narrowed by the patient name
// compared trimmed and case-insensitively.
func (u *appointmentUsecase) ListPatientAppointments(ctx context.Context, query *dto.PatientAppointmentsQuery) (*dto.AppointmentListResponse, error) {
	phone := schedule.NormalizePhone(query.Phone)
	if len(phone) < schedule.PhoneDigits {
		return nil, fmt.Errorf("%w: phone must contain at least %d digits", ErrInvalidAppointment, schedule.PhoneDigits)
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), entity.AppointmentFilter{Phone: phone})
	if err != nil {
		u.log.Warnf("Failed to find appointments by phone: %+v", err)
		return nil, err
	}

	if name := strings.TrimSpace(query.Name); name != "" {
		filtered := appointments[:0]
		for _, a := range appointments {
			if strings.EqualFold(strings.TrimSpace(a.PatientName), name) {
				filtered = append(filtered, a)
			}
		}
		appointments = filtered
	}

	return toAppointmentList(appointments), nil
}

// ListDoctorAppointments returns the calling doctor's own schedule.
func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, date string) (*dto.AppointmentListResponse, error) {
	p, ok := middleware.GetPrincipalFromContext(ctx)
	if !ok || p.Role != entity.RoleDoctor || p.DoctorID == 0 {
		return nil, ErrNotADoctor
	}
	if date != "" {
		if _, err := schedule.ParseDate(date, u.settings.location()); err != nil {
			return nil, err
		}
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), entity.AppointmentFilter{DoctorID: p.DoctorID, Date: date})
	if err != nil {
		u.log.Warnf("Failed to find appointments of doctor %d: %+v", p.DoctorID, err)
		return nil, err
	}

	return toAppointmentList(appointments), nil
}

func (u *appointmentUsecase) ListAllAppointments(ctx context.Context, query *dto.AppointmentFilterQuery) (*dto.AppointmentListResponse, error) {
	if query.Date != "" {
		if _, err := schedule.ParseDate(query.Date, u.settings.location()); err != nil {
			return nil, err
		}
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), entity.AppointmentFilter{
		DoctorID: query.DoctorID,
		Date:     query.Date,
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return toAppointmentList(appointments), nil
}

func toAppointmentList(appointments []entity.Appointment) *dto.AppointmentListResponse {
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}
}

// monthOf maps YYYY-MM-DD to its YYYY-MM calendar cache bucket.
func monthOf(date string) string {
	if len(date) < len(schedule.MonthLayout) {
		return date
	}
	return date[:len(schedule.MonthLayout)]
}
