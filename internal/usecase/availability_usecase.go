package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidTimeOfDay     = errors.New("time_of_day must be one of: all, morning, afternoon, evening")
	ErrInvalidCalendarMonth = errors.New("year and month are required, month must be 1-12")
)

type AvailabilityUsecase interface {
	GetSlots(ctx context.Context, doctorID int64, date string, timeOfDay string) (*dto.DaySlotsResponse, error)
	GetLoad(ctx context.Context, doctorID int64, date string) (*dto.LoadResponse, error)
	GetCalendar(ctx context.Context, doctorID int64, year, month int) (*dto.CalendarResponse, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	calendarCache   *service.CalendarCache
	settings        ClinicSettings
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	calendarCache *service.CalendarCache,
	settings ClinicSettings,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		calendarCache:   calendarCache,
		settings:        settings,
	}
}

// GetSlots lists every slot of the day with its availability. Busy slots stay in the
// list; weekends return no slots.
func (u *availabilityUsecase) GetSlots(ctx context.Context, doctorID int64, date string, timeOfDay string) (*dto.DaySlotsResponse, error) {
	day, err := schedule.ParseDate(date, u.settings.location())
	if err != nil {
		return nil, err
	}
	bucket, filter, err := schedule.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, ErrInvalidTimeOfDay
	}

	db := u.db.WithContext(ctx)
	if err := u.ensureDoctor(db, doctorID); err != nil {
		return nil, err
	}

	busyTimes, err := u.appointmentRepo.FindBusyTimes(db, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to find busy slots for doctor %d on %s: %+v", doctorID, date, err)
		return nil, err
	}
	busy := make(map[string]bool, len(busyTimes))
	for _, t := range busyTimes {
		busy[t] = true
	}

	slots := schedule.GenerateDaySlots(day, u.settings.Hours, busy, u.settings.now())
	if filter {
		slots = schedule.FilterByTimeOfDay(slots, bucket)
	}

	return &dto.DaySlotsResponse{
		DoctorID:     doctorID,
		Date:         date,
		IsWorkingDay: schedule.IsWorkingDay(day),
		Slots:        converter.SlotsToResponses(slots),
	}, nil
}

func (u *availabilityUsecase) GetLoad(ctx context.Context, doctorID int64, date string) (*dto.LoadResponse, error) {
	if _, err := schedule.ParseDate(date, u.settings.location()); err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	if err := u.ensureDoctor(db, doctorID); err != nil {
		return nil, err
	}

	count, err := u.appointmentRepo.CountByDoctorAndDate(db, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to count appointments for doctor %d on %s: %+v", doctorID, date, err)
		return nil, err
	}

	return &dto.LoadResponse{
		DoctorID:         doctorID,
		Date:             date,
		AppointmentCount: count,
		LoadLevel:        string(schedule.ClassifyLoad(int(count))),
	}, nil
}

// GetCalendar describes each day of a month (1-based) with its load level.
func (u *availabilityUsecase) GetCalendar(ctx context.Context, doctorID int64, year, month int) (*dto.CalendarResponse, error) {
	if month < 1 || month > 12 || year < 1970 || year > 9999 {
		return nil, ErrInvalidCalendarMonth
	}

	db := u.db.WithContext(ctx)
	if err := u.ensureDoctor(db, doctorID); err != nil {
		return nil, err
	}

	days := schedule.DaysInMonth(year, month, u.settings.location())
	counts, err := u.monthCounts(ctx, db, doctorID, days)
	if err != nil {
		return nil, err
	}

	now := u.settings.now()
	resp := &dto.CalendarResponse{
		DoctorID: doctorID,
		Year:     year,
		Month:    month,
		Days:     make([]dto.CalendarDayResponse, 0, len(days)),
	}
	for _, day := range days {
		date := day.Format(schedule.DateLayout)
		count := counts[date]
		resp.Days = append(resp.Days, dto.CalendarDayResponse{
			Date:             date,
			Weekday:          strings.ToLower(day.Weekday().String()),
			IsWorkingDay:     schedule.IsWorkingDay(day),
			IsPast:           schedule.IsPastDay(day, now),
			AppointmentCount: count,
			LoadLevel:        string(schedule.ClassifyLoad(int(count))),
		})
	}
	return resp, nil
}

func (u *availabilityUsecase) monthCounts(ctx context.Context, db *gorm.DB, doctorID int64, days []time.Time) (map[string]int64, error) {
	month := days[0].Format(schedule.MonthLayout)
	counts, generation, ok := u.calendarCache.Get(ctx, doctorID, month)
	if ok {
		return counts, nil
	}

	from := days[0].Format(schedule.DateLayout)
	to := days[len(days)-1].Format(schedule.DateLayout)
	rows, err := u.appointmentRepo.CountByDoctorAndRange(db, doctorID, from, to)
	if err != nil {
		u.log.Warnf("Failed to count appointments for doctor %d in %s: %+v", doctorID, month, err)
		return nil, err
	}

	counts = make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Date] = row.Count
	}
	u.calendarCache.Set(ctx, doctorID, month, generation, counts)
	return counts, nil
}

func (u *availabilityUsecase) ensureDoctor(db *gorm.DB, doctorID int64) error {
	doctor, err := u.doctorRepo.FindByID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %d: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	return nil
}
