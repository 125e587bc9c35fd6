package usecase

import (
	"context"
	"fmt"
	"testing"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// countHookRepository runs afterCount once, right after the month's counts were read.
type countHookRepository struct {
	domainRepo.AppointmentRepository
	afterCount func()
}

func (r *countHookRepository) CountByDoctorAndRange(db *gorm.DB, doctorID int64, from, to string) ([]entity.DayCount, error) {
	rows, err := r.AppointmentRepository.CountByDoctorAndRange(db, doctorID, from, to)
	if hook := r.afterCount; hook != nil {
		r.afterCount = nil
		hook()
	}
	return rows, err
}

func TestGetSlots_MarksBookedSlotsUnavailable(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	testutil.CreateAppointment(t, f.db, doctor.ID, "2024-06-10", "10:00", "9991234567")
	ctx := context.Background()

	day, err := f.availability.GetSlots(ctx, doctor.ID, "2024-06-10", "")
	require.NoError(t, err)
	assert.True(t, day.IsWorkingDay)
	require.Len(t, day.Slots, 10)
	for _, slot := range day.Slots {
		assert.Equal(t, slot.Time != "10:00", slot.Available, slot.Time)
	}

	again, err := f.availability.GetSlots(ctx, doctor.ID, "2024-06-10", "all")
	require.NoError(t, err)
	assert.Equal(t, day, again)

	morning, err := f.availability.GetSlots(ctx, doctor.ID, "2024-06-10", "morning")
	require.NoError(t, err)
	assert.Len(t, morning.Slots, 3)

	weekend, err := f.availability.GetSlots(ctx, doctor.ID, "2024-06-09", "")
	require.NoError(t, err)
	assert.False(t, weekend.IsWorkingDay)
	assert.Empty(t, weekend.Slots)
}

func TestGetSlots_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	ctx := context.Background()

	_, err := f.availability.GetSlots(ctx, doctor.ID, "2024-06-10", "night")
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	_, err = f.availability.GetSlots(ctx, doctor.ID, "June 10", "")
	assert.ErrorIs(t, err, schedule.ErrInvalidDate)

	_, err = f.availability.GetSlots(ctx, doctor.ID+1, "2024-06-10", "")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestGetLoad_ClassifiesDay(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	ctx := context.Background()

	load, err := f.availability.GetLoad(ctx, doctor.ID, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, string(schedule.LoadFree), load.LoadLevel)

	for hour := 9; hour < 13; hour++ {
		testutil.CreateAppointment(t, f.db, doctor.ID, "2024-06-10", schedule.FormatHour(hour), "9991234567")
	}

	load, err = f.availability.GetLoad(ctx, doctor.ID, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, int64(4), load.AppointmentCount)
	assert.Equal(t, string(schedule.LoadMedium), load.LoadLevel)
}

func TestGetCalendar_DescribesMonthAndCachesCounts(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	ctx := context.Background()

	for _, slot := range []string{"09:00", "10:00"} {
		_, err := f.appointments.CreateAppointment(ctx, bookingRequest(doctor.ID, "2024-06-10", slot))
		require.NoError(t, err)
	}

	cal, err := f.availability.GetCalendar(ctx, doctor.ID, 2024, 6)
	require.NoError(t, err)
	require.Len(t, cal.Days, 30)

	first := cal.Days[0]
	assert.Equal(t, "2024-06-01", first.Date)
	assert.Equal(t, "saturday", first.Weekday)
	assert.False(t, first.IsWorkingDay)
	assert.True(t, first.IsPast)

	monday := cal.Days[9]
	assert.Equal(t, "2024-06-10", monday.Date)
	assert.True(t, monday.IsWorkingDay)
	assert.False(t, monday.IsPast)
	assert.Equal(t, int64(2), monday.AppointmentCount)
	assert.Equal(t, string(schedule.LoadLow), monday.LoadLevel)

	key := fmt.Sprintf("calendar:counts:%d:2024-06", doctor.ID)
	assert.True(t, f.mr.Exists(key))

	// Rows written behind the usecase's back stay invisible until the month is invalidated.
	testutil.CreateAppointment(t, f.db, doctor.ID, "2024-06-10", "11:00", "9990000000")
	cal, err = f.availability.GetCalendar(ctx, doctor.ID, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cal.Days[9].AppointmentCount)

	_, err = f.appointments.CreateAppointment(ctx, bookingRequest(doctor.ID, "2024-06-10", "12:00"))
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(key))

	cal, err = f.availability.GetCalendar(ctx, doctor.ID, 2024, 6)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cal.Days[9].AppointmentCount)
	assert.Equal(t, string(schedule.LoadMedium), cal.Days[9].LoadLevel)
}

func TestGetCalendar_BookingDuringFillIsNotMasked(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	ctx := context.Background()

	repo := &countHookRepository{AppointmentRepository: f.appointmentRepo}
	repo.afterCount = func() {
		_, err := f.appointments.CreateAppointment(ctx, bookingRequest(doctor.ID, "2024-06-10", "09:00"))
		require.NoError(t, err)
	}
	availability := NewAvailabilityUsecase(f.db, f.log, f.doctorRepo, repo, f.calendarCache, f.settings)

	// The first read raced the booking and may report the old count.
	_, err := availability.GetCalendar(ctx, doctor.ID, 2024, 6)
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(fmt.Sprintf("calendar:counts:%d:2024-06", doctor.ID)))

	cal, err := availability.GetCalendar(ctx, doctor.ID, 2024, 6)
	require.NoError(t, err)
	load, err := availability.GetLoad(ctx, doctor.ID, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), load.AppointmentCount)
	assert.Equal(t, load.AppointmentCount, cal.Days[9].AppointmentCount)
	assert.Equal(t, string(schedule.LoadLow), cal.Days[9].LoadLevel)
}

func TestGetCalendar_WorksWithoutRedis(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	testutil.CreateAppointment(t, f.db, doctor.ID, "2024-07-01", "09:00", "9991234567")
	f.mr.Close()

	cal, err := f.availability.GetCalendar(context.Background(), doctor.ID, 2024, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cal.Days[0].AppointmentCount)
}

func TestGetCalendar_ValidatesMonth(t *testing.T) {
	f := newFixture(t)
	doctor := testutil.CreateDoctor(t, f.db, "Иванов И.И.", "Терапевт")
	ctx := context.Background()

	for _, month := range []int{0, 13} {
		_, err := f.availability.GetCalendar(ctx, doctor.ID, 2024, month)
		assert.ErrorIs(t, err, ErrInvalidCalendarMonth)
	}

	_, err := f.availability.GetCalendar(ctx, doctor.ID+1, 2024, 6)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
