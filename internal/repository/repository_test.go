package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorRepository_FindAllWithAppointmentCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorRepository()

	ivanov := testutil.CreateDoctor(t, db, "Иванов И.И.", "Терапевт")
	petrova := testutil.CreateDoctor(t, db, "Петрова А.А.", "Хирург")
	testutil.CreateAppointment(t, db, ivanov.ID, "2024-06-10", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, ivanov.ID, "2024-06-10", "10:00", "9991234567")

	doctors, err := repo.FindAllWithAppointmentCount(db)
	require.NoError(t, err)
	require.Len(t, doctors, 2)
	assert.Equal(t, ivanov.ID, doctors[0].ID)
	assert.Equal(t, int64(2), doctors[0].AppointmentCount)
	assert.Equal(t, petrova.ID, doctors[1].ID)
	assert.Equal(t, int64(0), doctors[1].AppointmentCount)
}

func TestDoctorRepository_FindMissingReturnsNil(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorRepository()

	doctor, err := repo.FindByID(db, 42)
	require.NoError(t, err)
	assert.Nil(t, doctor)

	doctor, err = repo.FindByUsername(db, "nobody")
	require.NoError(t, err)
	assert.Nil(t, doctor)
}

func TestDoctorRepository_UsernameIsUnique(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewDoctorRepository()

	username := "ivanov"
	require.NoError(t, repo.Create(db, &entity.Doctor{Name: "A", Specialty: "B", Username: &username}))
	err := repo.Create(db, &entity.Doctor{Name: "C", Specialty: "D", Username: &username})
	require.Error(t, err)

	found, err := repo.FindByUsername(db, "ivanov")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "A", found.Name)
}

func TestAppointmentRepository_SlotIsUnique(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppointmentRepository()
	doctor := testutil.CreateDoctor(t, db, "Иванов И.И.", "Терапевт")

	first := &entity.Appointment{DoctorID: doctor.ID, PatientName: "A", SNILS: "123-456-789 01", Phone: "9991234567", Date: "2024-06-10", Time: "09:00"}
	require.NoError(t, repo.Create(db, first))

	second := &entity.Appointment{DoctorID: doctor.ID, PatientName: "B", SNILS: "123-456-789 02", Phone: "9990000000", Date: "2024-06-10", Time: "09:00"}
	require.Error(t, repo.Create(db, second))

	found, err := repo.FindBySlot(db, doctor.ID, "2024-06-10", "09:00")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)

	missing, err := repo.FindBySlot(db, doctor.ID, "2024-06-10", "10:00")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAppointmentRepository_BusyTimesAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppointmentRepository()
	doctor := testutil.CreateDoctor(t, db, "Иванов И.И.", "Терапевт")
	other := testutil.CreateDoctor(t, db, "Петрова А.А.", "Хирург")

	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-10", "15:00", "9991234567")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-10", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-11", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-07-01", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, other.ID, "2024-06-10", "11:00", "9991234567")

	times, err := repo.FindBusyTimes(db, doctor.ID, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "15:00"}, times)

	count, err := repo.CountByDoctorAndDate(db, doctor.ID, "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	counts, err := repo.CountByDoctorAndRange(db, doctor.ID, "2024-06-01", "2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, []entity.DayCount{{Date: "2024-06-10", Count: 2}, {Date: "2024-06-11", Count: 1}}, counts)
}

func TestAppointmentRepository_FindAllFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppointmentRepository()
	doctor := testutil.CreateDoctor(t, db, "Иванов И.И.", "Терапевт")
	other := testutil.CreateDoctor(t, db, "Петрова А.А.", "Хирург")

	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-11", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-10", "12:00", "9990000000")
	testutil.CreateAppointment(t, db, other.ID, "2024-06-10", "11:00", "9991234567")

	all, err := repo.FindAll(db, entity.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-06-10", all[0].Date)
	assert.Equal(t, "11:00", all[0].Time)
	require.NotNil(t, all[0].Doctor)
	assert.Equal(t, "Петрова А.А.", all[0].Doctor.Name)

	byDoctor, err := repo.FindAll(db, entity.AppointmentFilter{DoctorID: doctor.ID, Date: "2024-06-10"})
	require.NoError(t, err)
	require.Len(t, byDoctor, 1)
	assert.Equal(t, "12:00", byDoctor[0].Time)

	byPhone, err := repo.FindAll(db, entity.AppointmentFilter{Phone: "9991234567"})
	require.NoError(t, err)
	assert.Len(t, byPhone, 2)
}

func TestAppointmentRepository_DeleteByDoctor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAppointmentRepository()
	doctor := testutil.CreateDoctor(t, db, "Иванов И.И.", "Терапевт")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-10", "09:00", "9991234567")
	testutil.CreateAppointment(t, db, doctor.ID, "2024-06-10", "10:00", "9991234567")

	n, err := repo.DeleteByDoctor(db, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Delete(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestAuditLogRepository_ListNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewAuditLogRepository()

	admin := "admin"
	require.NoError(t, repo.Create(db, &entity.AuditLog{Action: entity.AuditActionAdminLogin, Details: "first", Username: &admin}))
	require.NoError(t, repo.Create(db, &entity.AuditLog{Action: entity.AuditActionAddDoctor, Details: "second", Username: &admin}))
	require.NoError(t, repo.Create(db, &entity.AuditLog{Action: entity.AuditActionAdminLogin, Details: "third", Username: &admin}))

	logs, err := repo.List(db, "", 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "third", logs[0].Details)

	logins, err := repo.List(db, entity.AuditActionAdminLogin, 10)
	require.NoError(t, err)
	require.Len(t, logins, 2)

	limited, err := repo.List(db, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLoginAttemptRepository_ReserveBlocksAtLimit(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	repo := NewLoginAttemptRepository(client)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	window := 10 * time.Minute
	key := loginAttemptKeyPrefix + "10.0.0.1"

	for i := 1; i <= 3; i++ {
		attempt, blocked, err := repo.Reserve(ctx, "10.0.0.1", now, window, 3)
		require.NoError(t, err)
		assert.False(t, blocked)
		assert.Equal(t, i, attempt.Count)
	}

	attempt, blocked, err := repo.Reserve(ctx, "10.0.0.1", now.Add(time.Minute), window, 3)
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, 3, attempt.Count, "blocked attempts are not counted")
	assert.Equal(t, "3", server.HGet(key, "count"))
	assert.Equal(t, strconv.FormatInt(now.Add(time.Minute).UnixMilli(), 10), server.HGet(key, "last"))

	ttl := server.TTL(key)
	assert.True(t, ttl > 0 && ttl <= window, "ttl=%v", ttl)

	server.FastForward(window + time.Second)
	assert.False(t, server.Exists(key))
	attempt, blocked, err = repo.Reserve(ctx, "10.0.0.1", now.Add(window+2*time.Minute), window, 3)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Equal(t, 1, attempt.Count)
}

func TestLoginAttemptRepository_StaleBlockStartsOver(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	repo := NewLoginAttemptRepository(client)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	window := 10 * time.Minute

	// Counter outlived its window, e.g. written with a longer expiry.
	server.HSet(loginAttemptKeyPrefix+"10.0.0.2", "count", "5", "last", strconv.FormatInt(now.UnixMilli(), 10))

	attempt, blocked, err := repo.Reserve(ctx, "10.0.0.2", now.Add(window), window, 5)
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.Equal(t, 1, attempt.Count)

	require.NoError(t, repo.Reset(ctx, "10.0.0.2"))
	assert.False(t, server.Exists(loginAttemptKeyPrefix+"10.0.0.2"))

	_, _, err = repo.Reserve(ctx, "10.0.0.2", now, 0, 5)
	assert.Error(t, err)
}

func TestSessionRepository_RevokeAllManyTokens(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	for i := 0; i < 2*revokeScanCount+17; i++ {
		require.NoError(t, repo.Store(ctx, "doctor:1", strconv.Itoa(i), time.Hour))
	}
	require.NoError(t, repo.Store(ctx, "doctor:10", "other", time.Hour))

	require.NoError(t, repo.RevokeAll(ctx, "doctor:1"))
	assert.Equal(t, []string{"access_token:doctor:10:other"}, server.Keys())

	require.NoError(t, repo.RevokeAll(ctx, "doctor:2"), "nothing to revoke")
}

func TestSessionRepository_StoreRevoke(t *testing.T) {
	client, server := testutil.NewTestRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Store(ctx, "doctor:1", "a", time.Hour))
	require.NoError(t, repo.Store(ctx, "doctor:1", "b", time.Hour))
	require.NoError(t, repo.Store(ctx, "admin:admin", "c", time.Hour))

	ok, err := repo.Exists(ctx, "doctor:1", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Revoke(ctx, "doctor:1", "a"))
	ok, err = repo.Exists(ctx, "doctor:1", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.RevokeAll(ctx, "doctor:1"))
	ok, err = repo.Exists(ctx, "doctor:1", "b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "admin:admin", "c")
	require.NoError(t, err)
	assert.True(t, ok)

	server.FastForward(2 * time.Hour)
	ok, err = repo.Exists(ctx, "admin:admin", "c")
	require.NoError(t, err)
	assert.False(t, ok)
}
