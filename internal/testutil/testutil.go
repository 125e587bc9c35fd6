// Package testutil builds throwaway SQLite and Redis backends for package tests.
package testutil

import (
	"fmt"
	"io"
	"testing"

	"clinic-booking/internal/domain/entity"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory database with the full schema.
// A single connection keeps every query on the same memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entity.Doctor{}, &entity.Appointment{}, &entity.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func NewTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

// NewTestLogger returns a silent logger whose entries are captured by the hook.
func NewTestLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// CreateDoctor inserts a doctor row and returns it.
func CreateDoctor(t *testing.T, db *gorm.DB, name, specialty string) *entity.Doctor {
	t.Helper()

	doctor := &entity.Doctor{Name: name, Specialty: specialty}
	if err := db.Create(doctor).Error; err != nil {
		t.Fatalf("failed to create doctor: %v", err)
	}
	return doctor
}

func CreateAppointment(t *testing.T, db *gorm.DB, doctorID int64, date, time, phone string) *entity.Appointment {
	t.Helper()

	appointment := &entity.Appointment{
		DoctorID:    doctorID,
		PatientName: "Test Patient",
		SNILS:       "123-456-789 01",
		Phone:       phone,
		Date:        date,
		Time:        time,
	}
	if err := db.Create(appointment).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	return appointment
}
