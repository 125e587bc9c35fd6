package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	FindBySlot(db *gorm.DB, doctorID int64, date, time string) (*entity.Appointment, error)
	// FindBusyTimes returns the booked HH:00 times of a doctor on a date.
	FindBusyTimes(db *gorm.DB, doctorID int64, date string) ([]string, error)
	CountByDoctor(db *gorm.DB, doctorID int64) (int64, error)
	CountByDoctorAndDate(db *gorm.DB, doctorID int64, date string) (int64, error)
	// CountByDoctorAndRange groups counts per date for dates in [from, to].
	CountByDoctorAndRange(db *gorm.DB, doctorID int64, from, to string) ([]entity.DayCount, error)
	FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error)
	Delete(db *gorm.DB, id int64) (int64, error)
	DeleteByDoctor(db *gorm.DB, doctorID int64) (int64, error)
}
