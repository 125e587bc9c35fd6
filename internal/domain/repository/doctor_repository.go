package repository

import (
	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type DoctorRepository interface {
	Create(db *gorm.DB, doctor *entity.Doctor) error
	FindByID(db *gorm.DB, id int64) (*entity.Doctor, error)
	FindByUsername(db *gorm.DB, username string) (*entity.Doctor, error)
	FindAllWithAppointmentCount(db *gorm.DB) ([]entity.DoctorWithCount, error)
	Update(db *gorm.DB, doctor *entity.Doctor) error
	Delete(db *gorm.DB, id int64) (int64, error)
	Count(db *gorm.DB) (int64, error)
}
