package repository

import (
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBySlot(db *gorm.DB, doctorID int64, date, time string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctorID, date, time).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBusyTimes(db *gorm.DB, doctorID int64, date string) ([]string, error) {
	var times []string
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Order("appointment_time ASC").
		Pluck("appointment_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *appointmentRepository) CountByDoctor(db *gorm.DB, doctorID int64) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).Where("doctor_id = ?", doctorID).Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountByDoctorAndDate(db *gorm.DB, doctorID int64, date string) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ?", doctorID, date).
		Count(&count).Error
	return count, err
}

// CountByDoctorAndRange relies on YYYY-MM-DD strings sorting chronologically.
func (r *appointmentRepository) CountByDoctorAndRange(db *gorm.DB, doctorID int64, from, to string) ([]entity.DayCount, error) {
	var counts []entity.DayCount
	err := db.Model(&entity.Appointment{}).
		Select("appointment_date, COUNT(*) AS count").
		Where("doctor_id = ? AND appointment_date >= ? AND appointment_date <= ?", doctorID, from, to).
		Group("appointment_date").
		Order("appointment_date ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Preload("Doctor")

	if filter.DoctorID != 0 {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.Date != "" {
		query = query.Where("appointment_date = ?", filter.Date)
	}
	if filter.Phone != "" {
		query = query.Where("phone = ?", filter.Phone)
	}

	err := query.Order("appointment_date ASC, appointment_time ASC, id ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Delete(db *gorm.DB, id int64) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) DeleteByDoctor(db *gorm.DB, doctorID int64) (int64, error) {
	result := db.Where("doctor_id = ?", doctorID).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}
