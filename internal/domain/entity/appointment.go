package entity

import "time"

// Appointment occupies one (doctor, date, time) slot. The unique index idx_appointments_slot
// keeps a slot from being stored twice even when two processes race.
type Appointment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    int64     `gorm:"not null;uniqueIndex:idx_appointments_slot,priority:1" json:"doctor_id"`
	PatientName string    `gorm:"type:varchar(255);not null" json:"patient_name"`
	SNILS       string    `gorm:"column:snils;type:varchar(14);not null" json:"snils"`
	Phone       string    `gorm:"type:varchar(10);not null;index" json:"phone"`
	Date        string    `gorm:"column:appointment_date;type:char(10);not null;uniqueIndex:idx_appointments_slot,priority:2" json:"date"`
	Time        string    `gorm:"column:appointment_time;type:char(5);not null;uniqueIndex:idx_appointments_slot,priority:3" json:"time"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentFilter narrows appointment listings. Zero values mean no filter.
type AppointmentFilter struct {
	DoctorID int64
	Date     string // YYYY-MM-DD
	Phone    string // normalized
}

// DayCount is the number of appointments a doctor has on one date.
type DayCount struct {
	Date  string `gorm:"column:appointment_date"`
	Count int64  `gorm:"column:count"`
}
