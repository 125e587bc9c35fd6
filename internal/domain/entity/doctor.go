package entity

import "time"

// Doctor is a bookable practitioner. Username and PasswordHash are set only for doctors
// that can log in to view their own schedule.
type Doctor struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Specialty    string    `gorm:"type:varchar(255);not null" json:"specialty"`
	Username     *string   `gorm:"type:varchar(100);uniqueIndex" json:"username,omitempty"`
	PasswordHash string    `gorm:"type:text" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"appointments,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// HasCredentials reports whether the doctor can log in.
func (d *Doctor) HasCredentials() bool {
	return d.Username != nil && *d.Username != "" && d.PasswordHash != ""
}

// DoctorWithCount is a read model for the roster listing.
type DoctorWithCount struct {
	Doctor
	AppointmentCount int64 `gorm:"column:appointment_count"`
}
