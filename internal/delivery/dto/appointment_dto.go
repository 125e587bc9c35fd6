package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID    int64  `json:"doctor_id" validate:"required,gt=0"`
	PatientName string `json:"patient_name" validate:"required,notblank,max=255"`
	SNILS       string `json:"snils" validate:"required,snils"`
	Phone       string `json:"phone" validate:"required,min=10,max=32"`
	Date        string `json:"date" validate:"required,isodate"`
	Time        string `json:"time" validate:"required,hourslot"`
}

// CancelAppointmentRequest carries the phone the caller claims to have booked with.
// Administrators are recognised from the request context instead.
type CancelAppointmentRequest struct {
	ID    int64
	Phone string
}

// PatientAppointmentsQuery looks up a patient's own bookings.
type PatientAppointmentsQuery struct {
	Phone string `json:"phone" validate:"required,min=10,max=32"`
	Name  string `json:"name" validate:"omitempty,max=255"`
}

type AppointmentFilterQuery struct {
	DoctorID int64
	Date     string
}

// Response DTOs

type AppointmentResponse struct {
	ID          int64     `json:"id"`
	DoctorID    int64     `json:"doctor_id"`
	DoctorName  string    `json:"doctor_name,omitempty"`
	Specialty   string    `json:"specialty,omitempty"`
	PatientName string    `json:"patient_name"`
	SNILS       string    `json:"snils"`
	Phone       string    `json:"phone"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
