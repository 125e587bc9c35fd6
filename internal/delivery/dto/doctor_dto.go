package dto

import "time"

// Request DTOs

type CreateDoctorRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=255"`
	Specialty string `json:"specialty" validate:"required,notblank,max=255"`
	Username  string `json:"username" validate:"omitempty,min=3,max=100"`
	Password  string `json:"password" validate:"omitempty,min=4"`
}

type UpdateDoctorRequest struct {
	Name      string `json:"name" validate:"required,notblank,max=255"`
	Specialty string `json:"specialty" validate:"required,notblank,max=255"`
}

type UpdateDoctorCredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=4"`
}

// Response DTOs

type DoctorResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Specialty        string    `json:"specialty"`
	Username         *string   `json:"username,omitempty"`
	HasCredentials   bool      `json:"has_credentials"`
	AppointmentCount int64     `json:"appointment_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
