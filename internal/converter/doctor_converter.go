package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:             doctor.ID,
		Name:           doctor.Name,
		Specialty:      doctor.Specialty,
		Username:       doctor.Username,
		HasCredentials: doctor.HasCredentials(),
		CreatedAt:      doctor.CreatedAt,
	}
}

// DoctorsWithCountToResponses converts the roster read model to DoctorResponse DTOs
func DoctorsWithCountToResponses(doctors []entity.DoctorWithCount) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		resp := DoctorToResponse(&doctors[i].Doctor)
		resp.AppointmentCount = doctors[i].AppointmentCount
		responses[i] = *resp
	}
	return responses
}
