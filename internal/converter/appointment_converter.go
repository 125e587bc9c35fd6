package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Doctor details are filled in when the relation is loaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	resp := &dto.AppointmentResponse{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		PatientName: appointment.PatientName,
		SNILS:       appointment.SNILS,
		Phone:       appointment.Phone,
		Date:        appointment.Date,
		Time:        appointment.Time,
		CreatedAt:   appointment.CreatedAt,
	}
	if appointment.Doctor != nil {
		resp.DoctorName = appointment.Doctor.Name
		resp.Specialty = appointment.Doctor.Specialty
	}
	return resp
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
