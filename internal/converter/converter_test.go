package converter

import (
	"testing"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorsWithCountToResponses(t *testing.T) {
	username := "ivanov"
	doctors := []entity.DoctorWithCount{
		{Doctor: entity.Doctor{ID: 1, Name: "Иванов И.И.", Specialty: "Терапевт", Username: &username, PasswordHash: "hash"}, AppointmentCount: 3},
		{Doctor: entity.Doctor{ID: 2, Name: "Петрова А.А.", Specialty: "Хирург"}},
	}

	resp := DoctorsWithCountToResponses(doctors)
	require.Len(t, resp, 2)
	assert.True(t, resp[0].HasCredentials)
	assert.Equal(t, int64(3), resp[0].AppointmentCount)
	assert.False(t, resp[1].HasCredentials)
	assert.Nil(t, DoctorToResponse(nil))
}

func TestAppointmentToResponseIncludesDoctor(t *testing.T) {
	a := &entity.Appointment{ID: 7, DoctorID: 1, Date: "2024-06-10", Time: "09:00",
		Doctor: &entity.Doctor{Name: "Иванов И.И.", Specialty: "Терапевт"}}

	resp := AppointmentToResponse(a)
	assert.Equal(t, "Иванов И.И.", resp.DoctorName)
	assert.Equal(t, "Терапевт", resp.Specialty)

	a.Doctor = nil
	assert.Empty(t, AppointmentToResponse(a).DoctorName)
}

func TestSlotsToResponses(t *testing.T) {
	resp := SlotsToResponses([]schedule.Slot{{Time: "09:00", TimeOfDay: schedule.Morning, Available: true}})
	require.Len(t, resp, 1)
	assert.Equal(t, "morning", resp[0].TimeOfDay)
	assert.False(t, resp[0].Selectable)
}
