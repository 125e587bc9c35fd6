package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/schedule"
)

// SlotsToResponses converts generated slots to SlotResponse DTOs
func SlotsToResponses(slots []schedule.Slot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, s := range slots {
		responses[i] = dto.SlotResponse{
			Time:       s.Time,
			TimeOfDay:  string(s.TimeOfDay),
			Available:  s.Available,
			Selectable: s.Selectable,
		}
	}
	return responses
}
