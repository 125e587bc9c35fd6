package handler

import (
	"errors"
	"net/http"

	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
	}
}

// GetSlots lists a doctor's slots for ?date=YYYY-MM-DD, optionally narrowed by ?time_of_day.
func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	query := r.URL.Query()
	slots, err := h.availabilityUsecase.GetSlots(r.Context(), doctorID, query.Get("date"), query.Get("time_of_day"))
	if err != nil {
		h.writeError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}

func (h *AvailabilityHandler) GetLoad(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	load, err := h.availabilityUsecase.GetLoad(r.Context(), doctorID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err, "Failed to get load")
		return
	}

	response.Success(w, http.StatusOK, "Load retrieved successfully", load)
}

func (h *AvailabilityHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	year, hasYear, yearErr := queryInt(r, "year")
	month, hasMonth, monthErr := queryInt(r, "month")
	if yearErr != nil || monthErr != nil || !hasYear || !hasMonth {
		response.BadRequest(w, usecase.ErrInvalidCalendarMonth.Error())
		return
	}

	calendar, err := h.availabilityUsecase.GetCalendar(r.Context(), doctorID, int(year), int(month))
	if err != nil {
		h.writeError(w, err, "Failed to get calendar")
		return
	}

	response.Success(w, http.StatusOK, "Calendar retrieved successfully", calendar)
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, schedule.ErrInvalidDate),
		errors.Is(err, usecase.ErrInvalidTimeOfDay),
		errors.Is(err, usecase.ErrInvalidCalendarMonth):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
