package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// CreateAppointment books a slot
// @Summary Book an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		h.writeError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

// CancelAppointment deletes an appointment. Administrators authenticate with a bearer
// token, patients with ?phone.
// @Summary Cancel an appointment
// @Tags Appointments
// @Produce json
// @Param id path int true "Appointment ID"
// @Param phone query string false "Phone used for the booking"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	req := &dto.CancelAppointmentRequest{
		ID:    appointmentID,
		Phone: r.URL.Query().Get("phone"),
	}
	if err := h.appointmentUsecase.CancelAppointment(r.Context(), req); err != nil {
		h.writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}

// ListPatientAppointments finds a patient's own bookings by ?phone and optional ?name.
func (h *AppointmentHandler) ListPatientAppointments(w http.ResponseWriter, r *http.Request) {
	query := dto.PatientAppointmentsQuery{
		Phone: r.URL.Query().Get("phone"),
		Name:  r.URL.Query().Get("name"),
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointments, err := h.appointmentUsecase.ListPatientAppointments(r.Context(), &query)
	if err != nil {
		h.writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ListDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.appointmentUsecase.ListDoctorAppointments(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) ListAllAppointments(w http.ResponseWriter, r *http.Request) {
	doctorID, _, err := queryInt(r, "doctor_id")
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	query := &dto.AppointmentFilterQuery{
		DoctorID: doctorID,
		Date:     r.URL.Query().Get("date"),
	}
	appointments, err := h.appointmentUsecase.ListAllAppointments(r.Context(), query)
	if err != nil {
		h.writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrSlotTaken):
		response.Conflict(w, "This time slot is already booked")
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		response.NotFound(w, "Appointment not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrAppointmentForbidden):
		response.Forbidden(w, "Phone number does not match the appointment")
	case errors.Is(err, usecase.ErrNotADoctor):
		response.Forbidden(w, "Doctor access required")
	case errors.Is(err, usecase.ErrInvalidAppointment), errors.Is(err, schedule.ErrInvalidDate):
		response.BadRequest(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
