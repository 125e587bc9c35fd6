package dto

type SlotResponse struct {
	Time       string `json:"time"`
	TimeOfDay  string `json:"time_of_day"`
	Available  bool   `json:"available"`
	Selectable bool   `json:"selectable"`
}

type DaySlotsResponse struct {
	DoctorID     int64          `json:"doctor_id"`
	Date         string         `json:"date"`
	IsWorkingDay bool           `json:"is_working_day"`
	Slots        []SlotResponse `json:"slots"`
}

type LoadResponse struct {
	DoctorID         int64  `json:"doctor_id"`
	Date             string `json:"date"`
	AppointmentCount int64  `json:"appointment_count"`
	LoadLevel        string `json:"load_level"`
}

type CalendarDayResponse struct {
	Date             string `json:"date"`
	Weekday          string `json:"weekday"`
	IsWorkingDay     bool   `json:"is_working_day"`
	IsPast           bool   `json:"is_past"`
	AppointmentCount int64  `json:"appointment_count"`
	LoadLevel        string `json:"load_level"`
}

type CalendarResponse struct {
	DoctorID int64                 `json:"doctor_id"`
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Days     []CalendarDayResponse `json:"days"`
}
