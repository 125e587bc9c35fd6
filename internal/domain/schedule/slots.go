package schedule

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrOutsideWorkingHours = errors.New("time is outside working hours")
	ErrNonWorkingDay       = errors.New("the clinic does not work on this day")
	ErrSlotInPast          = errors.New("cannot book a slot in the past")
)

// WorkingHours is the inclusive range of slot start hours.
type WorkingHours struct {
	Open  int
	Close int
}

// DefaultWorkingHours is 09:00 through 18:00, ten slots a day.
var DefaultWorkingHours = WorkingHours{Open: 9, Close: 18}

func (h WorkingHours) Validate() error {
	if h.Open < 0 || h.Close > 23 || h.Open > h.Close {
		return fmt.Errorf("invalid working hours %d-%d", h.Open, h.Close)
	}
	return nil
}

// SlotCount is the number of bookable slots on a working day.
func (h WorkingHours) SlotCount() int {
	return h.Close - h.Open + 1
}

func (h WorkingHours) Contains(hour int) bool {
	return hour >= h.Open && hour <= h.Close
}

// Times returns the slot times of a working day in order.
func (h WorkingHours) Times() []string {
	times := make([]string, 0, h.SlotCount())
	for hour := h.Open; hour <= h.Close; hour++ {
		times = append(times, FormatHour(hour))
	}
	return times
}

// Slot is one hourly bucket of a doctor's day.
// Busy slots stay in the list with Available=false so they can be rendered disabled.
type Slot struct {
	Time       string
	TimeOfDay  TimeOfDay
	Available  bool
	Selectable bool
}

// GenerateDaySlots enumerates the slots of date. busy holds the HH:00 times already booked.
// Weekends produce no slots. Slots that already started at now are never selectable.
func GenerateDaySlots(date time.Time, hours WorkingHours, busy map[string]bool, now time.Time) []Slot {
	if !IsWorkingDay(date) {
		return []Slot{}
	}

	slots := make([]Slot, 0, hours.SlotCount())
	for hour := hours.Open; hour <= hours.Close; hour++ {
		t := FormatHour(hour)
		available := !busy[t]
		slots = append(slots, Slot{
			Time:       t,
			TimeOfDay:  TimeOfDayFor(hour),
			Available:  available,
			Selectable: available && !IsPastSlot(date, hour, now),
		})
	}
	return slots
}

// FilterByTimeOfDay keeps the slots in the given bucket.
func FilterByTimeOfDay(slots []Slot, tod TimeOfDay) []Slot {
	filtered := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.TimeOfDay == tod {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// CheckBookable validates that date/hour lies on the grid and has not started yet.
func CheckBookable(date time.Time, hour int, hours WorkingHours, now time.Time) error {
	if !IsWorkingDay(date) {
		return ErrNonWorkingDay
	}
	if !hours.Contains(hour) {
		return ErrOutsideWorkingHours
	}
	if IsPastSlot(date, hour, now) {
		return ErrSlotInPast
	}
	return nil
}
