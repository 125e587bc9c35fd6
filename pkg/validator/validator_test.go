package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingForm struct {
	Name  string `json:"patient_name" validate:"required,notblank"`
	SNILS string `json:"snils" validate:"required,snils"`
	Date  string `json:"date" validate:"required,isodate"`
	Time  string `json:"time" validate:"required,hourslot"`
}

func TestValidateCustomTags(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&bookingForm{Name: "Анна", SNILS: "123-456-789 01", Date: "2024-06-10", Time: "09:00"}))

	err := v.Validate(&bookingForm{Name: "   ", SNILS: "12345678901", Date: "10.06.2024", Time: "09:30"})
	require.Error(t, err)

	fields := v.FormatValidationErrors(err)
	assert.Equal(t, "patient_name is required", fields["patient_name"])
	assert.Contains(t, fields["snils"], "123-456-789 01")
	assert.Contains(t, fields["date"], "YYYY-MM-DD")
	assert.Contains(t, fields["time"], "HH:00")
}

func TestHourSlotBounds(t *testing.T) {
	v := NewValidator()
	for _, ok := range []string{"00:00", "09:00", "18:00", "23:00"} {
		assert.NoError(t, v.Validate(&bookingForm{Name: "a", SNILS: "123-456-789 01", Date: "2024-06-10", Time: ok}), ok)
	}
	for _, bad := range []string{"24:00", "9:00", "18:15", "noon"} {
		assert.Error(t, v.Validate(&bookingForm{Name: "a", SNILS: "123-456-789 01", Date: "2024-06-10", Time: bad}), bad)
	}
}
