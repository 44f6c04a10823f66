package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testPayload struct {
	Name   *string  `json:"name" validate:"required"`
	Email  *string  `json:"email" validate:"required"`
	Amount *float64 `json:"amount" validate:"required"`
	Note   *string  `json:"note"`
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		payload testPayload
		want    []string
	}{
		{
			name: "all present",
			payload: testPayload{
				Name:   strPtr("x"),
				Email:  strPtr("x@y.z"),
				Amount: floatPtr(1),
			},
			want: nil,
		},
		{
			name:    "all missing",
			payload: testPayload{},
			want:    []string{"name", "email", "amount"},
		},
		{
			name: "one missing",
			payload: testPayload{
				Name:  strPtr("x"),
				Email: strPtr("x@y.z"),
			},
			want: []string{"amount"},
		},
		{
			name: "zero values are present",
			payload: testPayload{
				Name:   strPtr(""),
				Email:  strPtr(""),
				Amount: floatPtr(0),
			},
			want: nil,
		},
		{
			name: "optional field ignored",
			payload: testPayload{
				Name:   strPtr("x"),
				Email:  strPtr("x@y.z"),
				Amount: floatPtr(1),
				Note:   nil,
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingFields(tt.payload)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidSpotStatus(t *testing.T) {
	for _, valid := range []string{"free", "inuse", "planned", "w.issue"} {
		assert.True(t, IsValidSpotStatus(valid), valid)
	}
	for _, invalid := range []string{"", "FREE", "in use", "deleted"} {
		assert.False(t, IsValidSpotStatus(invalid), invalid)
	}
}

func TestIsValidReportStatus(t *testing.T) {
	assert.True(t, IsValidReportStatus("unexamined"))
	assert.True(t, IsValidReportStatus("examined"))
	assert.False(t, IsValidReportStatus("pending"))
	assert.False(t, IsValidReportStatus(""))
}

func TestIsValidAccountRole(t *testing.T) {
	for _, valid := range []string{"customer", "salesman", "owner", "oandm"} {
		assert.True(t, IsValidAccountRole(valid), valid)
	}
	assert.False(t, IsValidAccountRole("admin"))
	assert.False(t, IsValidAccountRole(""))
}
