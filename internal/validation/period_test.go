package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriodDays(t *testing.T) {
	tests := []struct {
		name   string
		period string
		want   int
	}{
		{name: "empty", period: "", want: 90},
		{name: "plain number", period: "30", want: 30},
		{name: "with suffix", period: "30d", want: 30},
		{name: "whitespace", period: " 45d ", want: 45},
		{name: "junk", period: "abc", want: 90},
		{name: "negative", period: "-5d", want: 90},
		{name: "zero", period: "0", want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePeriodDays(tt.period, 90))
		})
	}
}
