package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdts/flowkit/pkg/models"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		sla  *models.SLA
		want string
	}{
		{"nil is absent", nil, ""},
		{"zero is absent", &models.SLA{}, ""},
		{"hours only", &models.SLA{Hours: 24}, "PT24H"},
		{"minutes only", &models.SLA{Minutes: 45}, "PT45M"},
		{"both", &models.SLA{Hours: 4, Minutes: 30}, "PT4H30M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.sla))
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *models.SLA
	}{
		{"empty is absent", "", nil},
		{"hours only", "PT8H", &models.SLA{Hours: 8}},
		{"minutes only", "PT30M", &models.SLA{Minutes: 30}},
		{"both", "PT4H30M", &models.SLA{Hours: 4, Minutes: 30}},
		{"explicit zero", "PT0H0M", &models.SLA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, input := range []string{"PT", "4H30M", "PT4H75M", "PT-1H", "pt4h", "PT4H30M extra"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDuration(input)
			require.Error(t, err)
		})
	}
}

func TestDuration_RoundTrip(t *testing.T) {
	inputs := []*models.SLA{
		{Hours: 1},
		{Hours: 0, Minutes: 59},
		{Hours: 100, Minutes: 1},
	}

	for _, in := range inputs {
		got, err := ParseDuration(FormatDuration(in))
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}
