package timefmt

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9:05", "09:05"},
		{"09:05", "09:05"},
		{"0:00", "00:00"},
		{"23:59", "23:59"},
		{"14:00", "14:00"},
		{"2:00 PM", "14:00"},
		{"2:00pm", "14:00"},
		{"02:00 pm", "14:00"},
		{"12:00 PM", "12:00"},
		{"12:00 AM", "00:00"},
		{"12:30 am", "00:30"},
		{"11:59 PM", "23:59"},
		{"1:07 aM", "01:07"},
		{"  8:15 ", "08:15"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTimeRejects(t *testing.T) {
	for _, in := range []string{"", "14", "24:00", "14:60", "13:00 PM", "0:30 AM", "noonish", "14.30", "1:2"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeTime(in)
			var tfe *TimeFormatError
			require.ErrorAs(t, err, &tfe)
			assert.Equal(t, in, tfe.Raw)
		})
	}
}

// Normalizing an already-normalized time is a fixed point, so canonical
// values can safely flow back through the normalizer at any call site.
func TestNormalizeTimeFixedPoint(t *testing.T) {
	for hour := 1; hour <= 12; hour++ {
		for _, meridiem := range []string{"AM", "PM"} {
			in := fmt.Sprintf("%d:30 %s", hour, meridiem)
			once, err := NormalizeTime(in)
			require.NoError(t, err)
			twice, err := NormalizeTime(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice, "input %s", in)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-10", "2025-03-10"},
		{"2025-3-1", "2025-03-01"},
		{"10/03/2025", "2025-03-10"},
		{"1/1/2025", "2025-01-01"},
		{"31/12/2024", "2024-12-31"},
		{" 05/06/2025 ", "2025-06-05"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateRejects(t *testing.T) {
	for _, in := range []string{"", "2025-13-01", "2025-02-30", "32/01/2025", "00/01/2025", "2025/03/10", "10-03-2025", "N/A", "soon"} {
		t.Run(in, func(t *testing.T) {
			_, err := NormalizeDate(in)
			var dfe *DateFormatError
			require.ErrorAs(t, err, &dfe)
			assert.Equal(t, in, dfe.Raw)
		})
	}
}

func TestCombine(t *testing.T) {
	got, err := Combine("2025-03-10", "14:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC), got)

	_, err = Combine("2025-03-10", "25:00")
	assert.Error(t, err)
}

func TestBeforeDay(t *testing.T) {
	ref := time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)

	past, err := BeforeDay("2025-01-01", ref)
	require.NoError(t, err)
	assert.True(t, past)

	// Same calendar day is not "before", regardless of time of day.
	today, err := BeforeDay("2025-01-05", ref)
	require.NoError(t, err)
	assert.False(t, today)

	future, err := BeforeDay("2025-01-06", ref)
	require.NoError(t, err)
	assert.False(t, future)

	_, err = BeforeDay("garbage", ref)
	var dfe *DateFormatError
	assert.True(t, errors.As(err, &dfe))
}
