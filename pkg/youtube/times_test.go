package youtube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2023, 5, 1, 12, 30, 45, 0, time.UTC)

	got, err := ParseTimestamp("2023-05-01T12:30:45Z")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	got, err = ParseTimestamp("2023-05-01T12:30:45.250Z")
	require.NoError(t, err)
	assert.True(t, want.Add(250*time.Millisecond).Equal(got))

	got, err = ParseTimestamp("2023-05-01T14:30:45+02:00")
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	_, err = ParseTimestamp("01/05/2023")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "PT15S", want: 15 * time.Second},
		{in: "PT4M13S", want: 4*time.Minute + 13*time.Second},
		{in: "PT1H2M3S", want: time.Hour + 2*time.Minute + 3*time.Second},
		{in: "PT100H", want: 100 * time.Hour},
		{in: "P1DT2H", want: 26 * time.Hour},
		{in: "P2W", want: 14 * 24 * time.Hour},
		{in: "P0D", want: 0},
		{in: "P", wantErr: true},
		{in: "PT", wantErr: true},
		{in: "P1Y", wantErr: true},
		{in: "1:02:03", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
