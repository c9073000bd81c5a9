package population

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	a := Generate(2022, 500, 10, 2028, 2)
	b := Generate(2022, 500, 10, 2028, 2)
	require.Equal(t, a, b, "same seed, same sources")
	require.Len(t, a, 500)
	require.NotEqual(t, a, Generate(2023, 500, 10, 2028, 2))

	lo := time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2029, 12, 31, 23, 59, 59, 0, time.UTC)
	for i, s := range a {
		require.Equal(t, 10+i, s.ID)
		require.GreaterOrEqual(t, s.RADeg, 0.0)
		require.Less(t, s.RADeg, 360.0)
		require.GreaterOrEqual(t, s.DecDeg, -90.0)
		require.LessOrEqual(t, s.DecDeg, 90.0)
		require.False(t, s.Date.Before(lo), "date %v before %v", s.Date, lo)
		require.False(t, s.Date.After(hi), "date %v after %v", s.Date, hi)
	}

	require.Empty(t, Generate(1, 0, 1, 2028, 1))
}

func TestGenerateIsotropic(t *testing.T) {
	sources := Generate(7, 4000, 1, 2030, 1)
	north, polar := 0, 0
	for _, s := range sources {
		if s.DecDeg > 0 {
			north++
		}
		// sin(dec) is uniform, so |dec| > 30° holds for half of the sky.
		if s.DecDeg > 30 || s.DecDeg < -30 {
			polar++
		}
	}
	require.InDelta(t, 0.5, float64(north)/4000, 0.04)
	require.InDelta(t, 0.5, float64(polar)/4000, 0.04)
}

func TestSkyRoundTrip(t *testing.T) {
	sky := NewSky(2022, 5, 1, 2028, 1, "strictmoonveto", DefaultDuration)
	require.Equal(t, "DP_strictmoonveto_2028_1.yaml", sky.FileName())
	require.NotEmpty(t, sky.RunID)

	var buf bytes.Buffer
	require.NoError(t, WriteSky(&buf, sky))
	require.Contains(t, buf.String(), "key: strictmoonveto")

	got, err := ReadSky(&buf)
	require.NoError(t, err)
	require.Equal(t, sky, got)
}

func TestReadSkyRejectsBadDeclination(t *testing.T) {
	_, err := ReadSky(bytes.NewBufferString("sources:\n  - {id: 1, date: 2028-01-01T00:00:00Z, ra: 10, dec: 100}\n"))
	require.Error(t, err)
}
