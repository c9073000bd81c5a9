package visibility

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-visibility/internal/timeline"
)

func computed(t *testing.T) *Result {
	t.Helper()
	r, err := Compute(threeNights(), testRequest())
	require.NoError(t, err)
	return r
}

func TestRecordRoundTripJSON(t *testing.T) {
	r := computed(t)
	rec := r.Record()

	var buf bytes.Buffer
	require.NoError(t, rec.WriteJSON(&buf))
	require.Contains(t, buf.String(), `"visible_tonight": true`)
	require.Contains(t, buf.String(), `"too_close": true`)

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	back, err := Build(Recorded{Record: got}, nil)
	require.NoError(t, err)
	require.Equal(t, rec, back.Record())
	require.Equal(t, r.VisibleTonight(), back.VisibleTonight())
	require.Equal(t, r.Origin(), back.Origin())
}

func TestRecordRoundTripYAML(t *testing.T) {
	rec := computed(t).Record()

	var buf bytes.Buffer
	require.NoError(t, rec.WriteYAML(&buf))
	require.Contains(t, buf.String(), "moon_periods:")

	got, err := ReadYAML(&buf)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestRecordOpenEnds(t *testing.T) {
	sky := &scriptedSky{
		nights: timeline.Windows{hw(6, 18), hw(30, 42), hw(54, 66), hw(78, 90)},
		above:  timeline.Windows{timeline.From(h(10))},
	}
	r, err := Compute(sky, testRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Record().WriteJSON(&buf))
	require.Contains(t, buf.String(), `"end": null`)

	rec, err := ReadJSON(&buf)
	require.NoError(t, err)
	back, err := rec.Result()
	require.NoError(t, err)

	above := back.AboveHorizon()
	require.Len(t, above, 1)
	require.True(t, above[0].OpenEnd)
	require.True(t, above[0].Start.Equal(h(10)))
}

func TestRecordEmptyLists(t *testing.T) {
	sky := threeNights()
	sky.above = nil
	r, err := Compute(sky, testRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Record().WriteJSON(&buf))
	require.Contains(t, buf.String(), `"visible": []`)

	rec, err := ReadJSON(&buf)
	require.NoError(t, err)
	back, err := rec.Result()
	require.NoError(t, err)
	require.True(t, back.Visible().Empty())
	require.False(t, back.EverAboveHorizon())
}

func TestRecordInconsistent(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Record)
	}{
		{"flag disagrees", func(r *Record) { r.VisibleTonight = false }},
		{"overlapping windows", func(r *Record) { r.Nights = append(r.Nights, r.Nights[0]) }},
		{"unknown origin", func(r *Record) { r.Origin = "guessed" }},
		{"inverted span", func(r *Record) { r.Start, r.Stop = r.Stop, r.Start }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := computed(t).Record()
			tt.edit(&rec)
			_, err := Build(Recorded{Record: rec}, nil)
			require.True(t, errors.Is(err, ErrInconsistent), "error = %v", err)
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	r := computed(t)
	dir := t.TempDir()

	for _, ext := range []string{"json", "yaml"} {
		path, err := WriteFile(dir, r, ext)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(dir, "GRB1_Test_vis."+ext), path)

		back, err := ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, r.Record(), back.Record())
	}

	_, err := WriteFile(dir, r, "fits")
	require.Error(t, err)

	_, err = ReadFile(filepath.Join(dir, "missing_vis.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadJSONGarbage(t *testing.T) {
	_, err := ReadJSON(strings.NewReader("{not json"))
	require.Error(t, err)
}
