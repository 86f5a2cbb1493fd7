package mocap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteTrackCSV_HeaderAndRoundTrip(t *testing.T) {
	track := NewTrack([]LabelledFrame{
		{{X: 1.25, Y: -2.5, Z: 3}, {X: 4, Y: 5, Z: 6}},
		{{X: 1.5, Y: -2.25, Z: 3.125}, {X: 4.5, Y: 5.5, Z: 6.5}},
	}, 2)

	var buf bytes.Buffer
	if err := WriteTrackCSV(&buf, track); err != nil {
		t.Fatalf("WriteTrackCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "x1,y1,z1,x2,y2,z2" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	loaded, err := ReadTrackCSV(&buf)
	if err != nil {
		t.Fatalf("ReadTrackCSV: %v", err)
	}
	if loaded.Markers() != 2 || loaded.Len() != 2 {
		t.Fatalf("loaded %d markers × %d frames, want 2 × 2", loaded.Markers(), loaded.Len())
	}
	for i := 0; i < track.Len(); i++ {
		if diff := cmp.Diff(track.Frame(i), loaded.Frame(i)); diff != "" {
			t.Errorf("frame %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestWriteRawFramesCSV(t *testing.T) {
	frames := []RawFrame{
		{{X: 1, Y: 2, Z: 3}, {}},
		{{X: 4, Y: 5, Z: 6}, {X: 7, Y: 8, Z: 9}},
	}

	var buf bytes.Buffer
	if err := WriteRawFramesCSV(&buf, frames); err != nil {
		t.Fatalf("WriteRawFramesCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "x1,y1,z1,x2,y2,z2" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1.000000,2.000000,3.000000,0.000000") {
		t.Errorf("row 1 = %q, sentinel should serialise as zeros", lines[1])
	}

	if err := WriteRawFramesCSV(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for empty frame slice")
	}
}

func TestReadTrackCSV_Malformed(t *testing.T) {
	cases := []struct {
		name string
		csv  string
	}{
		{"no data rows", "x1,y1,z1\n"},
		{"width not multiple of three", "x1,y1\n1,2\n"},
		{"non-numeric cell", "x1,y1,z1\n1,foo,3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadTrackCSV(strings.NewReader(tc.csv)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
