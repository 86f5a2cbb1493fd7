package mocap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPoint3_IsMissing(t *testing.T) {
	if !(Point3{}).IsMissing() {
		t.Error("zero triple should be the sentinel")
	}
	if (Point3{X: 0.0001}).IsMissing() {
		t.Error("near-zero point is a real observation")
	}
	if (Point3{Z: -1}).IsMissing() {
		t.Error("point with one nonzero coordinate is a real observation")
	}
}

func TestRawFrame_Detections(t *testing.T) {
	frame := RawFrame{
		{X: 1, Y: 2, Z: 3},
		{},
		{X: 4, Y: 5, Z: 6},
		{},
	}
	got := frame.Detections()
	want := []Point3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Detections mismatch (-want +got):\n%s", diff)
	}
}

func TestTrack_ColumnRoundTrip(t *testing.T) {
	frames := []LabelledFrame{
		{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		{{X: 7, Y: 8, Z: 9}, {X: 10, Y: 11, Z: 12}},
		{{X: 13, Y: 14, Z: 15}, {X: 16, Y: 17, Z: 18}},
	}
	track := NewTrack(frames, 2)

	if track.Columns() != 6 {
		t.Fatalf("Columns() = %d, want 6", track.Columns())
	}

	cols := make([][]float64, track.Columns())
	for c := range cols {
		cols[c] = track.Column(c)
	}
	if diff := cmp.Diff([]float64{1, 7, 13}, cols[0]); diff != "" {
		t.Errorf("column x1 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{6, 12, 18}, cols[5]); diff != "" {
		t.Errorf("column z2 mismatch (-want +got):\n%s", diff)
	}

	rebuilt := trackFromColumns(cols, 2)
	for i := 0; i < track.Len(); i++ {
		if diff := cmp.Diff(track.Frame(i), rebuilt.Frame(i)); diff != "" {
			t.Errorf("frame %d mismatch after rebuild (-want +got):\n%s", i, diff)
		}
	}
}

func TestTrack_Position(t *testing.T) {
	track := NewTrack([]LabelledFrame{
		{{X: 1}, {X: 2}},
	}, 2)
	if got := track.Position(0, 2); got.X != 2 {
		t.Errorf("Position(0, 2).X = %g, want 2", got.X)
	}
}
