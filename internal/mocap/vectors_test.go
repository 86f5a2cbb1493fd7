package mocap

import (
	"math"
	"testing"
)

func TestPairVectors(t *testing.T) {
	track := NewTrack([]LabelledFrame{
		{{X: 0, Y: 0, Z: 0}, {X: 3, Y: 4, Z: 0}},
		{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 6}},
		{{X: 2, Y: 2, Z: 2}, {X: 2, Y: 2, Z: 2}}, // coincident
	}, 2)

	vecs, err := PairVectors(track, 1, 2)
	if err != nil {
		t.Fatalf("PairVectors: %v", err)
	}
	if len(vecs) != track.Len() {
		t.Fatalf("got %d vectors, want %d", len(vecs), track.Len())
	}

	want := []Point3{
		{X: 0.6, Y: 0.8, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{}, // zero vector when markers coincide
	}
	for i, w := range want {
		if math.Abs(vecs[i].X-w.X) > 1e-12 ||
			math.Abs(vecs[i].Y-w.Y) > 1e-12 ||
			math.Abs(vecs[i].Z-w.Z) > 1e-12 {
			t.Errorf("frame %d: got %+v, want %+v", i, vecs[i], w)
		}
	}

	// Reversing the pair flips every non-zero vector.
	rev, err := PairVectors(track, 2, 1)
	if err != nil {
		t.Fatalf("PairVectors reversed: %v", err)
	}
	for i := range rev {
		if math.Abs(rev[i].X+vecs[i].X) > 1e-12 {
			t.Errorf("frame %d: reversed X = %v, want %v", i, rev[i].X, -vecs[i].X)
		}
	}
}

func TestPairVectors_Validation(t *testing.T) {
	track := NewTrack([]LabelledFrame{{{X: 1}, {X: 2}}}, 2)

	if _, err := PairVectors(track, 0, 2); err == nil {
		t.Error("expected error for marker 0")
	}
	if _, err := PairVectors(track, 1, 3); err == nil {
		t.Error("expected error for marker beyond count")
	}
	if _, err := PairVectors(track, 1, 1); err == nil {
		t.Error("expected error for identical markers")
	}
}
