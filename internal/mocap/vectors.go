package mocap

import "fmt"

// PairVectors computes the unit direction vector from marker `from` to
// marker `to` (1-based identities) for every frame of the track. Frames
// where the two markers coincide produce the zero vector, since no
// direction is defined there.
func PairVectors(track Track, from, to int) ([]Point3, error) {
	if from < 1 || from > track.Markers() || to < 1 || to > track.Markers() {
		return nil, fmt.Errorf("pair vectors: markers %d->%d out of range 1..%d", from, to, track.Markers())
	}
	if from == to {
		return nil, fmt.Errorf("pair vectors: markers must differ, got %d twice", from)
	}

	out := make([]Point3, track.Len())
	for i := range out {
		a := track.Position(i, from)
		b := track.Position(i, to)
		d := Point3{X: b.X - a.X, Y: b.Y - a.Y, Z: b.Z - a.Z}
		norm := a.DistanceTo(b)
		if norm == 0 {
			continue
		}
		out[i] = Point3{X: d.X / norm, Y: d.Y / norm, Z: d.Z / norm}
	}
	return out, nil
}
