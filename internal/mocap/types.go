// Package mocap converts raw per-frame detections from an optical tracking
// device into identity-stable marker trajectories and resamples them to a
// target rate for downstream kinematic analysis.
package mocap

import "math"

// CoordsPerMarker is the number of scalar columns each marker contributes
// (x, y, z).
const CoordsPerMarker = 3

// Point3 is a 3D position in millimetres.
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// IsMissing reports whether the point is the detector's "no detection"
// sentinel. The device reports exactly (0,0,0) for a marker it could not
// see; a real observation is never exactly at the origin.
func (p Point3) IsMissing() bool {
	return p.X == 0 && p.Y == 0 && p.Z == 0
}

// DistanceTo returns the Euclidean distance to q in millimetres.
func (p Point3) DistanceTo(q Point3) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// RawFrame is one time step of unlabelled detections, in the column order
// the detector reported them. It may contain any number of points,
// including sentinels.
type RawFrame []Point3

// Detections returns the non-sentinel points of the frame, preserving
// frame order.
func (f RawFrame) Detections() []Point3 {
	out := make([]Point3, 0, len(f))
	for _, p := range f {
		if !p.IsMissing() {
			out = append(out, p)
		}
	}
	return out
}

// LabelledFrame is one time step of identity-resolved positions. Index i
// holds the position of identity i+1. Every entry is a real observation:
// no sentinels, no NaNs.
type LabelledFrame []Point3

// Track is an ordered sequence of labelled frames with constant marker
// cardinality. It is immutable once produced by the tracker.
type Track struct {
	frames  []LabelledFrame
	markers int
}

// NewTrack builds a track from pre-labelled frames. Every frame must have
// exactly markers entries; NewTrack is used by the tracker and by CSV
// ingest, both of which guarantee that.
func NewTrack(frames []LabelledFrame, markers int) Track {
	return Track{frames: frames, markers: markers}
}

// Len returns the number of frames in the track.
func (t Track) Len() int { return len(t.frames) }

// Markers returns the marker cardinality of the track.
func (t Track) Markers() int { return t.markers }

// Columns returns the number of scalar columns (markers × 3).
func (t Track) Columns() int { return t.markers * CoordsPerMarker }

// Frame returns the labelled frame at index i.
func (t Track) Frame(i int) LabelledFrame { return t.frames[i] }

// Position returns the position of identity id (1-based) at frame i.
func (t Track) Position(i, id int) Point3 { return t.frames[i][id-1] }

// Column extracts scalar column c as a dense series, one value per frame.
// Columns are ordered x1,y1,z1,x2,y2,z2,... matching the identity order
// established at initialisation.
func (t Track) Column(c int) []float64 {
	out := make([]float64, len(t.frames))
	marker := c / CoordsPerMarker
	coord := c % CoordsPerMarker
	for i, f := range t.frames {
		p := f[marker]
		switch coord {
		case 0:
			out[i] = p.X
		case 1:
			out[i] = p.Y
		default:
			out[i] = p.Z
		}
	}
	return out
}

// trackFromColumns rebuilds a track from per-column series. All columns
// must have equal length and the column count must be a multiple of three.
func trackFromColumns(cols [][]float64, markers int) Track {
	if len(cols) == 0 {
		return Track{markers: markers}
	}
	n := len(cols[0])
	frames := make([]LabelledFrame, n)
	for i := 0; i < n; i++ {
		frame := make(LabelledFrame, markers)
		for m := 0; m < markers; m++ {
			frame[m] = Point3{
				X: cols[m*CoordsPerMarker+0][i],
				Y: cols[m*CoordsPerMarker+1][i],
				Z: cols[m*CoordsPerMarker+2][i],
			}
		}
		frames[i] = frame
	}
	return Track{frames: frames, markers: markers}
}
