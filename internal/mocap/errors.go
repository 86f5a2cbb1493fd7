package mocap

import "fmt"

// InitializationError reports that the first frame of a run did not contain
// exactly the configured number of valid detections. The run produces no
// output.
type InitializationError struct {
	Got  int
	Want int
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initial frame has %d valid detections, want exactly %d", e.Got, e.Want)
}

// IdentityLostError reports that a frame did not yield exactly marker-count
// qualifying candidate pairs under the distance gate, so frame-to-frame
// identity can no longer be resolved. The whole run is discarded rather
// than truncated: a trajectory with an unverified identity break must not
// be published.
type IdentityLostError struct {
	Frame      int
	Candidates int
	Want       int
}

func (e *IdentityLostError) Error() string {
	return fmt.Sprintf("identity lost at frame %d: %d candidate pairs within gate, want exactly %d", e.Frame, e.Candidates, e.Want)
}

// InsufficientSamplesError reports that a column has too few samples for a
// cubic fit.
type InsufficientSamplesError struct {
	Column int
	Got    int
	Want   int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("column %d has %d samples, cubic resampling needs at least %d", e.Column, e.Got, e.Want)
}

// ExtrapolationRisk is a non-fatal advisory: some target timestamps for a
// column fell outside the safely interpolated region near the source
// boundary and were produced by extrapolating the boundary segment.
type ExtrapolationRisk struct {
	Column  int
	Samples int
}

func (r ExtrapolationRisk) String() string {
	return fmt.Sprintf("column %d: %d resampled values near or beyond the source boundary rely on extrapolation", r.Column, r.Samples)
}
