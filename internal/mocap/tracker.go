package mocap

import "fmt"

// Default tracker parameters, matching the capture rig's configuration.
const (
	// DefaultMarkerCount is the number of physical markers on the rig.
	DefaultMarkerCount = 2
	// DefaultMaxPositionChangeMM is the distance gate: the largest
	// frame-to-frame displacement (mm) still considered the same marker.
	DefaultMaxPositionChangeMM = 5.0
)

// TrackerConfig holds configuration for identity resolution.
type TrackerConfig struct {
	MarkerCount         int           // Number of physical markers (fixed per run)
	MaxPositionChangeMM float64       // Distance gate in millimetres
	Strategy            MatchStrategy // Assignment policy; nil means FirstCandidate
}

// DefaultTrackerConfig returns the tracker configuration used by the
// capture rig.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MarkerCount:         DefaultMarkerCount,
		MaxPositionChangeMM: DefaultMaxPositionChangeMM,
		Strategy:            FirstCandidate(),
	}
}

// Tracker resolves marker identities across frames. Identity labels
// (1..MarkerCount) carry no device meaning: they are fixed by the order the
// markers appear in the first frame and kept stable from there by
// nearest-position continuity under the distance gate.
//
// A Tracker holds no state between runs; the previous-position arena lives
// for the duration of one Label call.
type Tracker struct {
	config TrackerConfig
}

// NewTracker creates a tracker with the specified configuration.
func NewTracker(config TrackerConfig) (*Tracker, error) {
	if config.MarkerCount < 1 {
		return nil, fmt.Errorf("tracker: marker count must be at least 1, got %d", config.MarkerCount)
	}
	if config.MaxPositionChangeMM <= 0 {
		return nil, fmt.Errorf("tracker: max position change must be positive, got %g", config.MaxPositionChangeMM)
	}
	if config.Strategy == nil {
		config.Strategy = FirstCandidate()
	}
	return &Tracker{config: config}, nil
}

// Config returns the tracker's configuration.
func (t *Tracker) Config() TrackerConfig { return t.config }

// Label consumes an ordered sequence of raw frames and produces an
// identity-stable track of exactly MarkerCount markers per frame.
//
// The first frame must contain exactly MarkerCount valid detections; they
// bind identities 1..MarkerCount in frame order, and that arbitrary order
// is ground truth for the whole run. Every later frame must yield exactly
// MarkerCount candidate pairs under the distance gate or the run fails with
// *IdentityLostError. Failures are fatal: no partial track is returned.
func (t *Tracker) Label(frames []RawFrame) (Track, error) {
	markers := t.config.MarkerCount
	gate := t.config.MaxPositionChangeMM

	if len(frames) == 0 {
		return Track{}, &InitializationError{Got: 0, Want: markers}
	}

	initial := frames[0].Detections()
	if len(initial) != markers {
		return Track{}, &InitializationError{Got: len(initial), Want: markers}
	}

	// Previous-position arena: one slot per identity, owned by this run,
	// overwritten in place each frame.
	prev := make([]Point3, markers)
	copy(prev, initial)

	labelled := make([]LabelledFrame, 0, len(frames))
	first := make(LabelledFrame, markers)
	copy(first, initial)
	labelled = append(labelled, first)

	for i := 1; i < len(frames); i++ {
		cands := gateCandidates(frames[i], prev, gate)
		if len(cands) != markers {
			return Track{}, &IdentityLostError{Frame: i, Candidates: len(cands), Want: markers}
		}

		resolved := make(LabelledFrame, markers)
		if err := t.config.Strategy.Assign(cands, resolved); err != nil {
			return Track{}, fmt.Errorf("frame %d: %w", i, err)
		}

		copy(prev, resolved)
		labelled = append(labelled, resolved)
	}

	return NewTrack(labelled, markers), nil
}

// gateCandidates collects every (point, identity) pair whose distance is
// inside the gate. Points outer in frame order, identities inner in
// ascending order, no deduplication.
func gateCandidates(frame RawFrame, prev []Point3, gate float64) []Candidate {
	cands := make([]Candidate, 0, len(prev))
	for _, p := range frame {
		if p.IsMissing() {
			continue
		}
		for id := 1; id <= len(prev); id++ {
			d := p.DistanceTo(prev[id-1])
			if d < gate {
				cands = append(cands, Candidate{Point: p, Identity: id, Distance: d})
			}
		}
	}
	return cands
}
