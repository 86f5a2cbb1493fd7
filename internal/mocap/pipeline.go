package mocap

import (
	"fmt"

	"github.com/kinetic-data/motion.report/internal/monitoring"
)

// Pipeline runs identity resolution and resampling in strict order over one
// capture. Runs are independent: the pipeline holds only configuration, and
// all per-run state lives inside a single Run call.
type Pipeline struct {
	tracker   *Tracker
	resampler *Resampler
}

// NewPipeline builds a pipeline from the two stage configurations.
func NewPipeline(tc TrackerConfig, rc ResampleConfig) (*Pipeline, error) {
	tracker, err := NewTracker(tc)
	if err != nil {
		return nil, err
	}
	resampler, err := NewResampler(rc)
	if err != nil {
		return nil, err
	}
	return &Pipeline{tracker: tracker, resampler: resampler}, nil
}

// Tracker returns the pipeline's identity tracker.
func (p *Pipeline) Tracker() *Tracker { return p.tracker }

// Resampler returns the pipeline's resampler.
func (p *Pipeline) Resampler() *Resampler { return p.resampler }

// PipelineResult is the output of a fully successful run.
type PipelineResult struct {
	Labelled  Track
	Resampled Track
	Risks     []ExtrapolationRisk
}

// Run labels the cleaned frames and resamples the result. Any stage failure
// aborts the run at the point of detection with nothing produced; failures
// are deterministic, so the caller should skip or halt rather than retry.
func (p *Pipeline) Run(frames []RawFrame) (PipelineResult, error) {
	labelled, err := p.tracker.Label(frames)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("label markers: %w", err)
	}
	monitoring.Logf("labelled %d frames, %d markers, strategy %s",
		labelled.Len(), labelled.Markers(), p.tracker.Config().Strategy.Name())

	res, err := p.resampler.Resample(labelled)
	if err != nil {
		return PipelineResult{}, fmt.Errorf("resample track: %w", err)
	}
	monitoring.Logf("resampled %d frames at %g Hz to %d frames at %g Hz",
		labelled.Len(), p.resampler.Config().OriginRateHz,
		res.Track.Len(), p.resampler.Config().TargetRateHz)
	for _, risk := range res.Risks {
		monitoring.Logf("resample advisory: %s", risk)
	}

	return PipelineResult{
		Labelled:  labelled,
		Resampled: res.Track,
		Risks:     res.Risks,
	}, nil
}
