package mocap

import "fmt"

// MinSamplesForCubic is the fewest samples a column may have for cubic
// resampling.
const MinSamplesForCubic = 4

// Default capture rates in Hz.
const (
	DefaultOriginRateHz = 60.0
	DefaultTargetRateHz = 100.0
)

// ResampleConfig holds the source and target sample rates.
type ResampleConfig struct {
	OriginRateHz float64 // Rate the device captured at
	TargetRateHz float64 // Rate the analysis stage wants
}

// DefaultResampleConfig returns the rig's capture-to-analysis rates.
func DefaultResampleConfig() ResampleConfig {
	return ResampleConfig{
		OriginRateHz: DefaultOriginRateHz,
		TargetRateHz: DefaultTargetRateHz,
	}
}

// ResampleResult carries the resampled track and any non-fatal advisories
// raised while producing it.
type ResampleResult struct {
	Track Track
	Risks []ExtrapolationRisk
}

// Resampler converts a labelled track from the origin rate to a uniform
// target rate using per-column natural cubic spline interpolation. Columns
// are independent: no cross-column smoothing and no enforcement that
// resampled marker-to-marker distances stay physically plausible.
type Resampler struct {
	config ResampleConfig
}

// NewResampler creates a resampler with the specified configuration.
func NewResampler(config ResampleConfig) (*Resampler, error) {
	if config.OriginRateHz <= 0 {
		return nil, fmt.Errorf("resampler: origin rate must be positive, got %g", config.OriginRateHz)
	}
	if config.TargetRateHz <= 0 {
		return nil, fmt.Errorf("resampler: target rate must be positive, got %g", config.TargetRateHz)
	}
	return &Resampler{config: config}, nil
}

// Config returns the resampler's configuration.
func (r *Resampler) Config() ResampleConfig { return r.config }

// Resample produces a new track on the uniform target time base. Source
// timestamps are t_i = i/origin; target timestamps are t'_j = j/target for
// ascending j while t'_j stays strictly below the last source timestamp, so
// the final partial period is never sampled.
//
// Each column needs at least MinSamplesForCubic samples or the run fails
// with *InsufficientSamplesError. Target points that land on or outside the
// source boundary region are still produced, by extrapolating the boundary
// spline segment, and reported as ExtrapolationRisk advisories.
func (r *Resampler) Resample(track Track) (ResampleResult, error) {
	n := track.Len()
	if n < MinSamplesForCubic {
		return ResampleResult{}, &InsufficientSamplesError{Column: 0, Got: n, Want: MinSamplesForCubic}
	}

	source := make([]float64, n)
	for i := range source {
		source[i] = float64(i) / r.config.OriginRateHz
	}
	last := source[n-1]

	targets := make([]float64, 0, int(last*r.config.TargetRateHz)+1)
	for j := 0; ; j++ {
		t := float64(j) / r.config.TargetRateHz
		if t >= last {
			break
		}
		targets = append(targets, t)
	}

	// Target points within half a source period of the edge lean on weakly
	// constrained boundary segments; count them per column as advisories.
	edge := 0.5 / r.config.OriginRateHz

	cols := make([][]float64, track.Columns())
	var risks []ExtrapolationRisk
	for c := 0; c < track.Columns(); c++ {
		spline, err := fitNaturalCubic(source, track.Column(c))
		if err != nil {
			return ResampleResult{}, fmt.Errorf("column %d: %w", c, err)
		}

		out := make([]float64, len(targets))
		risky := 0
		for j, t := range targets {
			out[j] = spline.evaluate(t)
			if t < source[0] || t > last-edge {
				risky++
			}
		}
		if risky > 0 {
			risks = append(risks, ExtrapolationRisk{Column: c, Samples: risky})
		}
		cols[c] = out
	}

	return ResampleResult{
		Track: trackFromColumns(cols, track.Markers()),
		Risks: risks,
	}, nil
}
