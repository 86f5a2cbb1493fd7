package mocap

import (
	"fmt"
	"math"
)

// Candidate pairs a detected point with an identity whose previous position
// lies within the distance gate. The candidate list for a frame is collected
// points-outer, identities-inner, in frame and identity order, without
// deduplicating by point or by identity: one point may qualify for several
// identities and one identity may be reached by several points.
type Candidate struct {
	Point    Point3
	Identity int // 1-based
	Distance float64
}

// MatchStrategy turns a frame's gated candidate list into one position per
// identity. The tracker has already verified that the list contains exactly
// marker-count entries; the strategy decides which point goes to which
// identity. out has one slot per identity, index = identity-1.
type MatchStrategy interface {
	// Name identifies the strategy in logs and run records.
	Name() string
	Assign(cands []Candidate, out []Point3) error
}

// FirstCandidate returns the default matching policy: the first candidate
// pair binds its identity to its point, and the remaining identities take
// the remaining candidates' points by elimination, in order, without
// re-checking those candidates' own identity fields.
//
// This reproduces the device pipeline's historical behaviour exactly. When
// two markers cross inside the gate distance the elimination step can
// silently swap them; callers that need the assignment verified should use
// Optimal instead.
func FirstCandidate() MatchStrategy { return firstCandidateStrategy{} }

type firstCandidateStrategy struct{}

func (firstCandidateStrategy) Name() string { return "first-candidate" }

func (firstCandidateStrategy) Assign(cands []Candidate, out []Point3) error {
	if len(cands) != len(out) {
		return fmt.Errorf("matching: %d candidates for %d identities", len(cands), len(out))
	}

	first := cands[0]
	out[first.Identity-1] = first.Point

	// Remaining identities ascending, remaining candidate points in
	// collection order. The candidates' recorded identities are not
	// consulted past the first entry.
	next := 1
	for id := 1; id <= len(out); id++ {
		if id == first.Identity {
			continue
		}
		out[id-1] = cands[next].Point
		next++
	}
	return nil
}

// Optimal returns the documented variant policy: a minimum-total-cost
// bipartite assignment of identities to candidate points, with squared
// distance as cost. It never swaps identities when a cheaper non-swapping
// assignment exists, unlike FirstCandidate.
func Optimal() MatchStrategy { return optimalStrategy{} }

type optimalStrategy struct{}

func (optimalStrategy) Name() string { return "optimal" }

func (optimalStrategy) Assign(cands []Candidate, out []Point3) error {
	markers := len(out)

	// Collect the distinct points among the candidates, preserving order.
	points := make([]Point3, 0, len(cands))
	for _, c := range cands {
		seen := false
		for _, p := range points {
			if p == c.Point {
				seen = true
				break
			}
		}
		if !seen {
			points = append(points, c.Point)
		}
	}

	// Cost matrix: identity rows × point columns. Pairs that never appeared
	// as candidates are forbidden.
	cost := make([][]float64, markers)
	for id := 1; id <= markers; id++ {
		row := make([]float64, len(points))
		for j := range row {
			row[j] = forbiddenCost
		}
		for _, c := range cands {
			if c.Identity != id {
				continue
			}
			for j, p := range points {
				if p == c.Point {
					row[j] = c.Distance * c.Distance
				}
			}
		}
		cost[id-1] = row
	}

	assign := hungarianAssign(cost)
	for id := 1; id <= markers; id++ {
		j := assign[id-1]
		if j < 0 {
			return fmt.Errorf("matching: no admissible point for identity %d", id)
		}
		out[id-1] = points[j]
	}
	return nil
}

// StrategyByName resolves a configured strategy name. Unknown names fall
// back to the default policy.
func StrategyByName(name string) MatchStrategy {
	if name == "optimal" {
		return Optimal()
	}
	return FirstCandidate()
}

// forbiddenCost marks identity/point pairs the solver must never select.
const forbiddenCost = math.MaxFloat64 / 4
