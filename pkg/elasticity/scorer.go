package elasticity

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/telemetry"
	"github.com/eth-easl/gumeter/pkg/timeline"
)

// Scorer turns required (Cr) and provisioned (Cp) capacity, sampled every
// step seconds on the same axis, into an elasticity coefficient.
type Scorer interface {
	Name() string
	Score(required, provisioned []float64, step float64) (float64, error)
}

func NewScorer(strategy string, burstPenalty float64) (Scorer, error) {
	switch strategy {
	case common.StrategyArea:
		return AreaScorer{}, nil
	case common.StrategyBurstPenalty:
		return BurstPenaltyScorer{Penalty: burstPenalty}, nil
	default:
		return nil, errors.Errorf("unsupported elasticity strategy %q", strategy)
	}
}

func checkLengths(required, provisioned []float64) error {
	if len(required) != len(provisioned) {
		return &ValidationError{
			Kind:   LengthMismatch,
			Detail: fmt.Sprintf("%d required vs %d provisioned samples", len(required), len(provisioned)),
		}
	}
	return nil
}

// AreaScorer scores 1 - area(Cr - Cp) / area(Cr). Provisioned capacity must
// never exceed the required one. A run that never required anything scores 1.
type AreaScorer struct{}

func (AreaScorer) Name() string {
	return common.StrategyArea
}

func (AreaScorer) Score(required, provisioned []float64, step float64) (float64, error) {
	if err := checkLengths(required, provisioned); err != nil {
		return 0, err
	}
	for i := range required {
		if provisioned[i] > required[i] {
			return 0, &ValidationError{
				Kind:   OverProvisioned,
				Index:  i,
				Detail: fmt.Sprintf("sample %d: provisioned %v > required %v", i, provisioned[i], required[i]),
			}
		}
	}
	if step <= 0 {
		step = common.DefaultSamplingStep
	}

	diff := make([]float64, len(required))
	floats.SubTo(diff, required, provisioned)

	areaDiff := floats.Sum(diff) * step
	maxArea := floats.Sum(required) * step
	if maxArea == 0 {
		return 1, nil
	}

	return 1 - areaDiff/maxArea, nil
}

// BurstPenaltyScorer scores the mean of Cr/Cp over the run minus Penalty
// times the integral of |d(Cp/Cr)/dt|, rewarding smooth tracking.
// Samples where both curves are zero count as perfectly tracked; a zero on
// one side only makes the ratio undefined.
type BurstPenaltyScorer struct {
	Penalty float64
}

func (BurstPenaltyScorer) Name() string {
	return common.StrategyBurstPenalty
}

func (bs BurstPenaltyScorer) Score(required, provisioned []float64, step float64) (float64, error) {
	if err := checkLengths(required, provisioned); err != nil {
		return 0, err
	}
	if len(required) < 2 {
		return 0, &ValidationError{Kind: TooFewSamples, Detail: fmt.Sprintf("%d samples, need at least 2", len(required))}
	}
	if step <= 0 {
		step = common.DefaultSamplingStep
	}

	n := len(required)
	t := make([]float64, n)
	requiredOverProvisioned := make([]float64, n)
	provisionedOverRequired := make([]float64, n)

	for i := 0; i < n; i++ {
		t[i] = float64(i) * step

		cr, cp := required[i], provisioned[i]
		switch {
		case cr == 0 && cp == 0:
			requiredOverProvisioned[i] = 1
			provisionedOverRequired[i] = 1
		case cr == 0 || cp == 0:
			return 0, &ValidationError{
				Kind:   UndefinedRatio,
				Index:  i,
				Detail: fmt.Sprintf("sample %d: required %v, provisioned %v", i, cr, cp),
			}
		default:
			requiredOverProvisioned[i] = cr / cp
			provisionedOverRequired[i] = cp / cr
		}
	}

	efficiency := integrate.Trapezoidal(t, requiredOverProvisioned) / (t[n-1] - t[0])

	slope := gradient(provisionedOverRequired, step)
	for i := range slope {
		slope[i] = math.Abs(slope[i])
	}
	penalty := integrate.Trapezoidal(t, slope)

	return efficiency - bs.Penalty*penalty, nil
}

// gradient uses central differences inside and one-sided differences at the ends.
func gradient(f []float64, h float64) []float64 {
	n := len(f)
	g := make([]float64, n)
	g[0] = (f[1] - f[0]) / h
	g[n-1] = (f[n-1] - f[n-2]) / h
	for i := 1; i < n-1; i++ {
		g[i] = (f[i+1] - f[i-1]) / (2 * h)
	}
	return g
}

// ScoreCurves applies s to sampled timeline curves.
func ScoreCurves(s Scorer, curves timeline.Curves) (float64, error) {
	return s.Score(curves.Required, curves.Provisioned, curves.Step)
}

// Measure reconstructs the timeline of a run, samples it every step seconds
// and scores it with s.
func Measure(record *telemetry.RunRecord, s Scorer, step float64) (float64, timeline.Curves, error) {
	curves, err := timeline.Reconstruct(record).Sample(step, common.DefaultMaxSamples)
	if err != nil {
		return 0, curves, err
	}

	score, err := ScoreCurves(s, curves)
	if err != nil {
		return 0, curves, errors.Wrapf(err, "%s strategy", s.Name())
	}
	return score, curves, nil
}
