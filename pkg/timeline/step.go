package timeline

import (
	"math"
	"sort"

	"github.com/eth-easl/gumeter/pkg/common"
)

// Event is a change of a concurrency counter at Time seconds since the start of a run.
type Event struct {
	Time  float64
	Delta int
}

// SortEvents returns a copy of events ordered by time. At equal times
// increments come before decrements, otherwise input order is kept, so a
// worker ending exactly when another one starts never shows a dip.
func SortEvents(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Time != sorted[j].Time {
			return sorted[i].Time < sorted[j].Time
		}
		return sign(sorted[i].Delta) > sign(sorted[j].Delta)
	})

	return sorted
}

func sign(delta int) int {
	switch {
	case delta > 0:
		return 1
	case delta < 0:
		return -1
	}
	return 0
}

type Breakpoint struct {
	Time  float64
	Level int
}

// StepFunction is a right-continuous piecewise-constant function of elapsed
// time. Breakpoint times never decrease and levels are never negative.
// A jump at t is stored as two breakpoints at t: the level held before and
// the level after.
type StepFunction struct {
	Breakpoints []Breakpoint
}

// BuildStepFunction accumulates events into a step function defined on [0, duration].
func BuildStepFunction(events []Event, duration float64) StepFunction {
	breakpoints := []Breakpoint{{Time: 0.0, Level: 0}}
	level := 0

	for _, event := range SortEvents(events) {
		t := math.Max(0, event.Time)

		if t > breakpoints[len(breakpoints)-1].Time {
			breakpoints = append(breakpoints, Breakpoint{Time: t, Level: nonNegative(level)})
		}
		level += event.Delta
		breakpoints = append(breakpoints, Breakpoint{Time: t, Level: nonNegative(level)})
	}

	if breakpoints[len(breakpoints)-1].Time < duration {
		breakpoints = append(breakpoints, Breakpoint{Time: duration, Level: nonNegative(level)})
	}

	return StepFunction{Breakpoints: breakpoints}
}

func nonNegative(level int) int {
	if level < 0 {
		return 0
	}
	return level
}

// End is the time of the last breakpoint.
func (sf StepFunction) End() float64 {
	if len(sf.Breakpoints) == 0 {
		return 0
	}
	return sf.Breakpoints[len(sf.Breakpoints)-1].Time
}

// At returns the level of the last breakpoint with time <= t.
func (sf StepFunction) At(t float64) int {
	i := sort.Search(len(sf.Breakpoints), func(i int) bool {
		return sf.Breakpoints[i].Time > t
	})
	if i == 0 {
		return 0
	}
	return sf.Breakpoints[i-1].Level
}

// Sample evaluates the function on an increasing time axis in one merged
// pass over the axis and the breakpoints.
func (sf StepFunction) Sample(axis []float64) []float64 {
	values := make([]float64, len(axis))
	if len(sf.Breakpoints) == 0 {
		return values
	}

	idx := 0
	for i, t := range axis {
		for idx+1 < len(sf.Breakpoints) && sf.Breakpoints[idx+1].Time <= t {
			idx++
		}
		if sf.Breakpoints[idx].Time <= t {
			values[i] = float64(sf.Breakpoints[idx].Level)
		}
	}

	return values
}

// Points returns the breakpoints as parallel slices, ready to be drawn as steps.
func (sf StepFunction) Points() ([]float64, []float64) {
	xs := make([]float64, len(sf.Breakpoints))
	ys := make([]float64, len(sf.Breakpoints))
	for i, bp := range sf.Breakpoints {
		xs[i] = bp.Time
		ys[i] = float64(bp.Level)
	}
	return xs, ys
}

// SampleCount is the length of TimeAxis(duration, step), computed without
// building the axis.
func SampleCount(duration, step float64) float64 {
	if step <= 0 {
		step = common.DefaultSamplingStep
	}
	duration = math.Max(0, duration)

	n := math.Floor(duration/step + 1e-9)
	if math.Min(n*step, duration) < duration {
		return n + 2
	}
	return n + 1
}

// TimeAxis returns 0, step, 2*step, ... up to duration, always ending at duration.
// Callers bound the axis length with SampleCount first.
func TimeAxis(duration, step float64) []float64 {
	if step <= 0 {
		step = common.DefaultSamplingStep
	}
	duration = math.Max(0, duration)

	n := int(math.Floor(duration/step + 1e-9))
	axis := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		axis = append(axis, math.Min(float64(i)*step, duration))
	}
	if axis[len(axis)-1] < duration {
		axis = append(axis, duration)
	}

	return axis
}
