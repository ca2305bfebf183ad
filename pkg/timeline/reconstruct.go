package timeline

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/telemetry"
)

// ErrTooManySamples rejects a timeline whose sampled curves would not fit the
// sample limit, typically a run with an implausible duration.
var ErrTooManySamples = errors.New("timeline: too many samples")

// Timeline holds the provisioned and required worker curves of one run on a
// shared axis of seconds since the start of the run.
type Timeline struct {
	Duration    float64
	Provisioned StepFunction
	Required    StepFunction
}

// Curves are the two timeline functions sampled on the same axis.
type Curves struct {
	Step        float64
	Time        []float64
	Required    []float64
	Provisioned []float64
}

func relative(record *telemetry.RunRecord, duration, tstamp float64) float64 {
	return common.Clamp(tstamp-record.StartTime, 0, duration)
}

// ProvisionedEvents yields +1 at every worker start and -1 at every worker end.
func ProvisionedEvents(record *telemetry.RunRecord) []Event {
	if record == nil || record.Empty {
		return nil
	}
	duration := record.ExecutionTime()

	var events []Event
	for _, stage := range record.Stages {
		for _, w := range stage.Workers {
			events = append(events,
				Event{Time: relative(record, duration, w.WorkerStartTstamp), Delta: 1},
				Event{Time: relative(record, duration, w.WorkerEndTstamp), Delta: -1},
			)
		}
	}

	return events
}

// RequiredEvents yields, per stage, +N at the earliest worker start and -1 at
// every worker end: all N workers are required as soon as the stage can start.
func RequiredEvents(record *telemetry.RunRecord) []Event {
	if record == nil || record.Empty {
		return nil
	}
	duration := record.ExecutionTime()

	var events []Event
	for _, stage := range record.Stages {
		if len(stage.Workers) == 0 {
			continue
		}
		events = append(events, Event{Time: relative(record, duration, stage.Start()), Delta: len(stage.Workers)})
		for _, w := range stage.Workers {
			events = append(events, Event{Time: relative(record, duration, w.WorkerEndTstamp), Delta: -1})
		}
	}

	return events
}

// Reconstruct builds the provisioned and required curves of a run.
func Reconstruct(record *telemetry.RunRecord) Timeline {
	duration := record.ExecutionTime()

	if record != nil {
		for _, err := range record.Validate() {
			log.Debug("Clipping worker: ", err)
		}
	}

	return Timeline{
		Duration:    duration,
		Provisioned: BuildStepFunction(ProvisionedEvents(record), duration),
		Required:    BuildStepFunction(RequiredEvents(record), duration),
	}
}

// Sample evaluates both curves on TimeAxis(Duration, step). Timelines needing
// more than maxSamples points yield ErrTooManySamples; a non-positive
// maxSamples means common.DefaultMaxSamples.
func (tl Timeline) Sample(step float64, maxSamples int) (Curves, error) {
	if step <= 0 {
		step = common.DefaultSamplingStep
	}
	if maxSamples <= 0 {
		maxSamples = common.DefaultMaxSamples
	}

	if count := SampleCount(tl.Duration, step); count > float64(maxSamples) {
		return Curves{Step: step}, errors.Wrapf(ErrTooManySamples,
			"%.0f samples of %v s over %v s, limit %d", count, step, tl.Duration, maxSamples)
	}
	axis := TimeAxis(tl.Duration, step)

	return Curves{
		Step:        step,
		Time:        axis,
		Required:    tl.Required.Sample(axis),
		Provisioned: tl.Provisioned.Sample(axis),
	}, nil
}
