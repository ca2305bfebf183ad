package cost

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/gumeter/pkg/telemetry"
)

var ErrUnknownBackend = errors.New("no pricing for backend")

// Breakdown is the cost of one run split by billing term.
type Breakdown struct {
	Backend        string
	ComputeSeconds float64
	Invocations    int

	ComputeCost    float64
	CPUCost        float64
	MemoryCost     float64
	InvocationCost float64
}

func (b Breakdown) Total() float64 {
	return b.ComputeCost + b.CPUCost + b.MemoryCost + b.InvocationCost
}

// TimeCost is the part of the cost proportional to compute time.
func (b Breakdown) TimeCost() float64 {
	return b.ComputeCost + b.CPUCost + b.MemoryCost
}

type Estimator struct {
	pricing PricingTable
}

func NewEstimator(pricing PricingTable) *Estimator {
	return &Estimator{pricing: pricing}
}

// ComputeTime sums worker occupancy over all stages and counts the workers.
func ComputeTime(record *telemetry.RunRecord) (float64, int) {
	if record == nil {
		return 0, 0
	}

	total := 0.0
	count := 0
	for _, stage := range record.Stages {
		for _, w := range stage.Workers {
			total += w.Duration()
			count++
		}
	}
	return total, count
}

// Estimate prices a run on backend. Backends missing from the pricing table
// yield ErrUnknownBackend.
func (e *Estimator) Estimate(record *telemetry.RunRecord, backend string) (Breakdown, error) {
	rates, ok := e.pricing[backend]
	if !ok {
		return Breakdown{Backend: backend}, errors.Wrap(ErrUnknownBackend, backend)
	}

	seconds, invocations := ComputeTime(record)
	b := Breakdown{
		Backend:        backend,
		ComputeSeconds: seconds,
		Invocations:    invocations,
		InvocationCost: float64(invocations) * rates.Invocation,
	}

	if rates.SplitBilling() {
		b.CPUCost = seconds * rates.CPUSecond
		b.MemoryCost = seconds * rates.MemorySecond
	} else {
		b.ComputeCost = seconds * rates.ComputeSecond
	}

	return b, nil
}

// Cost is the permissive form of Estimate: unknown backends cost nothing.
// Callers dividing by the result must guard against zero.
func (e *Estimator) Cost(record *telemetry.RunRecord, backend string) float64 {
	b, err := e.Estimate(record, backend)
	if err != nil {
		log.Warn("Assuming zero cost: ", err)
		return 0
	}
	return b.Total()
}

// Efficiency is 1 / (cost * execution time). It is not defined when either is zero.
func Efficiency(cost, executionTime float64) (float64, bool) {
	if cost <= 0 || executionTime <= 0 {
		return 0, false
	}
	return 1 / (cost * executionTime), true
}
