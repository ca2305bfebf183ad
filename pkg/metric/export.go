package metric

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/eth-easl/gumeter/pkg/timeline"
)

const (
	SummaryFileName   = "summary.csv"
	AggregateFileName = "aggregate.csv"
)

type Exporter struct {
	mutex     sync.Mutex
	reportID  string
	summaries []RunSummaryRecord
}

func NewExporter() *Exporter {
	return &Exporter{
		reportID:  uuid.New().String(),
		summaries: []RunSummaryRecord{},
	}
}

func (ep *Exporter) ReportID() string {
	return ep.reportID
}

// ReportRun may be called concurrently.
func (ep *Exporter) ReportRun(record RunSummaryRecord) {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	record.ReportID = ep.reportID
	ep.summaries = append(ep.summaries, record)
}

func (ep *Exporter) GetRunRecordLen() int {
	ep.mutex.Lock()
	defer ep.mutex.Unlock()

	return len(ep.summaries)
}

// Summaries returns the reported runs ordered by benchmark, backend and replica.
func (ep *Exporter) Summaries() []RunSummaryRecord {
	ep.mutex.Lock()
	summaries := append([]RunSummaryRecord{}, ep.summaries...)
	ep.mutex.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.Benchmark != b.Benchmark {
			return a.Benchmark < b.Benchmark
		}
		if a.Backend != b.Backend {
			return a.Backend < b.Backend
		}
		return a.Replica < b.Replica
	})

	return summaries
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.Mean(values, nil), stat.PopStdDev(values, nil)
}

// Aggregate groups the reported runs by benchmark and backend. Runs without a
// known cost are left out of the cost and cost efficiency statistics.
func (ep *Exporter) Aggregate() []AggregateRecord {
	type group struct {
		elasticity, cost, executionTime, efficiency []float64
		replicas                                    int
	}

	var order [][2]string
	groups := map[[2]string]*group{}
	for _, s := range ep.Summaries() {
		key := [2]string{s.Benchmark, s.Backend}
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			order = append(order, key)
		}

		g.replicas++
		g.elasticity = append(g.elasticity, s.Elasticity)
		g.executionTime = append(g.executionTime, s.ExecutionTime)
		if s.CostKnown {
			g.cost = append(g.cost, s.Cost)
			if s.CostEfficiency > 0 {
				g.efficiency = append(g.efficiency, s.CostEfficiency)
			}
		}
	}

	aggregates := make([]AggregateRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		record := AggregateRecord{Benchmark: key[0], Backend: key[1], Replicas: g.replicas}
		record.ElasticityMean, record.ElasticityStd = meanStd(g.elasticity)
		record.CostMean, record.CostStd = meanStd(g.cost)
		record.ExecutionTimeMean, record.ExecutionTimeStd = meanStd(g.executionTime)
		record.CostEfficiencyMean, record.CostEfficiencyStd = meanStd(g.efficiency)
		aggregates = append(aggregates, record)
	}

	return aggregates
}

func writeCSV(filePath string, records interface{}) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer f.Close()

	return errors.Wrap(gocsv.MarshalFile(records, f), filePath)
}

// FinishAndSave writes the run summaries and their aggregates to outputDir.
func (ep *Exporter) FinishAndSave(outputDir string) error {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	summaries := ep.Summaries()
	if err := writeCSV(filepath.Join(outputDir, SummaryFileName), &summaries); err != nil {
		return err
	}

	aggregates := ep.Aggregate()
	if err := writeCSV(filepath.Join(outputDir, AggregateFileName), &aggregates); err != nil {
		return err
	}

	log.Infof("Saved %d run summaries and %d aggregates to %s", len(summaries), len(aggregates), outputDir)
	return nil
}

// ReadSummaries loads a summary file written by FinishAndSave.
func ReadSummaries(filePath string) ([]RunSummaryRecord, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening summary file")
	}
	defer f.Close()

	var summaries []RunSummaryRecord
	if err := gocsv.UnmarshalFile(f, &summaries); err != nil {
		return nil, errors.Wrap(err, filePath)
	}
	return summaries, nil
}

// WriteCurves saves sampled timeline curves for the plotting layer.
func WriteCurves(filePath string, curves timeline.Curves) error {
	samples := make([]TimelineSampleRecord, len(curves.Time))
	for i := range curves.Time {
		samples[i] = TimelineSampleRecord{
			Time:        curves.Time[i],
			Required:    curves.Required[i],
			Provisioned: curves.Provisioned[i],
		}
	}
	return writeCSV(filePath, &samples)
}

// WriteBreakpoints saves the raw breakpoints of both timeline curves.
func WriteBreakpoints(filePath string, tl timeline.Timeline) error {
	var records []BreakpointRecord
	for _, curve := range []struct {
		name string
		sf   timeline.StepFunction
	}{{"provisioned", tl.Provisioned}, {"required", tl.Required}} {
		for _, bp := range curve.sf.Breakpoints {
			records = append(records, BreakpointRecord{Curve: curve.name, Time: bp.Time, Level: bp.Level})
		}
	}
	return writeCSV(filePath, &records)
}
