package analysis

import (
	"context"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/eth-easl/gumeter/pkg/config"
	"github.com/eth-easl/gumeter/pkg/cost"
	"github.com/eth-easl/gumeter/pkg/elasticity"
	mc "github.com/eth-easl/gumeter/pkg/metric"
	"github.com/eth-easl/gumeter/pkg/telemetry"
	"github.com/eth-easl/gumeter/pkg/timeline"
)

type AnalyzerConfiguration struct {
	Scorer       elasticity.Scorer
	SamplingStep float64
	MaxSamples   int
	Pricing      cost.PricingTable
	Concurrency  int

	Benchmarks []string
	Backends   []string
}

// NewAnalyzerConfiguration derives the analyzer settings from the meter configuration.
func NewAnalyzerConfiguration(cfg *config.MeterConfiguration) (*AnalyzerConfiguration, error) {
	scorer, err := elasticity.NewScorer(cfg.Strategy, cfg.BurstPenalty)
	if err != nil {
		return nil, err
	}

	return &AnalyzerConfiguration{
		Scorer:       scorer,
		SamplingStep: cfg.SamplingStep,
		MaxSamples:   cfg.MaxSamples,
		Pricing:      cfg.PricingTable(),
		Concurrency:  cfg.Concurrency,
		Benchmarks:   cfg.Benchmarks,
		Backends:     cfg.Backends,
	}, nil
}

// Report is the full analysis of one run.
type Report struct {
	Name     telemetry.ResultName
	Timeline timeline.Timeline
	Curves   timeline.Curves

	Stages        int
	Elasticity    float64
	ExecutionTime float64
	Cost          cost.Breakdown
	CostKnown     bool
	Efficiency    float64
}

// Summary flattens the report into an exportable row.
func (r *Report) Summary(strategy string) mc.RunSummaryRecord {
	return mc.RunSummaryRecord{
		Benchmark:      r.Name.Benchmark,
		Backend:        r.Name.Backend,
		Replica:        r.Name.Replica,
		Strategy:       strategy,
		Elasticity:     r.Elasticity,
		Cost:           r.Cost.Total(),
		CostKnown:      r.CostKnown,
		ExecutionTime:  r.ExecutionTime,
		CostEfficiency: r.Efficiency,
		Stages:         r.Stages,
		Workers:        r.Cost.Invocations,
		ComputeSeconds: r.Cost.ComputeSeconds,
	}
}

type Analyzer struct {
	Configuration *AnalyzerConfiguration
	estimator     *cost.Estimator
}

func NewAnalyzer(analyzerConfig *AnalyzerConfiguration) *Analyzer {
	return &Analyzer{
		Configuration: analyzerConfig,
		estimator:     cost.NewEstimator(analyzerConfig.Pricing),
	}
}

// Analyze scores, prices and times one run. Backends without pricing still
// get a report, with CostKnown unset.
func (a *Analyzer) Analyze(record *telemetry.RunRecord, name telemetry.ResultName) (*Report, error) {
	tl := timeline.Reconstruct(record)
	curves, err := tl.Sample(a.Configuration.SamplingStep, a.Configuration.MaxSamples)
	if err != nil {
		return nil, errors.Wrap(err, name.String())
	}

	score, err := elasticity.ScoreCurves(a.Configuration.Scorer, curves)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: %s strategy", name, a.Configuration.Scorer.Name())
	}

	report := &Report{
		Name:          name,
		Timeline:      tl,
		Curves:        curves,
		Elasticity:    score,
		ExecutionTime: record.ExecutionTime(),
	}
	if record != nil {
		report.Stages = len(record.Stages)
	}

	breakdown, err := a.estimator.Estimate(record, name.Backend)
	switch {
	case err == nil:
		report.CostKnown = true
	case errors.Is(err, cost.ErrUnknownBackend):
		log.Warnf("No pricing for %s, reporting zero cost", name)
	default:
		return nil, errors.Wrap(err, name.String())
	}
	report.Cost = breakdown

	if efficiency, ok := cost.Efficiency(breakdown.Total(), report.ExecutionTime); ok {
		report.Efficiency = efficiency
	}

	log.Debugf("%s: elasticity %.4f, cost %.6f USD, %.2f s", name, score, breakdown.Total(), report.ExecutionTime)
	return report, nil
}

// AnalyzeFile reads a result file and analyzes it. The benchmark and backend
// are taken from the file name when it follows the result naming scheme.
func (a *Analyzer) AnalyzeFile(filePath string, backend string) (*Report, error) {
	record, err := telemetry.ReadRunRecordFile(filePath)
	if err != nil {
		return nil, err
	}

	name, err := telemetry.ParseResultName(filePath)
	if err != nil {
		if backend == "" {
			return nil, errors.Wrap(err, "backend can not be derived from the file name")
		}
		name = telemetry.ResultName{Backend: backend}
	} else if backend != "" {
		name.Backend = backend
	}

	return a.Analyze(record, name)
}

func (a *Analyzer) selected(file telemetry.ResultFile) bool {
	if len(a.Configuration.Benchmarks) > 0 && !slices.Contains(a.Configuration.Benchmarks, file.Benchmark) {
		return false
	}
	if len(a.Configuration.Backends) > 0 && !slices.Contains(a.Configuration.Backends, file.Backend) {
		return false
	}
	return true
}

// RunReport analyzes every selected result of source in parallel and reports
// the summaries to exporter. Records failing analysis are skipped and their
// errors returned together once every other record is done.
func (a *Analyzer) RunReport(ctx context.Context, source telemetry.Source, exporter *mc.Exporter) ([]*Report, error) {
	files, err := source.List(ctx)
	if err != nil {
		return nil, err
	}

	var selected []telemetry.ResultFile
	for _, file := range files {
		if a.selected(file) {
			selected = append(selected, file)
		}
	}
	log.Infof("Analyzing %d of %d results", len(selected), len(files))

	reports := make([]*Report, len(selected))
	failures := make([]error, len(selected))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Configuration.Concurrency))
	for i, file := range selected {
		i, file := i, file
		g.Go(func() error {
			record, err := source.Load(ctx, file)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failures[i] = err
				return nil
			}

			report, err := a.Analyze(record, file.ResultName)
			if err != nil {
				failures[i] = err
				return nil
			}

			reports[i] = report
			exporter.ReportRun(report.Summary(a.Configuration.Scorer.Name()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *multierror.Error
	var done []*Report
	for i := range selected {
		if failures[i] != nil {
			log.Warn("Skipping result: ", failures[i])
			result = multierror.Append(result, failures[i])
			continue
		}
		done = append(done, reports[i])
	}

	return done, result.ErrorOrNil()
}
