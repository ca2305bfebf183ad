package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/config"
	"github.com/eth-easl/gumeter/pkg/cost"
	"github.com/eth-easl/gumeter/pkg/elasticity"
	mc "github.com/eth-easl/gumeter/pkg/metric"
	"github.com/eth-easl/gumeter/pkg/telemetry"
	"github.com/eth-easl/gumeter/pkg/timeline"
)

const resultsDir = "../telemetry/testdata/results"

func newTestAnalyzer(t *testing.T, strategy string, backends ...string) *Analyzer {
	cfg, err := config.LoadConfiguration("")
	require.NoError(t, err)
	cfg.Strategy = strategy
	cfg.Backends = backends

	analyzerConfig, err := NewAnalyzerConfiguration(&cfg)
	require.NoError(t, err)
	return NewAnalyzer(analyzerConfig)
}

func TestAnalyzeFile(t *testing.T) {
	analyzer := newTestAnalyzer(t, common.StrategyArea)

	report, err := analyzer.AnalyzeFile(filepath.Join(resultsDir, "terasort_aws_lambda_replica0.json"), "")
	require.NoError(t, err)

	assert.Equal(t, telemetry.ResultName{Benchmark: common.BenchmarkTerasort, Backend: common.BackendAWSLambda}, report.Name)
	assert.Equal(t, 1, report.Stages)
	assert.Equal(t, 10.0, report.ExecutionTime)
	assert.InDelta(t, 1-20.0/150.0, report.Elasticity, 1e-9)

	assert.True(t, report.CostKnown)
	assert.Equal(t, 2, report.Cost.Invocations)
	assert.Equal(t, 13.0, report.Cost.ComputeSeconds)
	expectedCost := 13*0.0000166667*1679/1024 + 2*0.2/1e6
	assert.InDelta(t, expectedCost, report.Cost.Total(), 1e-15)
	assert.InDelta(t, 1/(expectedCost*10), report.Efficiency, 1e-6)

	summary := report.Summary(analyzer.Configuration.Scorer.Name())
	assert.Equal(t, common.StrategyArea, summary.Strategy)
	assert.Equal(t, 2, summary.Workers)
	assert.Equal(t, report.Elasticity, summary.Elasticity)
}

func TestAnalyzeMatchesMeasure(t *testing.T) {
	analyzer := newTestAnalyzer(t, common.StrategyArea)
	file := filepath.Join(resultsDir, "terasort_aws_lambda_replica1.json")

	report, err := analyzer.AnalyzeFile(file, "")
	require.NoError(t, err)

	record, err := telemetry.ReadRunRecordFile(file)
	require.NoError(t, err)
	score, curves, err := elasticity.Measure(record, elasticity.AreaScorer{}, common.DefaultSamplingStep)
	require.NoError(t, err)

	assert.Equal(t, score, report.Elasticity)
	assert.Equal(t, curves.Time, report.Curves.Time)
	assert.Equal(t, 2, report.Stages)
	assert.Equal(t, 12.0, report.ExecutionTime)
}

func TestAnalyzeFileBackendOverride(t *testing.T) {
	analyzer := newTestAnalyzer(t, common.StrategyArea)

	dir := t.TempDir()
	record, err := telemetry.ReadRunRecordFile(filepath.Join(resultsDir, "terasort_aws_lambda_replica0.json"))
	require.NoError(t, err)
	plain := filepath.Join(dir, "run.json")
	require.NoError(t, telemetry.WriteRunRecordFile(plain, record))

	_, err = analyzer.AnalyzeFile(plain, "")
	assert.Error(t, err)

	report, err := analyzer.AnalyzeFile(plain, common.BackendAWSBatch)
	require.NoError(t, err)
	assert.False(t, report.CostKnown)
	assert.Zero(t, report.Cost.Total())
	assert.Zero(t, report.Efficiency)
	assert.InDelta(t, 1-20.0/150.0, report.Elasticity, 1e-9)
}

func TestRunReport(t *testing.T) {
	tests := []struct {
		testName string
		backends []string
		expected []string
	}{
		{
			testName: "all_results",
			expected: []string{
				"mandelbrot_aws_lambda_redis_replica0.json",
				"montecarlo_pi_gcp_cloudrun_replica0.json",
				"terasort_aws_lambda_replica0.json",
				"terasort_aws_lambda_replica1.json",
			},
		},
		{
			testName: "lambda_only",
			backends: []string{common.BackendAWSLambda},
			expected: []string{
				"terasort_aws_lambda_replica0.json",
				"terasort_aws_lambda_replica1.json",
			},
		},
		{
			testName: "nothing_selected",
			backends: []string{common.BackendCodeEngine},
		},
	}

	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			analyzer := newTestAnalyzer(t, common.StrategyArea, test.backends...)
			exporter := mc.NewExporter()

			reports, err := analyzer.RunReport(context.Background(), telemetry.NewDirSource(resultsDir), exporter)
			require.NoError(t, err)

			var names []string
			for _, report := range reports {
				names = append(names, report.Name.String())
				assert.True(t, report.CostKnown)
			}
			assert.Equal(t, test.expected, names)
			assert.Equal(t, len(test.expected), exporter.GetRunRecordLen())
		})
	}
}

func TestRunReportCollectsFailures(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"terasort_aws_lambda_replica0.json", "terasort_aws_lambda_replica1.json"} {
		record, err := telemetry.ReadRunRecordFile(filepath.Join(resultsDir, name))
		require.NoError(t, err)
		require.NoError(t, telemetry.WriteRunRecordFile(filepath.Join(dir, name), record))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flops_aws_lambda_replica0.json"), []byte("not json"), 0644))

	// workers idle between 2 and 3 seconds leave the ratio undefined
	idleGap := &telemetry.RunRecord{
		StartTime: 0,
		EndTime:   5,
		Stages: []telemetry.StageRun{{Name: "stage0", Workers: []telemetry.WorkerStat{
			{WorkerStartTstamp: 0, WorkerFuncStartTstamp: 0, WorkerFuncEndTstamp: 2, WorkerEndTstamp: 2},
			{WorkerStartTstamp: 3, WorkerFuncStartTstamp: 3, WorkerFuncEndTstamp: 5, WorkerEndTstamp: 5},
		}}},
	}
	require.NoError(t, telemetry.WriteRunRecordFile(filepath.Join(dir, "mandelbrot_aws_lambda_replica0.json"), idleGap))

	analyzer := newTestAnalyzer(t, common.StrategyBurstPenalty)
	exporter := mc.NewExporter()

	reports, err := analyzer.RunReport(context.Background(), telemetry.NewDirSource(dir), exporter)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "flops_aws_lambda_replica0.json")
	assert.ErrorIs(t, merr.Errors[1], elasticity.ErrUndefinedRatio)

	require.Len(t, reports, 2)
	assert.Equal(t, common.BenchmarkTerasort, reports[0].Name.Benchmark)
	assert.Equal(t, 2, exporter.GetRunRecordLen())
}

func TestRunReportMissingDirectory(t *testing.T) {
	analyzer := newTestAnalyzer(t, common.StrategyArea)

	_, err := analyzer.RunReport(context.Background(), telemetry.NewDirSource(filepath.Join(t.TempDir(), "missing")), mc.NewExporter())
	assert.Error(t, err)
}

func TestUnsupportedStrategy(t *testing.T) {
	cfg := config.MeterConfiguration{Strategy: "ratio", Pricing: cost.PricingTable{}}

	_, err := NewAnalyzerConfiguration(&cfg)
	assert.Error(t, err)
}

func TestRunReportSurvivesImplausibleDuration(t *testing.T) {
	dir := t.TempDir()

	name := "terasort_aws_lambda_replica0.json"
	record, err := telemetry.ReadRunRecordFile(filepath.Join(resultsDir, name))
	require.NoError(t, err)
	require.NoError(t, telemetry.WriteRunRecordFile(filepath.Join(dir, name), record))

	// start_time missing its epoch offset
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flops_aws_lambda_replica0.json"), []byte(`{
		"start_time": 0,
		"end_time": 1.7e9,
		"stage0": [{"worker_start_tstamp": 1.7e9, "worker_func_start_tstamp": 1.7e9,
			"worker_func_end_tstamp": 1.7e9, "worker_end_tstamp": 1.7e9}]
	}`), 0644))

	analyzer := newTestAnalyzer(t, common.StrategyArea)
	exporter := mc.NewExporter()

	reports, err := analyzer.RunReport(context.Background(), telemetry.NewDirSource(dir), exporter)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 1)
	assert.ErrorIs(t, merr.Errors[0], timeline.ErrTooManySamples)
	assert.Contains(t, merr.Errors[0].Error(), "flops_aws_lambda_replica0.json")

	require.Len(t, reports, 1)
	assert.Equal(t, common.BenchmarkTerasort, reports[0].Name.Benchmark)
	assert.Equal(t, 1, exporter.GetRunRecordLen())
}

func TestAnalyzeSampleLimit(t *testing.T) {
	analyzer := newTestAnalyzer(t, common.StrategyArea)
	analyzer.Configuration.MaxSamples = 10

	record, err := telemetry.ReadRunRecordFile(filepath.Join(resultsDir, "terasort_aws_lambda_replica0.json"))
	require.NoError(t, err)

	_, err = analyzer.Analyze(record, telemetry.ResultName{Benchmark: common.BenchmarkTerasort, Backend: common.BackendAWSLambda})
	assert.ErrorIs(t, err, timeline.ErrTooManySamples)
}
