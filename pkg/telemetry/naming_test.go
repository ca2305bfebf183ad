package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultName(t *testing.T) {
	tests := []struct {
		testName string
		fileName string
		expected ResultName
		failing  bool
	}{
		{
			testName: "simple",
			fileName: "terasort_aws_lambda_replica2.json",
			expected: ResultName{Benchmark: "terasort", Backend: "aws_lambda", Replica: 2},
		},
		{
			testName: "underscored_benchmark",
			fileName: "results/montecarlo_stock_gcp_cloudrun_replica0.json",
			expected: ResultName{Benchmark: "montecarlo_stock", Backend: "gcp_cloudrun", Replica: 0},
		},
		{
			testName: "longest_backend_wins",
			fileName: "terasort_aws_lambda_redis_replica1.json",
			expected: ResultName{Benchmark: "terasort", Backend: "aws_lambda_redis", Replica: 1},
		},
		{
			testName: "no_replica",
			fileName: "terasort_aws_lambda.json",
			failing:  true,
		},
		{
			testName: "unknown_backend",
			fileName: "terasort_azure_replica0.json",
			failing:  true,
		},
		{
			testName: "backend_only",
			fileName: "aws_lambda_replica0.json",
			failing:  true,
		},
	}

	for _, test := range tests {
		t.Run(test.testName, func(t *testing.T) {
			name, err := ParseResultName(test.fileName)
			if test.failing {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, name)
			assert.Equal(t, filepath.Base(test.fileName), name.String())
		})
	}
}

func TestNextReplicaPath(t *testing.T) {
	dir := t.TempDir()
	fname := filepath.Join(dir, "mandelbrot_code_engine.json")

	next, err := NextReplicaPath(fname)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mandelbrot_code_engine_replica0.json"), next)

	require.NoError(t, os.WriteFile(next, []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mandelbrot_code_engine_replica1.json"), []byte("{}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mandelbrot_code_engine_redis_replica0.json"), []byte("{}"), 0644))

	next, err = NextReplicaPath(fname)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mandelbrot_code_engine_replica2.json"), next)

	_, err = NextReplicaPath(filepath.Join(dir, "mandelbrot_code_engine.csv"))
	assert.Error(t, err)
}

func TestDirSource(t *testing.T) {
	source := NewDirSource("testdata/results")

	files, err := source.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "mandelbrot", files[0].Benchmark)
	assert.Equal(t, "aws_lambda_redis", files[0].Backend)
	assert.Equal(t, "montecarlo_pi", files[1].Benchmark)
	assert.Equal(t, 0, files[2].Replica)
	assert.Equal(t, 1, files[3].Replica)

	record, err := source.Load(context.Background(), files[3])
	require.NoError(t, err)
	assert.Len(t, record.Stages, 2)

	_, err = NewDirSource("testdata/missing").List(context.Background())
	assert.Error(t, err)
}

func TestWriteRunRecordFile(t *testing.T) {
	record, err := ReadRunRecordFile("testdata/two_workers.json")
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "copy.json")
	require.NoError(t, WriteRunRecordFile(out, record))

	again, err := ReadRunRecordFile(out)
	require.NoError(t, err)
	assert.Equal(t, record.Stages, again.Stages)
	assert.Equal(t, record.ExecutionTime(), again.ExecutionTime())
}
