/*
 * MIT License
 *
 * Copyright (c) 2023 EASL and the vHive community
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package common

const (
	Version = "1.0.0"

	// StageKeyPrefix marks the keys of a result file holding per-stage worker stats.
	StageKeyPrefix = "stage"

	// DefaultSamplingStep resolution of the aligned required/provisioned curves, in seconds.
	DefaultSamplingStep = 0.1

	// DefaultMaxSamples bounds the length of sampled curves, about 5.8 days at the default step.
	DefaultMaxSamples = 5_000_000

	// DefaultBurstPenalty weight of the burst term in the ratio-based elasticity strategy.
	DefaultBurstPenalty = 1.0

	ResultFileExtension = ".json"
	ReplicaInfix        = "_replica"
)

const (
	DefaultResultsDir = "benchmark_results"
	DefaultPlotsDir   = "plots"
)

// backend
const (
	BackendAWSLambda      string = "aws_lambda"
	BackendAWSLambdaRedis string = "aws_lambda_redis"
	BackendAWSBatch       string = "aws_batch"
	BackendCodeEngine     string = "code_engine"
	BackendGCPCloudRun    string = "gcp_cloudrun"
	BackendLocalhost      string = "localhost"
)

var ValidBackends = []string{
	BackendAWSLambda,
	BackendAWSLambdaRedis,
	BackendAWSBatch,
	BackendCodeEngine,
	BackendGCPCloudRun,
	BackendLocalhost,
}

// BackendDisplayNames labels used on charts.
var BackendDisplayNames = map[string]string{
	BackendAWSLambda:      "AWS Lambda",
	BackendAWSLambdaRedis: "AWS Lambda (Redis)",
	BackendAWSBatch:       "AWS Batch",
	BackendCodeEngine:     "IBM Code Engine",
	BackendGCPCloudRun:    "GCP Cloud Run",
	BackendLocalhost:      "Localhost",
}

// BackendMemoryMib memory configured per worker on each backend.
var BackendMemoryMib = map[string]int{
	BackendAWSLambda:      1769,
	BackendAWSLambdaRedis: 1769,
	BackendAWSBatch:       2048,
	BackendCodeEngine:     2048,
	BackendGCPCloudRun:    2048,
	BackendLocalhost:      2048,
}

// benchmark
const (
	BenchmarkFlops           string = "flops"
	BenchmarkTerasort        string = "terasort"
	BenchmarkMandelbrot      string = "mandelbrot"
	BenchmarkMonteCarloPi    string = "montecarlo_pi"
	BenchmarkMonteCarloStock string = "montecarlo_stock"
)

var ValidBenchmarks = []string{
	BenchmarkFlops,
	BenchmarkTerasort,
	BenchmarkMandelbrot,
	BenchmarkMonteCarloPi,
	BenchmarkMonteCarloStock,
}

var BenchmarkDisplayNames = map[string]string{
	BenchmarkFlops:           "FLOPS",
	BenchmarkTerasort:        "Terasort",
	BenchmarkMandelbrot:      "Mandelbrot",
	BenchmarkMonteCarloPi:    "Monte Carlo Pi",
	BenchmarkMonteCarloStock: "Monte Carlo Stock",
}

// elasticity strategies
const (
	StrategyArea         string = "area"
	StrategyBurstPenalty string = "burst_penalty"
)

var ValidStrategies = []string{StrategyArea, StrategyBurstPenalty}
