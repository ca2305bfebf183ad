package metric

// RunSummaryRecord is the analysis of one persisted run.
type RunSummaryRecord struct {
	ReportID  string `csv:"report_id"`
	Benchmark string `csv:"benchmark"`
	Backend   string `csv:"backend"`
	Replica   int    `csv:"replica"`
	Strategy  string `csv:"strategy"`

	Elasticity     float64 `csv:"elasticity"`
	Cost           float64 `csv:"cost"`
	CostKnown      bool    `csv:"cost_known"`
	ExecutionTime  float64 `csv:"execution_time"`
	CostEfficiency float64 `csv:"cost_efficiency"`

	Stages         int     `csv:"stages"`
	Workers        int     `csv:"workers"`
	ComputeSeconds float64 `csv:"compute_seconds"`
}

// AggregateRecord summarizes the replicas of one benchmark on one backend.
// Standard deviations are population deviations.
type AggregateRecord struct {
	Benchmark string `csv:"benchmark"`
	Backend   string `csv:"backend"`
	Replicas  int    `csv:"replicas"`

	ElasticityMean     float64 `csv:"elasticity_mean"`
	ElasticityStd      float64 `csv:"elasticity_std"`
	CostMean           float64 `csv:"cost_mean"`
	CostStd            float64 `csv:"cost_std"`
	ExecutionTimeMean  float64 `csv:"execution_time_mean"`
	ExecutionTimeStd   float64 `csv:"execution_time_std"`
	CostEfficiencyMean float64 `csv:"cost_efficiency_mean"`
	CostEfficiencyStd  float64 `csv:"cost_efficiency_std"`
}

// TimelineSampleRecord is one point of the aligned required/provisioned curves.
type TimelineSampleRecord struct {
	Time        float64 `csv:"time"`
	Required    float64 `csv:"required"`
	Provisioned float64 `csv:"provisioned"`
}

type BreakpointRecord struct {
	Curve string  `csv:"curve"`
	Time  float64 `csv:"time"`
	Level int     `csv:"level"`
}
