package cost

import (
	"github.com/pkg/errors"

	"github.com/eth-easl/gumeter/pkg/common"
)

// Rates is the linear cost model of one backend. Backends billing CPU and
// memory separately set CPUSecond and MemorySecond, others ComputeSecond.
// All rates are in USD.
type Rates struct {
	ComputeSecond float64 `json:"ComputeSecond" mapstructure:"ComputeSecond"`
	CPUSecond     float64 `json:"CPUSecond" mapstructure:"CPUSecond"`
	MemorySecond  float64 `json:"MemorySecond" mapstructure:"MemorySecond"`
	Invocation    float64 `json:"Invocation" mapstructure:"Invocation"`
}

// SplitBilling tells whether CPU and memory time are billed as separate terms.
func (r Rates) SplitBilling() bool {
	return r.CPUSecond != 0 || r.MemorySecond != 0
}

// Validate rejects negative rates and ComputeSecond mixed with split CPU and
// memory rates.
func (r Rates) Validate() error {
	if r.ComputeSecond != 0 && r.SplitBilling() {
		return errors.New("ComputeSecond cannot be combined with CPUSecond or MemorySecond")
	}
	if r.ComputeSecond < 0 || r.CPUSecond < 0 || r.MemorySecond < 0 || r.Invocation < 0 {
		return errors.New("rates must not be negative")
	}
	return nil
}

// PricingTable maps a backend to its rates.
type PricingTable map[string]Rates

const (
	// Lambda compute is priced at 1679 MiB, not at the 1769 MiB of
	// BackendMemoryMib the workers are deployed with.
	lambdaBilledMemoryMib = 1679

	lambdaGBSecond   = 0.0000166667
	lambdaPerRequest = 0.2 / 1e6

	cloudRunCPUSecond  = 0.000024
	cloudRunGiBSecond  = 0.0000025
	cloudRunPerRequest = 0.4 / 1e6

	codeEngineCPUSecond  = 0.00003431
	codeEngineGiBSecond  = 0.00000356
	codeEnginePerRequest = 0.538 / 1e6
)

func gib(memoryMib int) float64 {
	return float64(memoryMib) / 1024
}

// DefaultPricing request-billed list prices for the configured worker memory of each backend.
func DefaultPricing() PricingTable {
	lambda := Rates{
		ComputeSecond: lambdaGBSecond * gib(lambdaBilledMemoryMib),
		Invocation:    lambdaPerRequest,
	}

	return PricingTable{
		common.BackendAWSLambda:      lambda,
		common.BackendAWSLambdaRedis: lambda,
		common.BackendGCPCloudRun: {
			CPUSecond:    cloudRunCPUSecond,
			MemorySecond: cloudRunGiBSecond * gib(common.BackendMemoryMib[common.BackendGCPCloudRun]),
			Invocation:   cloudRunPerRequest,
		},
		common.BackendCodeEngine: {
			CPUSecond:    codeEngineCPUSecond,
			MemorySecond: codeEngineGiBSecond * gib(common.BackendMemoryMib[common.BackendCodeEngine]),
			Invocation:   codeEnginePerRequest,
		},
	}
}

// Validate checks the rates of every backend.
func (pt PricingTable) Validate() error {
	for backend, rates := range pt {
		if err := rates.Validate(); err != nil {
			return errors.Wrapf(err, "pricing of %s", backend)
		}
	}
	return nil
}

// Merge returns a copy of pt with the rates of overrides replacing whole entries.
func (pt PricingTable) Merge(overrides PricingTable) PricingTable {
	merged := make(PricingTable, len(pt)+len(overrides))
	for backend, rates := range pt {
		merged[backend] = rates
	}
	for backend, rates := range overrides {
		merged[backend] = rates
	}
	return merged
}
