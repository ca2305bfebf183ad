package common

import (
	"os"
	"slices"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func CheckPath(path string) {
	if path == "" {
		return
	}
	_, err := os.Stat(path)
	if err != nil {
		log.Fatal(err)
	}
}

func IsValidBackend(backend string) bool {
	return slices.Contains(ValidBackends, backend)
}

func IsValidBenchmark(benchmark string) bool {
	return slices.Contains(ValidBenchmarks, benchmark)
}

func CheckBackend(backend string) error {
	if !IsValidBackend(backend) {
		return errors.Errorf("invalid backend %q, choose from %v", backend, ValidBackends)
	}
	return nil
}

func CheckStrategy(strategy string) error {
	if !slices.Contains(ValidStrategies, strategy) {
		return errors.Errorf("invalid elasticity strategy %q, choose from %v", strategy, ValidStrategies)
	}
	return nil
}
