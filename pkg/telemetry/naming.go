package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/eth-easl/gumeter/pkg/common"
)

var replicaPattern = regexp.MustCompile(`^(.+)_replica(\d+)\.json$`)

// ResultName identifies a persisted run: <benchmark>_<backend>_replica<N>.json
type ResultName struct {
	Benchmark string
	Backend   string
	Replica   int
}

func (rn ResultName) String() string {
	return fmt.Sprintf("%s_%s%s%d%s", rn.Benchmark, rn.Backend, common.ReplicaInfix, rn.Replica, common.ResultFileExtension)
}

// backendsBySuffixLength lists known backends longest first so that
// aws_lambda_redis is matched before aws_lambda.
var backendsBySuffixLength = func() []string {
	backends := append([]string{}, common.ValidBackends...)
	sort.SliceStable(backends, func(i, j int) bool {
		return len(backends[i]) > len(backends[j])
	})
	return backends
}()

// ParseResultName splits a result file name into benchmark, backend and replica.
func ParseResultName(fileName string) (ResultName, error) {
	match := replicaPattern.FindStringSubmatch(filepath.Base(fileName))
	if match == nil {
		return ResultName{}, errors.Errorf("%q does not match <benchmark>_<backend>_replica<N>.json", fileName)
	}

	replica, err := strconv.Atoi(match[2])
	if err != nil {
		return ResultName{}, errors.Wrapf(err, "replica number of %q", fileName)
	}

	for _, backend := range backendsBySuffixLength {
		if benchmark, ok := strings.CutSuffix(match[1], "_"+backend); ok && benchmark != "" {
			return ResultName{Benchmark: benchmark, Backend: backend, Replica: replica}, nil
		}
	}

	return ResultName{}, errors.Errorf("no known backend in %q", fileName)
}

// NextReplicaPath returns the path for the next replica of fname, where fname
// is <dir>/<benchmark>_<backend>.json. The replica number is the count of
// existing replicas, moved forward past any number already taken.
func NextReplicaPath(fname string) (string, error) {
	if !strings.HasSuffix(fname, common.ResultFileExtension) {
		return "", errors.Errorf("filename must end with %s: %q", common.ResultFileExtension, fname)
	}

	base := strings.TrimSuffix(fname, common.ResultFileExtension)
	dir := filepath.Dir(fname)
	prefix := filepath.Base(base)

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "listing %s", dir)
	}

	taken := map[int]bool{}
	for _, entry := range entries {
		match := replicaPattern.FindStringSubmatch(entry.Name())
		if match == nil || match[1] != prefix {
			continue
		}
		n, _ := strconv.Atoi(match[2])
		taken[n] = true
	}

	replica := len(taken)
	for taken[replica] {
		replica++
	}

	return fmt.Sprintf("%s%s%d%s", base, common.ReplicaInfix, replica, common.ResultFileExtension), nil
}
