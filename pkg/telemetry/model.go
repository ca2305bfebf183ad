package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/eth-easl/gumeter/pkg/common"
)

// WorkerStat is the telemetry of one worker slot. All timestamps are epoch seconds.
type WorkerStat struct {
	WorkerStartTstamp     float64 `json:"worker_start_tstamp"`
	WorkerEndTstamp       float64 `json:"worker_end_tstamp"`
	WorkerFuncStartTstamp float64 `json:"worker_func_start_tstamp"`
	WorkerFuncEndTstamp   float64 `json:"worker_func_end_tstamp"`
}

// Duration is the time the worker occupied its slot.
func (ws WorkerStat) Duration() float64 {
	return ws.WorkerEndTstamp - ws.WorkerStartTstamp
}

// FuncDuration is the time the user payload ran inside the slot.
func (ws WorkerStat) FuncDuration() float64 {
	return ws.WorkerFuncEndTstamp - ws.WorkerFuncStartTstamp
}

// Validate checks start <= func start <= func end <= end.
func (ws WorkerStat) Validate() error {
	if ws.WorkerStartTstamp <= ws.WorkerFuncStartTstamp &&
		ws.WorkerFuncStartTstamp <= ws.WorkerFuncEndTstamp &&
		ws.WorkerFuncEndTstamp <= ws.WorkerEndTstamp {
		return nil
	}
	return errors.Errorf("worker timestamps out of order: start=%f func_start=%f func_end=%f end=%f",
		ws.WorkerStartTstamp, ws.WorkerFuncStartTstamp, ws.WorkerFuncEndTstamp, ws.WorkerEndTstamp)
}

// StageRun holds the workers of one parallel stage.
type StageRun struct {
	Name    string
	Workers []WorkerStat
}

// Start is the earliest worker start of the stage; zero for a stage without workers.
func (s StageRun) Start() float64 {
	if len(s.Workers) == 0 {
		return 0
	}
	start := math.Inf(1)
	for _, w := range s.Workers {
		start = math.Min(start, w.WorkerStartTstamp)
	}
	return start
}

// RunRecord is one benchmark execution as persisted by the benchmark driver.
//
// Stages keep the order in which their keys appear in the persisted object.
// Keys not understood by the analysis are preserved in Ancillary.
type RunRecord struct {
	StartTime float64
	EndTime   float64
	Stages    []StageRun
	Ancillary map[string]json.RawMessage

	// Empty is set when start_time or end_time is missing or malformed.
	Empty bool
}

// ExecutionTime is end_time - start_time, zero for a nil or empty record.
func (r *RunRecord) ExecutionTime() float64 {
	if r == nil || r.Empty {
		return 0.0
	}
	return math.Max(0, r.EndTime-r.StartTime)
}

// Workers returns the workers of all stages in stage order.
func (r *RunRecord) Workers() []WorkerStat {
	if r == nil {
		return nil
	}
	var workers []WorkerStat
	for _, stage := range r.Stages {
		workers = append(workers, stage.Workers...)
	}
	return workers
}

func (r *RunRecord) WorkerCount() int {
	if r == nil {
		return 0
	}
	count := 0
	for _, stage := range r.Stages {
		count += len(stage.Workers)
	}
	return count
}

// Validate reports every worker violating the timestamp ordering or falling
// outside [start_time, end_time]. Analysis tolerates these by clipping.
func (r *RunRecord) Validate() []error {
	if r == nil || r.Empty {
		return nil
	}
	var errs []error
	for _, stage := range r.Stages {
		for i, w := range stage.Workers {
			if err := w.Validate(); err != nil {
				errs = append(errs, errors.Wrapf(err, "%s[%d]", stage.Name, i))
			}
			if w.WorkerStartTstamp < r.StartTime || w.WorkerEndTstamp > r.EndTime {
				errs = append(errs, errors.Errorf("%s[%d]: worker [%f, %f] outside run [%f, %f]",
					stage.Name, i, w.WorkerStartTstamp, w.WorkerEndTstamp, r.StartTime, r.EndTime))
			}
		}
	}
	return errs
}

func (r *RunRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "reading run record")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("run record must be a JSON object")
	}

	*r = RunRecord{Ancillary: map[string]json.RawMessage{}}
	var start, end *float64

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return errors.Wrap(err, "reading run record key")
		}
		key := tok.(string)

		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return errors.Wrapf(err, "reading value of %q", key)
		}

		switch {
		case key == "start_time":
			start = decodeTimestamp(key, raw)
		case key == "end_time":
			end = decodeTimestamp(key, raw)
		case strings.HasPrefix(key, common.StageKeyPrefix):
			var workers []WorkerStat
			if err = json.Unmarshal(raw, &workers); err != nil || workers == nil {
				log.Debugf("Key %q is not a list of worker stats, keeping it as ancillary data", key)
				r.Ancillary[key] = raw
				continue
			}
			r.Stages = append(r.Stages, StageRun{Name: key, Workers: workers})
		default:
			r.Ancillary[key] = raw
		}
	}

	if start == nil || end == nil {
		r.Empty = true
		return nil
	}
	r.StartTime, r.EndTime = *start, *end
	return nil
}

func decodeTimestamp(key string, raw json.RawMessage) *float64 {
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warnf("Malformed %s: %s", key, string(raw))
		return nil
	}
	return v
}

func (r RunRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	field := func(key string, value interface{}) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "encoding %q", key)
		}
		buf.Write(v)
		return nil
	}

	if !r.Empty {
		if err := field("start_time", r.StartTime); err != nil {
			return nil, err
		}
		if err := field("end_time", r.EndTime); err != nil {
			return nil, err
		}
	}
	for _, stage := range r.Stages {
		workers := stage.Workers
		if workers == nil {
			workers = []WorkerStat{}
		}
		if err := field(stage.Name, workers); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(r.Ancillary))
	for k := range r.Ancillary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := field(k, r.Ancillary[k]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
