package chart

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/eth-easl/gumeter/pkg/common"
	mc "github.com/eth-easl/gumeter/pkg/metric"
	"github.com/eth-easl/gumeter/pkg/timeline"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// Series is one labelled worker curve.
type Series struct {
	Label string
	Curve timeline.StepFunction
}

func stepXYs(sf timeline.StepFunction) plotter.XYs {
	xs, ys := sf.Points()
	pts := make(plotter.XYs, len(xs))
	for i := range pts {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func save(p *plot.Plot, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return errors.Wrap(err, "creating the output directory")
	}
	if err := p.Save(width, height, filePath); err != nil {
		return errors.Wrapf(err, "saving %s", filePath)
	}
	log.Debug("Saved ", filePath)
	return nil
}

func addCurve(p *plot.Plot, i int, label string, sf timeline.StepFunction) error {
	line, err := plotter.NewLine(stepXYs(sf))
	if err != nil {
		return errors.Wrap(err, label)
	}
	line.Color = plotutil.Color(i)
	line.Dashes = plotutil.Dashes(i)
	line.Width = vg.Points(1.5)

	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}

// WorkerActivity draws the active workers of several runs on one time axis.
// The image format follows the extension of filePath.
func WorkerActivity(series []Series, title, filePath string) error {
	if len(series) == 0 {
		return errors.New("no worker curves to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = "Active workers"
	p.Y.Min = 0
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	ends := make([]float64, len(series))
	for i, s := range series {
		if err := addCurve(p, i, s.Label, s.Curve); err != nil {
			return err
		}
		ends[i] = s.Curve.End()
	}
	p.X.Min = 0
	p.X.Max = common.MaxOf(ends...)

	return save(p, filePath)
}

// RequiredVsProvisioned draws both worker curves of one run.
func RequiredVsProvisioned(tl timeline.Timeline, title, filePath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time [s]"
	p.Y.Label.Text = "Workers"
	p.Y.Min = 0
	p.X.Min = 0
	p.X.Max = tl.Duration
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	if err := addCurve(p, 0, "Required", tl.Required); err != nil {
		return err
	}
	if err := addCurve(p, 1, "Provisioned", tl.Provisioned); err != nil {
		return err
	}

	return save(p, filePath)
}

func displayName(names map[string]string, key string) string {
	if name, ok := names[key]; ok {
		return name
	}
	return key
}

// CostEfficiency draws the mean cost efficiency of every backend as grouped
// bars, one group per benchmark. Missing combinations are drawn as zero.
func CostEfficiency(aggregates []mc.AggregateRecord, filePath string) error {
	if len(aggregates) == 0 {
		return errors.New("no aggregates to plot")
	}

	var benchmarks, backends []string
	benchmarkIndex := map[string]int{}
	backendIndex := map[string]int{}
	for _, a := range aggregates {
		if _, ok := benchmarkIndex[a.Benchmark]; !ok {
			benchmarkIndex[a.Benchmark] = len(benchmarks)
			benchmarks = append(benchmarks, a.Benchmark)
		}
		if _, ok := backendIndex[a.Backend]; !ok {
			backendIndex[a.Backend] = len(backends)
			backends = append(backends, a.Backend)
		}
	}

	values := make([]plotter.Values, len(backends))
	for i := range values {
		values[i] = make(plotter.Values, len(benchmarks))
	}
	for _, a := range aggregates {
		values[backendIndex[a.Backend]][benchmarkIndex[a.Benchmark]] = a.CostEfficiencyMean
	}

	p := plot.New()
	p.Title.Text = "Cost efficiency"
	p.Y.Label.Text = "1 / (cost x time) [1/(USD s)]"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	barWidth := vg.Points(60 / float64(len(backends)))
	for i, backend := range backends {
		bars, err := plotter.NewBarChart(values[i], barWidth)
		if err != nil {
			return errors.Wrap(err, backend)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = barWidth * vg.Length(float64(i)-float64(len(backends)-1)/2)

		p.Add(bars)
		p.Legend.Add(displayName(common.BackendDisplayNames, backend), bars)
	}

	labels := make([]string, len(benchmarks))
	for i, benchmark := range benchmarks {
		labels[i] = displayName(common.BenchmarkDisplayNames, benchmark)
	}
	p.NominalX(labels...)

	return save(p, filePath)
}
