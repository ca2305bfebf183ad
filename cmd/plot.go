package main

import (
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eth-easl/gumeter/pkg/analysis"
	"github.com/eth-easl/gumeter/pkg/chart"
	"github.com/eth-easl/gumeter/pkg/common"
)

// activitySeries picks the first replica of every backend per benchmark.
func activitySeries(reports []*analysis.Report) (map[string][]chart.Series, []string) {
	series := map[string][]chart.Series{}
	seen := map[string]bool{}
	var benchmarks []string

	for _, report := range reports {
		name := report.Name
		key := name.Benchmark + "/" + name.Backend
		if seen[key] {
			continue
		}
		seen[key] = true

		if _, ok := series[name.Benchmark]; !ok {
			benchmarks = append(benchmarks, name.Benchmark)
		}
		label, ok := common.BackendDisplayNames[name.Backend]
		if !ok {
			label = name.Backend
		}
		series[name.Benchmark] = append(series[name.Benchmark], chart.Series{Label: label, Curve: report.Timeline.Provisioned})
	}

	return series, benchmarks
}

func plotCmd() *cobra.Command {
	var (
		outputDir string
		format    string
		perRun    bool
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw worker activity, required vs provisioned and cost efficiency charts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfiguration()
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			ext := "." + strings.TrimPrefix(format, ".")

			reports, exporter := runReport(&cfg)
			if len(reports) == 0 {
				log.Fatal("Nothing to plot")
			}

			series, benchmarks := activitySeries(reports)
			for _, benchmark := range benchmarks {
				title, ok := common.BenchmarkDisplayNames[benchmark]
				if !ok {
					title = benchmark
				}
				filePath := filepath.Join(cfg.OutputDir, benchmark+"_worker_activity"+ext)
				if err := chart.WorkerActivity(series[benchmark], title, filePath); err != nil {
					log.Fatal(err)
				}
			}

			if perRun {
				for _, report := range reports {
					name := strings.TrimSuffix(report.Name.String(), common.ResultFileExtension)
					filePath := filepath.Join(cfg.OutputDir, "timelines", name+ext)
					if err := chart.RequiredVsProvisioned(report.Timeline, name, filePath); err != nil {
						log.Fatal(err)
					}
				}
			}

			if err := chart.CostEfficiency(exporter.Aggregate(), filepath.Join(cfg.OutputDir, "cost_efficiency"+ext)); err != nil {
				log.Fatal(err)
			}

			log.Infof("Charts of %d benchmarks written to %s", len(benchmarks), cfg.OutputDir)
		},
	}

	addOutputFlag(cmd.Flags(), &outputDir)
	cmd.Flags().StringVar(&format, "format", "png", "Image format - choose from [png, svg, pdf]")
	cmd.Flags().BoolVar(&perRun, "per-run", false, "Also draw required vs provisioned workers of every run")

	return cmd
}
