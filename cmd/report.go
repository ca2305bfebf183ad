package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eth-easl/gumeter/pkg/analysis"
	"github.com/eth-easl/gumeter/pkg/config"
	mc "github.com/eth-easl/gumeter/pkg/metric"
)

// runReport analyzes all configured results. Records failing analysis are
// logged and left out, anything else stops the process.
func runReport(cfg *config.MeterConfiguration) ([]*analysis.Report, *mc.Exporter) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := cfg.Source()
	if err != nil {
		log.Fatal(err)
	}

	exporter := mc.NewExporter()
	reports, err := newAnalyzer(cfg).RunReport(ctx, source, exporter)

	var failures *multierror.Error
	switch {
	case err == nil:
	case errors.As(err, &failures):
		log.Warnf("%d results could not be analyzed", len(failures.Errors))
	default:
		log.Fatal(err)
	}

	log.Infof("Report %s covers %d runs", exporter.ReportID(), exporter.GetRunRecordLen())
	return reports, exporter
}

func reportCmd() *cobra.Command {
	var (
		outputDir string
		timelines bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze every result and write per-run and aggregated summaries",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfiguration()
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			reports, exporter := runReport(&cfg)
			if err := exporter.FinishAndSave(cfg.OutputDir); err != nil {
				log.Fatal(err)
			}

			for _, a := range exporter.Aggregate() {
				log.Infof("%-18s %-16s replicas %d  elasticity %.3f±%.3f  cost %.6f  time %.2f s",
					a.Benchmark, a.Backend, a.Replicas, a.ElasticityMean, a.ElasticityStd, a.CostMean, a.ExecutionTimeMean)
			}

			if !timelines {
				return
			}
			timelineDir := filepath.Join(cfg.OutputDir, "timelines")
			if err := os.MkdirAll(timelineDir, os.ModePerm); err != nil {
				log.Fatal(err)
			}
			for _, report := range reports {
				base := filepath.Join(timelineDir, report.Name.String())
				base = base[:len(base)-len(filepath.Ext(base))]
				if err := mc.WriteCurves(base+"_samples.csv", report.Curves); err != nil {
					log.Fatal(err)
				}
				if err := mc.WriteBreakpoints(base+"_breakpoints.csv", report.Timeline); err != nil {
					log.Fatal(err)
				}
			}
			log.Infof("Timelines of %d runs written to %s", len(reports), timelineDir)
		},
	}

	addOutputFlag(cmd.Flags(), &outputDir)
	cmd.Flags().BoolVar(&timelines, "timelines", false, "Also export the timeline of every run as CSV")

	return cmd
}
