package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eth-easl/gumeter/pkg/common"
	mc "github.com/eth-easl/gumeter/pkg/metric"
)

func analyzeCmd() *cobra.Command {
	var (
		backend         string
		strategy        string
		samplesPath     string
		breakpointsPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze <result file>",
		Short: "Print elasticity, cost and execution time of one run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			common.CheckPath(args[0])

			cfg := loadConfiguration()
			if strategy != "" {
				if err := common.CheckStrategy(strategy); err != nil {
					log.Fatal(err)
				}
				cfg.Strategy = strategy
			}

			report, err := newAnalyzer(&cfg).AnalyzeFile(args[0], backend)
			if err != nil {
				log.Fatal(err)
			}

			log.Infof("Run:            %s", report.Name)
			log.Infof("Stages:         %d (%d workers)", report.Stages, report.Cost.Invocations)
			log.Infof("Elasticity:     %.4f (%s)", report.Elasticity, cfg.Strategy)
			log.Infof("Execution time: %.3f s", report.ExecutionTime)
			if report.CostKnown {
				log.Infof("Cost:           %.8f USD over %.3f compute seconds", report.Cost.Total(), report.Cost.ComputeSeconds)
				log.Infof("Efficiency:     %.4f 1/(USD s)", report.Efficiency)
			} else {
				log.Warnf("Cost:           unknown for backend %s", report.Name.Backend)
			}

			if samplesPath != "" {
				if err := mc.WriteCurves(samplesPath, report.Curves); err != nil {
					log.Fatal(err)
				}
				log.Info("Timeline samples written to ", samplesPath)
			}
			if breakpointsPath != "" {
				if err := mc.WriteBreakpoints(breakpointsPath, report.Timeline); err != nil {
					log.Fatal(err)
				}
				log.Info("Timeline breakpoints written to ", breakpointsPath)
			}
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Backend of the run, derived from the file name when empty")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Elasticity strategy overriding the configuration - choose from [area, burst_penalty]")
	cmd.Flags().StringVar(&samplesPath, "samples", "", "Write the sampled required/provisioned curves to this CSV file")
	cmd.Flags().StringVar(&breakpointsPath, "breakpoints", "", "Write the curve breakpoints to this CSV file")

	return cmd
}
