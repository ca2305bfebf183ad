package main

import (
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eth-easl/gumeter/pkg/analysis"
	"github.com/eth-easl/gumeter/pkg/config"
)

var (
	configPath string
	verbosity  string
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.StampMilli,
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stdout)
}

func setVerbosity() {
	switch verbosity {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "trace":
		log.SetLevel(log.TraceLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// rootCmd registers every subcommand of the binary.
func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gumeter",
		Short: "gumeter measures elasticity, cost and execution time of serverless benchmark runs.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setVerbosity()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "cmd/config.json", "Path to the meter configuration file")
	cmd.PersistentFlags().StringVar(&verbosity, "verbosity", "info", "Logging verbosity - choose from [info, debug, trace]")

	cmd.AddCommand(
		analyzeCmd(),
		reportCmd(),
		plotCmd(),
		storeCmd(),
		uploadCmd(),
		versionCmd(),
	)

	return cmd
}

func addOutputFlag(flags *pflag.FlagSet, outputDir *string) {
	flags.StringVar(outputDir, "output", "", "Output directory overriding the configuration")
}

func loadConfiguration() config.MeterConfiguration {
	cfg, err := config.LoadConfiguration(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	log.Debugf("Configuration: %+v", cfg)
	return cfg
}

func newAnalyzer(cfg *config.MeterConfiguration) *analysis.Analyzer {
	analyzerConfig, err := analysis.NewAnalyzerConfiguration(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return analysis.NewAnalyzer(analyzerConfig)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
