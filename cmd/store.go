package main

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eth-easl/gumeter/pkg/common"
	"github.com/eth-easl/gumeter/pkg/telemetry"
)

func storeCmd() *cobra.Command {
	var (
		benchmark string
		backend   string
	)

	cmd := &cobra.Command{
		Use:   "store <raw result file>",
		Short: "Copy a raw run into the results directory as the next replica",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			common.CheckPath(args[0])
			cfg := loadConfiguration()

			if err := common.CheckBackend(backend); err != nil {
				log.Fatal(err)
			}
			if !common.IsValidBenchmark(benchmark) {
				log.Warnf("Unknown benchmark %q, storing it anyway", benchmark)
			}

			record, err := telemetry.ReadRunRecordFile(args[0])
			if err != nil {
				log.Fatal(err)
			}
			for _, err := range record.Validate() {
				log.Warn(err)
			}

			stem := filepath.Join(cfg.ResultsDir, fmt.Sprintf("%s_%s%s", benchmark, backend, common.ResultFileExtension))
			target, err := telemetry.NextReplicaPath(stem)
			if err != nil {
				log.Fatal(err)
			}
			if err := telemetry.WriteRunRecordFile(target, record); err != nil {
				log.Fatal(err)
			}
			log.Info("Stored run as ", target)
		},
	}

	cmd.Flags().StringVar(&benchmark, "benchmark", "", "Benchmark of the run")
	cmd.Flags().StringVar(&backend, "backend", "", "Backend the run executed on")
	_ = cmd.MarkFlagRequired("benchmark")
	_ = cmd.MarkFlagRequired("backend")

	return cmd
}

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <result file>...",
		Short: "Upload result files to the configured bucket",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfiguration()

			bucket, err := telemetry.NewBucketSource(cfg.Bucket)
			if err != nil {
				log.Fatal(err)
			}

			for _, filePath := range args {
				if _, err := telemetry.ParseResultName(filePath); err != nil {
					log.Fatal(err)
				}
				location, err := bucket.Upload(context.Background(), filePath)
				if err != nil {
					log.Fatal(err)
				}
				log.Info("Uploaded ", filePath, " to ", location)
			}
		},
	}
}
