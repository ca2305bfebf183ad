package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/eth-easl/gumeter/pkg/common"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gumeter %s (%s %s/%s)\n", common.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
