package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/litecache/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "litecache",
	Short: "A small in-memory key-value server that speaks a subset of RESP",
	Long: `A small in-memory key-value server that speaks a subset of RESP

Usage
	litecache start
	litecache call PING
`,
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(StartCmd)
	RootCmd.AddCommand(CallCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
