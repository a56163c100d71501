package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:    "gen",
	Short:  "Generators for litecache documentation",
	Long:   `Generators for litecache documentation`,
	Hidden: true,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
