package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// set via -ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mason version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mason %s (%s)\n", version, commit)
	},
}
