package internal

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crossforge/mason/internal/toolchain"
)

var toolchainsCmd = &cobra.Command{
	Use:   "toolchains",
	Short: "List the registered toolchains",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tGENERATOR\tPLATFORM")
		for _, d := range toolchain.Builtin.All() {
			platform := string(d.Requires)
			if platform == "" {
				platform = "any"
			}
			generator := d.Generator
			if generator == "" {
				generator = "(cmake default)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, generator, platform)
		}
		w.Flush()
	},
}
