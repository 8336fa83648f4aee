package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/annotator/internal/linters"
)

// newListCommand creates "linters" which prints the supported linters.
func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "linters",
		Short: "List supported linters with their check names and default reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "LINTER\tCHECK NAME\tDEFAULT REPORT")
			for _, l := range linters.All() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID(), l.Name(), l.DefaultOutput())
			}
			return w.Flush()
		},
	}
}
