package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/params"
)

var globalCmd = &cobra.Command{
	Use:   "global",
	Short: "Show the global parameters",
	Long: `Show the global parameters a run would use: the defaults with the inputs
file's global section and environment overrides applied. Fields that differ
from the defaults are marked with *.`,
	Args: cobra.NoArgs,
	RunE: showGlobal,
}

func showGlobal(cmd *cobra.Command, _ []string) error {
	set, err := config.LoadInputs(inputsPath(nil))
	if err != nil {
		return fmt.Errorf("invalid inputs: %w", err)
	}

	current := set.Global.Snapshot()
	defaults := params.DefaultGlobalParams().Snapshot()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tVALUE\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----\t-----------")

	for _, f := range params.GlobalFields() {
		name := f.Name
		if current[f.Name] != defaults[f.Name] {
			name += " *"
		}
		_, _ = fmt.Fprintf(w, "%s\t%v\t%s\n", name, current[f.Name], f.Description)
	}

	return w.Flush()
}
