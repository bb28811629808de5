package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/simulation"
	"github.com/picogrid/reionsim/pkg/utils"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List inputs files",
	Long: `List every *.inputs.yaml file below a directory (default: the working
directory) with its input set ID, or the registered engines with --engines`,
	Args: cobra.MaximumNArgs(1),
	RunE: listInputs,
}

func init() {
	listCmd.Flags().Bool("engines", false, "list the registered engines instead")
}

func listInputs(cmd *cobra.Command, args []string) error {
	if engines, _ := cmd.Flags().GetBool("engines"); engines {
		return listEngines(cmd)
	}

	root := ""
	if len(args) == 1 {
		root = args[0]
	}

	// Discover inputs files
	files, err := utils.DiscoverInputFiles(root)
	if err != nil {
		return fmt.Errorf("failed to discover inputs files: %w", err)
	}

	if len(files) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No inputs files found")
		return nil
	}

	// Create tabwriter for formatted output
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PATH\tID\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t--\t------")

	for _, f := range files {
		id, status := f.ID.String(), "valid"
		if f.Err != nil {
			id, status = "-", f.Err.Error()
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.Path, id, status)
	}

	return w.Flush()
}

func listEngines(cmd *cobra.Command) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "----\t-----------")

	for _, name := range simulation.DefaultRegistry.List() {
		e, err := simulation.DefaultRegistry.Get(name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, e.Description())
	}

	return w.Flush()
}
