package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/params"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show parameter overrides from the environment",
	Long: `Show the REIONSIM_<GROUP>_<FIELD> environment variables that override
inputs files, e.g. REIONSIM_USER_HII_DIM=64`,
	Args: cobra.NoArgs,
	RunE: listEnvOverrides,
}

func listEnvOverrides(cmd *cobra.Command, _ []string) error {
	overrides, err := config.EnvOverrides(os.Environ())
	if err != nil {
		return err
	}

	groups := []struct {
		name string
		opts params.Options
	}{
		{params.GroupCosmo, overrides.Cosmo},
		{params.GroupUser, overrides.User},
		{params.GroupAstro, overrides.Astro},
		{params.GroupFlags, overrides.Flags},
		{params.GroupGlobal, overrides.Global},
	}

	count := 0
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GROUP\tFIELD\tVALUE")
	_, _ = fmt.Fprintln(w, "-----\t-----\t-----")

	for _, g := range groups {
		for _, name := range g.opts.Keys() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%v\n", g.name, name, g.opts[name])
			count++
		}
	}

	if count == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No environment overrides set")
		return nil
	}
	return w.Flush()
}
