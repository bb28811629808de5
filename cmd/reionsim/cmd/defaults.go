package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/params"
)

var defaultsCmd = &cobra.Command{
	Use:       "defaults [group]",
	Short:     "Show parameter defaults",
	Long:      `Show the fields of every parameter group, or of one group, with their defaults`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: params.Groups(),
	RunE:      showDefaults,
}

func init() {
	defaultsCmd.Flags().Bool("yaml", false, "print the defaults as an inputs file")
}

func showDefaults(cmd *cobra.Command, args []string) error {
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asYAML {
		data, err := config.MarshalInputs(config.FromInputSet(params.DefaultInputSet()))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	groups := params.Groups()
	if len(args) == 1 {
		groups = []string{args[0]}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GROUP\tNAME\tTYPE\tDEFAULT\tDESCRIPTION")
	_, _ = fmt.Fprintln(w, "-----\t----\t----\t-------\t-----------")

	for _, group := range groups {
		fields, err := params.FieldsFor(group)
		if err != nil {
			return err
		}
		for _, f := range fields {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				group,
				f.Name,
				fieldType(f),
				defaultValue(f),
				f.Description,
			)
		}
	}

	return w.Flush()
}

func fieldType(f params.Field) string {
	if f.Log {
		return string(f.Type) + " (log10)"
	}
	return string(f.Type)
}

func defaultValue(f params.Field) string {
	if f.Default == nil {
		return "derived"
	}
	if f.Type == params.TypeChoice {
		if code, ok := f.Default.(int); ok && code >= 0 && code < len(f.Options) {
			return fmt.Sprintf("%d (%s)", code, f.Options[code])
		}
	}
	return fmt.Sprintf("%v", f.Default)
}
