package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/logger"
	"github.com/picogrid/reionsim/pkg/params"
	"github.com/picogrid/reionsim/pkg/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an inputs file interactively",
	Long: `Prompt for the fields of the selected parameter groups and write the
resulting inputs file. Groups that are not selected keep their defaults.`,
	RunE: initInputs,
}

func init() {
	initCmd.Flags().StringP("output", "o", "", "file to write (default is $HOME/.reionsim/inputs.yaml)")
	initCmd.Flags().StringSlice("groups", nil, "groups to prompt for (default: choose interactively)")
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file without asking")
}

func initInputs(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		var err error
		if output, err = config.DefaultInputsPath(); err != nil {
			return err
		}
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(output); err == nil && !force {
		var overwrite bool
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%s exists. Overwrite it?", output),
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Init cancelled")
			return nil
		}
	}

	groups, err := selectGroups(cmd)
	if err != nil {
		return err
	}

	var opts params.GroupOptions
	for _, group := range groups {
		fields, err := params.FieldsFor(group)
		if err != nil {
			return err
		}
		if group == params.GroupAstro {
			// INHOMO_RECO follows the flags group.
			fields = withoutField(fields, "INHOMO_RECO")
		}
		logger.LogSection(group)
		answers, err := utils.PromptForFields(fields)
		if err != nil {
			return fmt.Errorf("failed to get %s parameters: %w", group, err)
		}
		setGroup(&opts, group, answers)
	}

	set, err := params.NewInputSet(opts)
	if err != nil {
		return fmt.Errorf("invalid inputs: %w", err)
	}

	if err := config.SaveInputsFile(output, config.FromInputSet(set)); err != nil {
		return err
	}
	logger.Successf("Wrote %s (id %s)", output, set.ID())
	return nil
}

func selectGroups(cmd *cobra.Command) ([]string, error) {
	groups, _ := cmd.Flags().GetStringSlice("groups")
	if len(groups) > 0 {
		for _, g := range groups {
			if _, err := params.FieldsFor(g); err != nil {
				return nil, err
			}
		}
		return groups, nil
	}

	prompt := &survey.MultiSelect{
		Message: "Select the parameter groups to set:",
		Options: params.Groups(),
		Default: []string{params.GroupCosmo, params.GroupUser, params.GroupAstro, params.GroupFlags},
	}
	if err := survey.AskOne(prompt, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func setGroup(opts *params.GroupOptions, group string, values params.Options) {
	switch group {
	case params.GroupCosmo:
		opts.Cosmo = values
	case params.GroupUser:
		opts.User = values
	case params.GroupAstro:
		opts.Astro = values
	case params.GroupFlags:
		opts.Flags = values
	case params.GroupGlobal:
		opts.Global = values
	}
}

func withoutField(fields []params.Field, name string) []params.Field {
	out := make([]params.Field, 0, len(fields))
	for _, f := range fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}
