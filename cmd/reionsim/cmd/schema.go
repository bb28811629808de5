package cmd

import (
	"fmt"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of inputs files",
	Args:  cobra.NoArgs,
	RunE:  printSchema,
}

func init() {
	schemaCmd.Flags().StringP("output", "o", "", "write the schema to a file instead of stdout")
}

func printSchema(cmd *cobra.Command, _ []string) error {
	data, err := config.SchemaJSON()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if err := renameio.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	logger.Successf("Wrote schema to %s", output)
	return nil
}
