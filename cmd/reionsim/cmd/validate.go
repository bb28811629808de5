package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/logger"
	"github.com/picogrid/reionsim/pkg/params"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate an inputs file",
	Long: `Build every parameter group from an inputs file, with REIONSIM_<GROUP>_<FIELD>
environment overrides applied, and report the resolved input set.
With --watch the file is revalidated whenever it changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateInputs,
}

func init() {
	validateCmd.Flags().BoolP("watch", "w", false, "revalidate whenever the file changes")
}

func validateInputs(cmd *cobra.Command, args []string) error {
	path := inputsPath(args)
	watch, _ := cmd.Flags().GetBool("watch")

	set, err := config.LoadInputs(path)
	if err != nil {
		return fmt.Errorf("invalid inputs: %w", err)
	}
	printInputSet(cmd.OutOrStdout(), set)
	logger.Successf("Inputs are valid (id %s)", set.ID())

	if !watch {
		return nil
	}
	if path == "" {
		if path, err = config.DefaultInputsPath(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Progressf("Watching %s, press Ctrl+C to stop", path)
	return config.WatchInputsFile(ctx, path, func(set *params.InputSet, err error) {
		if err != nil {
			logger.Errorf("invalid inputs: %v", err)
			return
		}
		printInputSet(cmd.OutOrStdout(), set)
		logger.Successf("Inputs are valid (id %s)", set.ID())
	})
}

func printInputSet(w io.Writer, set *params.InputSet) {
	_, _ = fmt.Fprintln(w, set.Cosmo)
	_, _ = fmt.Fprintln(w, set.User)
	_, _ = fmt.Fprintln(w, set.Astro)
	_, _ = fmt.Fprintln(w, set.Flags)

	res := set.Resolve()
	_, _ = fmt.Fprintf(w, "resolved: DIM=%d POWER_SPECTRUM=%d R_BUBBLE_MAX=%g X_RAY_Tvir_MIN=%g M_MIN_in_Mass=%t\n",
		res.User.Dim,
		res.User.PowerSpectrum,
		res.Astro.RBubbleMax,
		res.Astro.XRayTvirMin,
		res.Flags.MMinInMass,
	)
}
