package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/reionsim/pkg/config"
	"github.com/picogrid/reionsim/pkg/logger"
	"github.com/picogrid/reionsim/pkg/params"
	"github.com/picogrid/reionsim/pkg/simulation"

	// Import engines to register them
	_ "github.com/picogrid/reionsim/cmd/dryrun"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an engine",
	Long:  `Resolve an inputs file and run a registered engine with it`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEngine,
}

func init() {
	runCmd.Flags().StringP("engine", "e", "", "engine name to run")
	runCmd.Flags().StringToString("engine-param", nil, "engine-specific setting (key=value, repeatable)")
	_ = viper.BindPFlag("engine", runCmd.Flags().Lookup("engine"))
}

func runEngine(cmd *cobra.Command, args []string) error {
	set, err := config.LoadInputs(inputsPath(args))
	if err != nil {
		return fmt.Errorf("invalid inputs: %w", err)
	}

	// Single writer: the process-wide globals are set once, before any
	// engine reads them.
	if err := params.SetGlobal(set.Global); err != nil {
		return fmt.Errorf("invalid global parameters: %w", err)
	}

	engineName, err := selectEngine()
	if err != nil {
		return fmt.Errorf("failed to select engine: %w", err)
	}

	engine, err := simulation.DefaultRegistry.Get(engineName)
	if err != nil {
		return fmt.Errorf("failed to get engine: %w", err)
	}

	settings, _ := cmd.Flags().GetStringToString("engine-param")
	if len(settings) > 0 {
		tunable, ok := engine.(simulation.Tunable)
		if !ok {
			return fmt.Errorf("engine %s takes no settings", engineName)
		}
		if err := tunable.Tune(settings); err != nil {
			return fmt.Errorf("failed to configure engine: %w", err)
		}
	}

	if err := engine.Configure(set); err != nil {
		return fmt.Errorf("failed to configure engine: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Warn("Received interrupt signal, stopping engine...")
		if err := engine.Stop(); err != nil {
			logger.Errorf("Failed to stop engine: %v", err)
			return
		}
		cancel()
	}()

	logger.LogSection(fmt.Sprintf("Starting %s (inputs %s)", engine.Name(), set.ID()))
	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("engine failed: %w", err)
	}

	logger.Success("Run completed successfully")
	return nil
}

func selectEngine() (string, error) {
	// Check if engine is specified via flag, config or environment
	if name := viper.GetString("engine"); name != "" {
		return name, nil
	}

	names := simulation.DefaultRegistry.List()
	if len(names) == 0 {
		return "", fmt.Errorf("no engines registered")
	}
	if len(names) == 1 {
		return names[0], nil
	}

	descriptions := make(map[string]string, len(names))
	for _, name := range names {
		if e, err := simulation.DefaultRegistry.Get(name); err == nil {
			descriptions[name] = e.Description()
		}
	}

	// Interactive selection
	var selected string
	prompt := &survey.Select{
		Message: "Select engine:",
		Options: names,
		Description: func(value string, index int) string {
			return descriptions[value]
		},
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}

	return selected, nil
}
