package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picogrid/reionsim/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reionsim",
	Short: "Reionization simulation inputs CLI",
	Long: `reionsim builds, validates and inspects the input parameters of a
reionization simulation engine: cosmology, grid settings, astrophysics,
feature flags and the rarely varied global parameters.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.reionsim/config.yaml)")
	rootCmd.PersistentFlags().StringP("inputs", "i", "", "inputs file (default is $HOME/.reionsim/inputs.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	_ = viper.BindPFlag("inputs", rootCmd.PersistentFlags().Lookup("inputs"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))

	// Add commands
	rootCmd.AddCommand(defaultsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(globalCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(envCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory
		viper.AddConfigPath("$HOME/.reionsim")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// REIONSIM_LOG_LEVEL, REIONSIM_NO_COLOR, REIONSIM_INPUTS, ...
	viper.SetEnvPrefix("REIONSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	_ = viper.ReadInConfig()

	// Configure logger based on flags
	logger.SetLevel(logger.ParseLevel(viper.GetString("log-level")))
	if viper.GetBool("no-color") {
		logger.SetNoColor(true)
	}
}

// inputsPath returns the inputs file selected by flag, config or
// environment; empty means the default location.
func inputsPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return viper.GetString("inputs")
}
