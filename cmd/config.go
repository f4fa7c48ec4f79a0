package cmd

import (
	"github.com/spf13/cobra"

	"github.com/coverwallet/httplog/internal/app"
	"github.com/coverwallet/httplog/internal/logger"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
		// The configuration file may not exist yet.
		PersistentPreRun: func(*cobra.Command, []string) {},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition for proper command-line parsing and execution.
	configInitCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFilenameFromFlag
			if len(args) > 0 {
				path = args[0]
			}

			if err := app.ExecuteConfigInit(cmd.Context(), path); err != nil {
				logger.Errorf(cmd.Context(), "Failed to write configuration: %v", err)

				return err
			}

			return nil
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	configCmd.AddCommand(configInitCmd)
}
