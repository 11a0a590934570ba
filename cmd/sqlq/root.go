package main

import (
	"github.com/spf13/cobra"

	"github.com/pthm/sqlq/internal/cli"
)

var (
	// Global state set during PersistentPreRunE
	cfg        *cli.Config
	configPath string

	// Persistent flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "sqlq",
	Short: "Composable PostgreSQL SELECT builder",
	Long: `sqlq - Composable PostgreSQL SELECT builder

sqlq builds parameterized SELECT statements from immutable builder values.
This CLI renders statements from flags so the produced SQL and its bound
parameters can be inspected without writing a program.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, configPath, err = cli.LoadConfig(cfgFile)
		if err != nil {
			return cli.ConfigError("loading configuration", err)
		}

		return nil
	},
	SilenceUsage:  true, // Don't show usage on errors
	SilenceErrors: true, // We handle errors ourselves
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: auto-discover sqlq.yaml)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cli.ExitWithError(err)
	}
}
