// Command artframed drives a low-refresh-rate e-paper panel from a
// weekly schedule of plugin-generated content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:           "artframed",
		Short:         "Daemon and admin CLI for the artframed e-paper content scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Running artframed with no subcommand boots the daemon, same
		// as `artframed serve`.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ARTFRAMED_CONFIG"), "path to the YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newPluginsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
