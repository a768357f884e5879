package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sixthshift/artframed/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the config file without starting the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("config OK: timezone=%s data_dir=%s display=%dx%d\n",
				cfg.Timezone, cfg.DataDir, cfg.Display.Width, cfg.Display.Height)
			return nil
		},
	})
	return cmd
}
