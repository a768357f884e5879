package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sixthshift/artframed/internal/config"
	"github.com/sixthshift/artframed/internal/pluginregistry"

	_ "github.com/sixthshift/artframed/internal/plugins/builtin"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect the plugin registry",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Load the plugin registry and print available plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			registry := pluginregistry.New()
			if err := registry.LoadManifests(cfg.PluginsDir); err != nil {
				return err
			}

			for _, meta := range registry.ListMetadata() {
				fmt.Printf("%-24s %-24s %s (%s)\n", meta.PluginID, meta.DisplayName, meta.Version, meta.Implementation)
			}
			return nil
		},
	})
	return cmd
}
