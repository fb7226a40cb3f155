package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/taskloop/tools"
	"github.com/tailored-agentic-units/taskloop/tools/builtin"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Describe the enabled capabilities as the model sees them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ws, err := builtin.NewWorkspace(cfg.Capabilities.Workspace)
		if err != nil {
			return err
		}
		caps, err := builtin.Named(ws, cfg.Capabilities.Enabled...)
		if err != nil {
			return err
		}
		registry, err := tools.NewRegistry(caps...)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), registry.Describe())
		return nil
	},
}
