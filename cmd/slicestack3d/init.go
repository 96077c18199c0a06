package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slicestack3d/pkg/config"
)

// NewInitCmd creates the init-config command, which writes the default
// configuration as YAML.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write the default configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", args[0])
			return nil
		},
	}
}
