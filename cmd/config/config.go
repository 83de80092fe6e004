// Package config provides the config command printing the effective settings
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/openingbook/internal/conf"
)

// Command creates the config command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := settings.MarshalYAMLConfig()
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	return cmd
}
