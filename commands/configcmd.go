package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/insight/config"
)

// NewConfigCmd groups configuration helpers. These run before any config is
// loaded, so they do not go through App.Setup.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage insight configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default user config file",
		Long:  "Init writes a config file with the built-in defaults to ~/.config/insight/config.yaml. An existing file is left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(nil).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User config at %s\n", path)
			return nil
		},
	}
}
