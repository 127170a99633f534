// Package config provides commands that work on the configuration file.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the config command.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
	}

	cmd.AddCommand(pathCommand(rt), saveCommand(rt))
	return cmd
}

func pathCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(rt.Stdout, conf.ConfigFileUsed())
			return err
		},
	}
}

func saveCommand(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "save [file]",
		Short: "Write the effective settings, including flags and environment overrides, to a file",
		Long: `Save writes the settings currently in effect as YAML. Without a file
argument the configuration file in use is replaced. Comments in the
replaced file are not kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := conf.ConfigFileUsed()
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.Newf("no configuration file in use, pass a file to write").
					Component("cli").
					Category(errors.CategoryConfiguration).
					Build()
			}

			if err := conf.SaveYAMLConfig(path, rt.Settings); err != nil {
				return errors.New(err).
					Component("cli").
					Category(errors.CategoryConfiguration).
					FileContext(path).
					Build()
			}
			_, err := fmt.Fprintf(rt.Stdout, "Saved settings to %s\n", path)
			return err
		},
	}
}
