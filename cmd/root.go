package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/qrregister/cmd/config"
	"github.com/tphakala/qrregister/cmd/export"
	"github.com/tphakala/qrregister/cmd/list"
	"github.com/tphakala/qrregister/cmd/register"
	"github.com/tphakala/qrregister/cmd/remove"
	"github.com/tphakala/qrregister/cmd/rename"
	"github.com/tphakala/qrregister/cmd/scan"
	"github.com/tphakala/qrregister/cmd/version"
	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/runtime"
)

// RootCommand creates and returns the root command. The caller closes rt
// once the command has finished.
func RootCommand(rt *runtime.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qrregister",
		Short:         "Register scanned QR codes with a name and export them as CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to the config file")
	if err := setupFlags(rootCmd); err != nil {
		// flags are static, so a bind error is a programming mistake
		panic(err)
	}

	versionCmd := version.Command(rt)
	rootCmd.AddCommand(
		scan.Command(rt),
		register.Command(rt),
		list.Command(rt),
		rename.Command(rt),
		remove.Command(rt),
		export.Command(rt),
		config.Command(rt),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version needs no config, store or logger
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		if configFile != "" {
			conf.SetConfigFile(configFile)
		}

		settings, err := conf.Load()
		if err != nil {
			return err
		}
		*rt.Settings = *settings

		return rt.Setup(cmd.Context())
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface and
// binds them to their config keys.
func setupFlags(rootCmd *cobra.Command) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("debug", "d", false, "Enable debug output")
	flags.String("db", "", "Path to the SQLite database, relative to the data directory")
	flags.Bool("memory", false, "Keep records in memory only")

	bindings := map[string]string{
		"debug":        "debug",
		"store.path":   "db",
		"store.memory": "memory",
	}
	for key, name := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}

	return nil
}
