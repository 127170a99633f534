// Package version provides the version command.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the version command.
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(rt.Stdout, rt.Build.String())
			return err
		},
	}
}
