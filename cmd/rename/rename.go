// Package rename provides the command changing the name of a record.
package rename

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the rename command.
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <code> [name]",
		Short: "Change the name stored with a code",
		Long:  `Rename replaces the name of an existing record. A missing or blank name resets it to "Unnamed".`,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 2 {
				name = args[1]
			}
			return rt.RecordList().Rename(cmd.Context(), args[0], name)
		},
	}
}
