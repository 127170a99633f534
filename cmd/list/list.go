// Package list provides the command printing registered records.
package list

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the list command.
func Command(rt *runtime.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered codes, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := rt.RecordList()
			if err := view.Refresh(cmd.Context()); err != nil {
				return err
			}
			return view.Render(rt.Stdout)
		},
	}
}
