// Package export provides the CSV export command.
package export

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the export command.
func Command(rt *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all records to a CSV file",
		Long: `Export writes every record, newest first, to qr-records-<date>.csv in the
export directory. The file is then copied to --share-dir when set, or
written to stdout when no share directory is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := rt.RecordList()
			if err := view.Refresh(cmd.Context()); err != nil {
				return err
			}
			if view.Len() == 0 {
				view.Export(cmd.Context())
				return nil
			}
			if !view.Export(cmd.Context()) {
				return errors.Newf("export failed").
					Component("export").
					Category(errors.CategoryExport).
					Build()
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Directory the CSV file is written to")
	cmd.Flags().String("share-dir", "", "Directory the exported file is copied to")
	cmd.Flags().Bool("stdout", false, "Write the CSV to stdout when no share directory is set")
	_ = viper.BindPFlag("export.dir", cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("export.sharedir", cmd.Flags().Lookup("share-dir"))
	_ = viper.BindPFlag("export.stdout", cmd.Flags().Lookup("stdout"))

	return cmd
}
