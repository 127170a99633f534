// Package remove provides the delete command.
package remove

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/recordlist"
	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the delete command.
func Command(rt *runtime.Context) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <code>",
		Aliases: []string{"rm"},
		Short:   "Delete a registered code",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(rt.Stdin, rt.Stdout, fmt.Sprintf("%s (%s) [y/N] ", recordlist.MsgDeleteConfirm, args[0])) {
				return nil
			}
			return rt.RecordList().Delete(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

// confirm prints prompt and reports whether the answer starts with y.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y")
}
