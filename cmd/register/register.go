// Package register provides the command registering a single code.
package register

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/qrregister/internal/registration"
	"github.com/tphakala/qrregister/internal/runtime"
)

// Command creates the register command.
func Command(rt *runtime.Context) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "register <code>",
		Short: "Register one code",
		Long:  `Register stores a code with a name and the current time. Codes that are already registered are left unchanged.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flow := rt.RegistrationFlow(nil)
			outcome, err := flow.Submit(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			if outcome == registration.OutcomeIgnored {
				return fmt.Errorf("code must not be blank")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name stored with the code (default \"Unnamed\")")

	return cmd
}
