package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Check the API key by printing the Lunch Money user it belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.container.Ledger.GetMe(cmd.Context())
			if err != nil {
				return err
			}
			budget := user.BudgetName
			if budget == "" {
				budget = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %d, budget %s)\n", user.Name, user.Email, user.ID, budget)
			return nil
		},
	}
}
