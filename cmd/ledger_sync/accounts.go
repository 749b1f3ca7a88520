package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/spf13/cobra"
)

func newAccountsCmd(opts *globalOptions) *cobra.Command {
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect account mappings",
	}

	var integrations []string
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the saved account mappings next to the current Lunch Money accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := parseIntegrations(integrations)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			ledgerAccounts, err := a.container.Ledger.GetAllManualAccounts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INTEGRATION\tEXTERNAL ID\tEXTERNAL NAME\tLUNCH MONEY ACCOUNT")
			for _, integration := range selected {
				mappings, err := a.container.Reconcile.ListMappings(cmd.Context(), integration)
				if err != nil {
					return err
				}
				report := domain.BuildMappingReport(mappings, ledgerAccounts, nil)
				for _, row := range report.Rows {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", integration, row.Mapping.ExternalID, row.Mapping.ExternalName, row.LedgerName)
				}
			}
			return w.Flush()
		},
	}
	list.Flags().StringSliceVarP(&integrations, "integration", "i", nil,
		"Integrations to list (money-forward, revolut); defaults to all")

	accounts.AddCommand(list)
	return accounts
}
