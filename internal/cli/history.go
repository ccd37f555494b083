package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/arv/internal/report"
)

func newHistoryCmd() *cobra.Command {
	var opts report.ListOptions

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved valuations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			reports, err := report.NewRepository(database).List(opts)
			if err != nil {
				return err
			}

			if isJSON() {
				if reports == nil {
					reports = []*report.Report{}
				}
				return printJSON(cmd.OutOrStdout(), reports)
			}
			return printReportTable(cmd.OutOrStdout(), reports)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of valuations to list (0 = all)")
	cmd.Flags().StringVar(&opts.Address, "address", "", "only list addresses containing this text")

	return cmd
}
