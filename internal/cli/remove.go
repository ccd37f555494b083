package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/arv/internal/report"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a saved valuation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			database, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(database)

			if err := report.NewRepository(database).Delete(id); err != nil {
				return err
			}

			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]any{"deleted": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report #%d removed.\n", id)
			return nil
		},
	}
}
