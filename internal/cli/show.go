package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/evcraddock/arv/internal/report"
)

func newShowCmd() *cobra.Command {
	var allFields bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved valuation",
		Long:  "Show a saved valuation with its comps, closest matches and ARV.",
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

			rep, err := report.NewRepository(database).GetByID(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, rep)
			}

			fmt.Fprintf(out, "Report #%d  %s  (%s, %s)\n\n",
				rep.ID, rep.Address, rep.Provider, rep.CreatedAt.Local().Format("2006-01-02 15:04"))
			return printValuation(out, rep.Valuation, allFields)
		},
	}

	cmd.Flags().BoolVar(&allFields, "all-fields", false, "show every provider field in the comps table")

	return cmd
}

// parseID parses a positive report ID.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid report ID: %s", s)
	}
	return id, nil
}
