package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evcraddock/arv/internal/comps"
	"github.com/evcraddock/arv/internal/provider"
	"github.com/evcraddock/arv/internal/report"
	"github.com/evcraddock/arv/internal/valuation"
)

type valueFlags struct {
	sqft      float64
	lot       float64
	save      bool
	allFields bool
}

func newValueCmd(v *viper.Viper) *cobra.Command {
	var f valueFlags

	cmd := &cobra.Command{
		Use:   "value <address>",
		Short: "Estimate the after-repair value of a property",
		Long: "Fetch comparable sales near the address, show them all, rank the closest " +
			"matches by living area and lot size, and average their prices into an ARV.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValue(cmd, strings.Join(args, " "), f)
		},
	}

	cmd.Flags().Float64Var(&f.sqft, "sqft", 0, fmt.Sprintf("living area in square feet (min %d)", comps.MinLivingAreaSqft))
	cmd.Flags().Float64Var(&f.lot, "lot", 0, fmt.Sprintf("lot size in square feet (min %d)", comps.MinLotSizeSqft))
	cmd.Flags().Int("limit", comps.DefaultLimit, "number of closest matches to average")
	cmd.Flags().BoolVar(&f.save, "save", false, "save the valuation to the history database")
	cmd.Flags().BoolVar(&f.allFields, "all-fields", false, "show every provider field in the comps table")
	_ = cmd.MarkFlagRequired("sqft")
	_ = cmd.MarkFlagRequired("lot")

	bindFlag(v, "search.limit", cmd, "limit")

	return cmd
}

func runValue(cmd *cobra.Command, address string, f valueFlags) error {
	out := cmd.OutOrStdout()

	p := cfg.ProviderName()
	fetcher, err := provider.New(p, cfg.ProviderConfig(p))
	if err != nil {
		return err
	}

	save := f.save || cfg.Store.Save
	var store valuation.Store
	if save {
		database, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(database)
		store = report.NewRepository(database)
	}

	svc := valuation.NewService(fetcher, cfg.Options(), store)

	subject := comps.Subject{Address: address, LivingAreaSqft: f.sqft, LotSizeSqft: f.lot}
	if !isJSON() {
		fmt.Fprintf(out, "Looking up comps for: %s (%s)\n\n", address, p)
	}

	v, err := svc.Value(cmd.Context(), subject)
	if err != nil {
		return err
	}

	var saved *report.Report
	if save {
		if saved, err = svc.Save(v); err != nil {
			return err
		}
	}

	if isJSON() {
		res := valuationOutput{Valuation: v, Status: v.Status()}
		if saved != nil {
			res.ReportID = saved.ID
		}
		return printJSON(out, res)
	}

	if err := printValuation(out, v, f.allFields); err != nil {
		return err
	}
	if saved != nil {
		fmt.Fprintf(out, "\nSaved as report #%d\n", saved.ID)
	}
	return nil
}

// valuationOutput is the JSON shape of a valuation on the command line.
type valuationOutput struct {
	*comps.Valuation
	Status   comps.Status `json:"status"`
	ReportID int64        `json:"report_id,omitempty"`
}
