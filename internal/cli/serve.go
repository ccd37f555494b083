package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/evcraddock/arv/internal/provider"
	"github.com/evcraddock/arv/internal/report"
	"github.com/evcraddock/arv/internal/valuation"
	"github.com/evcraddock/arv/internal/web"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API server",
		Long:  "Start an HTTP server exposing valuations at /api/valuations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", 8080, "port to listen on")
	bindFlag(v, "server.port", cmd, "port")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	p := cfg.ProviderName()
	fetcher, err := provider.New(p, cfg.ProviderConfig(p))
	if err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	repo := report.NewRepository(database)
	svc := valuation.NewService(fetcher, cfg.Options(), repo)
	srv := web.NewServer(svc, web.WithReports(repo), web.WithAPIToken(cfg.Server.APIToken))

	return srv.ListenAndServe(cmd.Context(), cfg.Server.Port)
}
